package services

import (
	"context"
	"database/sql"

	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
	"sevaportal/internal/notify"
	"sevaportal/internal/repositories"
	"sevaportal/internal/utils"
)

// GrievanceService handles citizen complaints: create, list, and the
// admin resolution flow with the resolution mail.
type GrievanceService struct {
	DB         *sql.DB
	Grievances repositories.GrievanceRepository
	Catalog    repositories.CatalogRepository
	Notifier   notify.Notifier
}

func NewGrievanceService(db *sql.DB, notifier notify.Notifier) GrievanceService {
	return GrievanceService{
		DB:         db,
		Grievances: repositories.GrievanceRepository{DB: db},
		Catalog:    repositories.CatalogRepository{DB: db},
		Notifier:   notifier,
	}
}

// Create files a grievance, optionally tied to a service.
func (s GrievanceService) Create(ctx context.Context, citizenID, serviceID int64, description string) (models.Grievance, error) {
	description = utils.TrimOrEmpty(description)
	if description == "" {
		return models.Grievance{}, domain.ValidationError{Field: "description", Msg: "must not be empty"}
	}
	if serviceID != 0 {
		if _, err := s.Catalog.ServiceByID(ctx, serviceID); err != nil {
			return models.Grievance{}, err
		}
	}
	id, err := s.Grievances.Insert(ctx, citizenID, serviceID, description, utils.Today())
	if err != nil {
		return models.Grievance{}, err
	}
	return models.Grievance{
		ID:          id,
		CitizenID:   citizenID,
		ServiceID:   serviceID,
		Description: description,
		Status:      domain.GrievanceOpen,
		CreatedDate: utils.Today(),
	}, nil
}

func (s GrievanceService) ListMine(ctx context.Context, citizenID int64) ([]models.Grievance, error) {
	return s.Grievances.ByCitizen(ctx, citizenID)
}

// AdminList scopes department admins to their own department's
// grievances. Grievances without a service carry no department and are
// only visible to super admins.
func (s GrievanceService) AdminList(ctx context.Context, admin domain.AdminContext, status string) ([]models.Grievance, error) {
	if status != "" && status != string(domain.GrievanceOpen) && status != string(domain.GrievanceResolved) {
		return nil, domain.ValidationError{Field: "status", Msg: "must be OPEN or RESOLVED"}
	}
	deptID := int64(0)
	if admin.Role != domain.RoleSuperAdmin {
		deptID = admin.DeptID
	}
	return s.Grievances.ListAdmin(ctx, deptID, status)
}

// Resolve closes a grievance with a remark and mails the citizen.
func (s GrievanceService) Resolve(ctx context.Context, admin domain.AdminContext, grievanceID int64, remark string) (models.Grievance, error) {
	remark = utils.TrimOrEmpty(remark)
	if remark == "" {
		return models.Grievance{}, domain.ValidationError{Field: "resolution_remark", Msg: "must not be empty"}
	}
	g, err := s.Grievances.Get(ctx, grievanceID)
	if err != nil {
		return models.Grievance{}, err
	}
	if !admin.CanAccessDept(g.DeptID) {
		return models.Grievance{}, domain.ForbiddenError{Msg: "grievance belongs to another department"}
	}
	if g.Status == domain.GrievanceResolved {
		return models.Grievance{}, domain.AlreadyProcessedError{Msg: "grievance already resolved"}
	}
	if err := s.Grievances.Resolve(ctx, s.DB, grievanceID, remark, utils.Today()); err != nil {
		return models.Grievance{}, err
	}

	go func(name, email, remark string) {
		if err := s.Notifier.GrievanceResolved(email, name, remark); err != nil {
			utils.LogEvent("", "notify", "grievance_resolved", err.Error())
		}
	}(g.CitizenName, g.CitizenEmail, remark)

	g.Status = domain.GrievanceResolved
	g.ResolutionRemark = remark
	g.ResolvedDate = utils.Today()
	return g, nil
}
