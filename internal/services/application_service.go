package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
	"sevaportal/internal/notify"
	"sevaportal/internal/repositories"
	"sevaportal/internal/utils"
)

// ApplicationService runs the citizen service-application lifecycle:
// apply, upload documents, pay the fee, and the admin-side verification
// and status flow. Document verification drives the application status
// through a fixed cascade; manual moves follow the same machine.
type ApplicationService struct {
	DB       *sql.DB
	Apps     repositories.ApplicationRepository
	Catalog  repositories.CatalogRepository
	Citizens repositories.CitizenRepository
	Notifier notify.Notifier
}

func NewApplicationService(db *sql.DB, notifier notify.Notifier) ApplicationService {
	return ApplicationService{
		DB:       db,
		Apps:     repositories.ApplicationRepository{DB: db},
		Catalog:  repositories.CatalogRepository{DB: db},
		Citizens: repositories.CitizenRepository{DB: db},
		Notifier: notifier,
	}
}

func (s ApplicationService) Departments(ctx context.Context) ([]models.Department, error) {
	return s.Catalog.Departments(ctx)
}

func (s ApplicationService) Services(ctx context.Context, deptID int64) ([]models.Service, error) {
	if deptID != 0 {
		return s.Catalog.ServicesByDept(ctx, deptID)
	}
	return s.Catalog.Services(ctx)
}

func (s ApplicationService) Apply(ctx context.Context, citizenID, serviceID int64) (models.Application, error) {
	svc, err := s.Catalog.ServiceByID(ctx, serviceID)
	if err != nil {
		return models.Application{}, err
	}
	appID, err := s.Apps.Insert(ctx, citizenID, serviceID, utils.Today())
	if err != nil {
		return models.Application{}, err
	}
	return models.Application{
		ID:          appID,
		CitizenID:   citizenID,
		ServiceID:   serviceID,
		ServiceName: svc.Name,
		Fee:         svc.Fee,
		AppliedDate: utils.Today(),
		Status:      domain.AppPending,
	}, nil
}

// ListMine returns the citizen's applications with document rollups and
// the payment gate already evaluated.
func (s ApplicationService) ListMine(ctx context.Context, citizenID int64) ([]models.ApplicationView, error) {
	views, err := s.Apps.ByCitizen(ctx, citizenID)
	if err != nil {
		return nil, err
	}
	for i := range views {
		docs, err := s.Apps.Documents(ctx, s.DB, views[i].ID)
		if err != nil {
			return nil, err
		}
		views[i].Documents = docs
		views[i].AllDocumentsVerified = len(docs) > 0 && allDocsVerified(docs)
		views[i].HasRejectedDocuments = anyDocStatus(docs, domain.DocRejected)
		views[i].HasPendingDocuments = anyDocStatus(docs, domain.DocPending)
		views[i].CanPay = views[i].Fee > 0 &&
			views[i].PaymentStatus == "" &&
			views[i].Status == domain.AppDocumentsVerified
	}
	return views, nil
}

func allDocsVerified(docs []models.Document) bool {
	for _, d := range docs {
		if d.Status != domain.DocVerified {
			return false
		}
	}
	return true
}

func anyDocStatus(docs []models.Document, status domain.DocumentStatus) bool {
	for _, d := range docs {
		if d.Status == status {
			return true
		}
	}
	return false
}

// UploadDocument attaches a document to the citizen's own application.
// Terminal applications no longer accept uploads.
func (s ApplicationService) UploadDocument(ctx context.Context, citizenID, appID int64, docType, docPath string) (models.Document, error) {
	docType = utils.TrimOrEmpty(docType)
	if docType == "" {
		return models.Document{}, domain.ValidationError{Field: "doc_type", Msg: "must not be empty"}
	}
	app, err := s.Apps.GetOwned(ctx, appID, citizenID)
	if err != nil {
		return models.Document{}, err
	}
	switch app.Status {
	case domain.AppCompleted, domain.AppRejected:
		return models.Document{}, domain.AlreadyProcessedError{Msg: "application is closed"}
	}
	docID, err := s.Apps.InsertDocument(ctx, appID, docType, docPath, utils.Today())
	if err != nil {
		return models.Document{}, err
	}
	// Fresh documents put a rejected application back in review.
	if app.Status == domain.AppDocumentRejected {
		if err := s.Apps.UpdateStatus(ctx, s.DB, appID, domain.AppPending, "", false); err != nil {
			return models.Document{}, err
		}
	}
	return models.Document{
		ID:           docID,
		AppID:        appID,
		DocType:      docType,
		DocPath:      docPath,
		UploadedDate: utils.Today(),
		Status:       domain.DocPending,
	}, nil
}

// Pay records the fee payment and moves the application to IN_PROGRESS.
// Payment is accepted only at PENDING or DOCUMENTS_VERIFIED, and only
// once every uploaded document is verified. Paying twice, or paying an
// application already past the fee gate, fails with AlreadyProcessed.
func (s ApplicationService) Pay(ctx context.Context, citizenID, appID int64, mode string) (models.Payment, error) {
	mode = utils.TrimOrEmpty(mode)
	if mode == "" {
		return models.Payment{}, domain.ValidationError{Field: "payment_mode", Msg: "is required"}
	}
	app, err := s.Apps.GetOwned(ctx, appID, citizenID)
	if err != nil {
		return models.Payment{}, err
	}
	if app.Fee <= 0 {
		return models.Payment{}, domain.ValidationError{Field: "app_id", Msg: "this service has no fee"}
	}
	// The fee is only payable before processing starts.
	switch app.Status {
	case domain.AppPending, domain.AppDocumentsVerified:
	case domain.AppInProgress, domain.AppCompleted:
		return models.Payment{}, domain.AlreadyProcessedError{Msg: "fee already paid"}
	case domain.AppRejected:
		return models.Payment{}, domain.AlreadyProcessedError{Msg: "application is closed"}
	default:
		return models.Payment{}, domain.ConflictError{Resource: "application", Msg: "documents were rejected, re-upload before paying"}
	}
	docs, err := s.Apps.Documents(ctx, s.DB, appID)
	if err != nil {
		return models.Payment{}, err
	}
	if len(docs) > 0 && !allDocsVerified(docs) {
		return models.Payment{}, domain.ConflictError{Resource: "application", Msg: "documents are not verified yet"}
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return models.Payment{}, err
	}
	defer tx.Rollback()

	paid, err := s.Apps.PaymentExists(ctx, tx, appID)
	if err != nil {
		return models.Payment{}, err
	}
	if paid {
		return models.Payment{}, domain.AlreadyProcessedError{Msg: "fee already paid"}
	}
	txnID := uuid.NewString()
	payID, err := s.Apps.InsertPayment(ctx, tx, appID, app.Fee, mode, txnID, utils.Today())
	if err != nil {
		return models.Payment{}, err
	}
	if err := s.Apps.UpdateStatus(ctx, tx, appID, domain.AppInProgress, "", false); err != nil {
		return models.Payment{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Payment{}, err
	}

	s.notifyStatus(app.ServiceName, string(domain.AppInProgress), "", app.CitizenID)
	return models.Payment{
		ID:            payID,
		AppID:         appID,
		Amount:        app.Fee,
		PaymentDate:   utils.Today(),
		PaymentMode:   mode,
		TransactionID: txnID,
		Status:        "SUCCESS",
	}, nil
}

// VerifyDocument records the admin's verdict on one document and runs the
// status cascade: any rejected document rejects the document set; once
// every document is verified, a pending application moves past the gate
// (straight to IN_PROGRESS when there is no fee or the fee is paid).
func (s ApplicationService) VerifyDocument(ctx context.Context, admin domain.AdminContext, docID int64, status domain.DocumentStatus) (models.Document, error) {
	if status != domain.DocVerified && status != domain.DocRejected {
		return models.Document{}, domain.ValidationError{Field: "verification_status", Msg: "must be VERIFIED or REJECTED"}
	}
	doc, err := s.Apps.Document(ctx, docID)
	if err != nil {
		return models.Document{}, err
	}
	if !admin.CanAccessDept(doc.DeptID) {
		return models.Document{}, domain.ForbiddenError{Msg: "document belongs to another department"}
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return models.Document{}, err
	}
	defer tx.Rollback()

	if err := s.Apps.SetDocumentStatus(ctx, tx, docID, status); err != nil {
		return models.Document{}, err
	}

	appStatus, fee, err := s.Apps.StatusFee(ctx, tx, doc.AppID)
	if err != nil {
		return models.Document{}, err
	}
	docs, err := s.Apps.Documents(ctx, tx, doc.AppID)
	if err != nil {
		return models.Document{}, err
	}

	next, changed, err := nextAfterVerification(appStatus, fee, docs, func() (bool, error) {
		return s.Apps.PaymentExists(ctx, tx, doc.AppID)
	})
	if err != nil {
		return models.Document{}, err
	}
	if changed {
		if err := s.Apps.UpdateStatus(ctx, tx, doc.AppID, next, "", false); err != nil {
			return models.Document{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Document{}, err
	}

	if changed {
		app, err := s.Apps.Get(ctx, doc.AppID)
		if err == nil {
			s.notifyStatus(app.ServiceName, string(next), "", app.CitizenID)
		}
	}
	doc.Status = status
	return doc.Document, nil
}

// nextAfterVerification evaluates the post-verification cascade over the
// fresh document set. paymentExists is only consulted when the fee gate
// matters.
func nextAfterVerification(current domain.ApplicationStatus, fee int64, docs []models.Document, paymentExists func() (bool, error)) (domain.ApplicationStatus, bool, error) {
	if anyDocStatus(docs, domain.DocRejected) {
		if current == domain.AppDocumentRejected || current == domain.AppRejected || current == domain.AppCompleted {
			return "", false, nil
		}
		return domain.AppDocumentRejected, true, nil
	}
	if current != domain.AppPending {
		return "", false, nil
	}
	if len(docs) == 0 || !allDocsVerified(docs) {
		return "", false, nil
	}
	if fee == 0 {
		return domain.AppInProgress, true, nil
	}
	paid, err := paymentExists()
	if err != nil {
		return "", false, err
	}
	if paid {
		return domain.AppInProgress, true, nil
	}
	return domain.AppDocumentsVerified, true, nil
}

// manualTransitions is the admin-driven part of the status machine.
// COMPLETED and REJECTED are terminal.
var manualTransitions = map[domain.ApplicationStatus][]domain.ApplicationStatus{
	domain.AppPending:           {domain.AppDocumentsVerified, domain.AppInProgress, domain.AppRejected},
	domain.AppDocumentsVerified: {domain.AppInProgress, domain.AppRejected},
	domain.AppInProgress:        {domain.AppCompleted, domain.AppRejected},
	domain.AppDocumentRejected:  {domain.AppPending, domain.AppRejected},
}

// UpdateStatus is the admin's manual status move with an optional remark.
// COMPLETED stamps the completion date and sends the completion mail.
func (s ApplicationService) UpdateStatus(ctx context.Context, admin domain.AdminContext, appID int64, target domain.ApplicationStatus, remark string) (models.ApplicationDetail, error) {
	if !target.Valid() {
		return models.ApplicationDetail{}, domain.ValidationError{Field: "status", Msg: "unknown status"}
	}
	app, err := s.Apps.Get(ctx, appID)
	if err != nil {
		return models.ApplicationDetail{}, err
	}
	if !admin.CanAccessDept(app.DeptID) {
		return models.ApplicationDetail{}, domain.ForbiddenError{Msg: "application belongs to another department"}
	}

	allowed := false
	for _, next := range manualTransitions[app.Status] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		if app.Status == domain.AppCompleted || app.Status == domain.AppRejected {
			return models.ApplicationDetail{}, domain.AlreadyProcessedError{Msg: "application is closed"}
		}
		return models.ApplicationDetail{}, domain.ConflictError{
			Resource: "application",
			Msg:      "cannot move from " + string(app.Status) + " to " + string(target),
		}
	}

	stampCompletion := target == domain.AppCompleted
	if err := s.Apps.UpdateStatus(ctx, s.DB, appID, target, remark, stampCompletion); err != nil {
		return models.ApplicationDetail{}, err
	}

	if stampCompletion {
		s.notifyCompletion(app.ServiceName, app.CitizenID)
	} else {
		s.notifyStatus(app.ServiceName, string(target), remark, app.CitizenID)
	}
	return s.Detail(ctx, admin, appID)
}

// Detail is the admin view with documents and payments attached.
func (s ApplicationService) Detail(ctx context.Context, admin domain.AdminContext, appID int64) (models.ApplicationDetail, error) {
	app, err := s.Apps.Get(ctx, appID)
	if err != nil {
		return models.ApplicationDetail{}, err
	}
	if !admin.CanAccessDept(app.DeptID) {
		return models.ApplicationDetail{}, domain.ForbiddenError{Msg: "application belongs to another department"}
	}
	docs, err := s.Apps.Documents(ctx, s.DB, appID)
	if err != nil {
		return models.ApplicationDetail{}, err
	}
	payments, err := s.Apps.Payments(ctx, appID)
	if err != nil {
		return models.ApplicationDetail{}, err
	}
	app.Documents = docs
	app.Payments = payments
	return app, nil
}

// AdminList pages through applications; department admins are pinned to
// their own department regardless of the filter they send.
func (s ApplicationService) AdminList(ctx context.Context, admin domain.AdminContext, filter repositories.AdminFilter) ([]models.ApplicationDetail, domain.Pagination, error) {
	if admin.Role != domain.RoleSuperAdmin {
		filter.DeptID = admin.DeptID
	}
	if filter.Status != "" && !domain.ApplicationStatus(filter.Status).Valid() {
		return nil, domain.Pagination{}, domain.ValidationError{Field: "status", Msg: "unknown status"}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	apps, err := s.Apps.ListAdmin(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	total, err := s.Apps.CountAdmin(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	pages := total / filter.Limit
	if total%filter.Limit != 0 {
		pages++
	}
	return apps, domain.Pagination{Page: filter.Page, Limit: filter.Limit, Total: total, Pages: pages}, nil
}

// PendingDocuments is the admin verification queue, oldest first.
func (s ApplicationService) PendingDocuments(ctx context.Context, admin domain.AdminContext) ([]models.PendingDocument, error) {
	deptID := int64(0)
	if admin.Role != domain.RoleSuperAdmin {
		deptID = admin.DeptID
	}
	return s.Apps.PendingDocuments(ctx, deptID)
}

func (s ApplicationService) Dashboard(ctx context.Context, admin domain.AdminContext) (models.DashboardStats, error) {
	deptID := int64(0)
	if admin.Role != domain.RoleSuperAdmin {
		deptID = admin.DeptID
	}
	return s.Apps.DashboardStats(ctx, deptID)
}

// notifyStatus sends the status mail off the request path; failures are
// logged and never block the caller.
func (s ApplicationService) notifyStatus(serviceName, status, remark string, citizenID int64) {
	go func() {
		name, email, err := s.Citizens.NameEmail(context.Background(), citizenID)
		if err == nil {
			err = s.Notifier.ApplicationStatus(email, name, serviceName, status, remark)
		}
		if err != nil {
			utils.LogEvent("", "notify", "application_status", err.Error())
		}
	}()
}

func (s ApplicationService) notifyCompletion(serviceName string, citizenID int64) {
	go func() {
		name, email, err := s.Citizens.NameEmail(context.Background(), citizenID)
		if err == nil {
			err = s.Notifier.ServiceCompleted(email, name, serviceName, utils.Today())
		}
		if err != nil {
			utils.LogEvent("", "notify", "service_completed", err.Error())
		}
	}()
}
