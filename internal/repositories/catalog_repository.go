package repositories

import (
	"context"
	"database/sql"
	"errors"

	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
)

// CatalogRepository reads the departments/services catalog. The catalog is
// administered out of band; this side only lists it.
type CatalogRepository struct {
	DB *sql.DB
}

func (r CatalogRepository) Departments(ctx context.Context) ([]models.Department, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT dept_id, dept_name, contact_email, contact_phone
		FROM department ORDER BY dept_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Department{}
	for rows.Next() {
		var d models.Department
		var email, phone sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &email, &phone); err != nil {
			return nil, err
		}
		d.ContactEmail = email.String
		d.ContactPhone = phone.String
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r CatalogRepository) Department(ctx context.Context, deptID int64) (models.Department, error) {
	var d models.Department
	var email, phone sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT dept_id, dept_name, contact_email, contact_phone
		FROM department WHERE dept_id=?`, deptID).
		Scan(&d.ID, &d.Name, &email, &phone)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Department{}, domain.NotFoundError{Resource: "department"}
	}
	if err != nil {
		return models.Department{}, err
	}
	d.ContactEmail = email.String
	d.ContactPhone = phone.String
	return d, nil
}

func (r CatalogRepository) Services(ctx context.Context) ([]models.Service, error) {
	return r.services(ctx, `
		SELECT service_id, service_name, description, fee, processing_days, dept_id
		FROM service ORDER BY service_name`)
}

func (r CatalogRepository) ServicesByDept(ctx context.Context, deptID int64) ([]models.Service, error) {
	return r.services(ctx, `
		SELECT service_id, service_name, description, fee, processing_days, dept_id
		FROM service WHERE dept_id=? ORDER BY service_name`, deptID)
}

func (r CatalogRepository) services(ctx context.Context, query string, args ...any) ([]models.Service, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Service{}
	for rows.Next() {
		var s models.Service
		var desc sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &desc, &s.Fee, &s.ProcessingDays, &s.DeptID); err != nil {
			return nil, err
		}
		s.Description = desc.String
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r CatalogRepository) ServiceByID(ctx context.Context, id int64) (models.Service, error) {
	var s models.Service
	var desc sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT service_id, service_name, description, fee, processing_days, dept_id
		FROM service WHERE service_id=?`, id).
		Scan(&s.ID, &s.Name, &desc, &s.Fee, &s.ProcessingDays, &s.DeptID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Service{}, domain.NotFoundError{Resource: "service"}
	}
	if err != nil {
		return models.Service{}, err
	}
	s.Description = desc.String
	return s, nil
}
