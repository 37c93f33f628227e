package repositories

import (
	"context"
	"database/sql"
	"errors"

	"sevaportal/internal/db"
	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
)

type GrievanceRepository struct {
	DB *sql.DB
}

func (r GrievanceRepository) Insert(ctx context.Context, citizenID, serviceID int64, description, createdDate string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO grievance (citizen_id, service_id, description, status, created_date)
		VALUES (?, ?, ?, 'OPEN', ?)`,
		citizenID, nullID(serviceID), description, createdDate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const grievanceQuery = `
	SELECT g.grievance_id, g.citizen_id, c.name, c.email,
		COALESCE(g.service_id, 0), COALESCE(s.service_name, ''),
		COALESCE(s.dept_id, 0), COALESCE(d.dept_name, ''),
		g.description, g.status, g.created_date,
		g.resolved_date, g.resolution_remark
	FROM grievance g
	JOIN citizen c ON g.citizen_id = c.citizen_id
	LEFT JOIN service s ON g.service_id = s.service_id
	LEFT JOIN department d ON s.dept_id = d.dept_id`

func (r GrievanceRepository) ByCitizen(ctx context.Context, citizenID int64) ([]models.Grievance, error) {
	return r.list(ctx, grievanceQuery+`
	WHERE g.citizen_id = ?
	ORDER BY g.created_date DESC`, citizenID)
}

// ListAdmin scopes by department and status; zero DeptID and empty status
// mean unfiltered.
func (r GrievanceRepository) ListAdmin(ctx context.Context, deptID int64, status string) ([]models.Grievance, error) {
	query := grievanceQuery + `
	WHERE 1=1`
	args := []any{}
	if deptID != 0 {
		query += ` AND s.dept_id = ?`
		args = append(args, deptID)
	}
	if status != "" {
		query += ` AND g.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY g.created_date DESC`
	return r.list(ctx, query, args...)
}

func (r GrievanceRepository) list(ctx context.Context, query string, args ...any) ([]models.Grievance, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Grievance{}
	for rows.Next() {
		g, err := scanGrievance(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r GrievanceRepository) Get(ctx context.Context, id int64) (models.Grievance, error) {
	row := r.DB.QueryRowContext(ctx, grievanceQuery+`
	WHERE g.grievance_id = ?`, id)
	g, err := scanGrievance(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Grievance{}, domain.NotFoundError{Resource: "grievance"}
	}
	if err != nil {
		return models.Grievance{}, err
	}
	return g, nil
}

func scanGrievance(scan func(...any) error) (models.Grievance, error) {
	var g models.Grievance
	var resolved, remark sql.NullString
	err := scan(&g.ID, &g.CitizenID, &g.CitizenName, &g.CitizenEmail,
		&g.ServiceID, &g.ServiceName, &g.DeptID, &g.DeptName,
		&g.Description, &g.Status, &g.CreatedDate, &resolved, &remark)
	if err != nil {
		return models.Grievance{}, err
	}
	g.ResolvedDate = resolved.String
	g.ResolutionRemark = remark.String
	return g, nil
}

func (r GrievanceRepository) Resolve(ctx context.Context, q db.Querier, id int64, remark, resolvedDate string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE grievance
		SET status = 'RESOLVED', resolution_remark = ?, resolved_date = ?
		WHERE grievance_id = ?`,
		remark, resolvedDate, id)
	return err
}
