package repositories

import (
	"context"
	"database/sql"
	"errors"

	"sevaportal/internal/db"
	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
)

type ApplicationRepository struct {
	DB *sql.DB
}

func (r ApplicationRepository) Insert(ctx context.Context, citizenID, serviceID int64, appliedDate string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO application (citizen_id, service_id, applied_date, status)
		VALUES (?, ?, ?, 'PENDING')`,
		citizenID, serviceID, appliedDate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ByCitizen lists the citizen's applications joined with service fee and
// the latest payment; documents are attached by the service layer.
func (r ApplicationRepository) ByCitizen(ctx context.Context, citizenID int64) ([]models.ApplicationView, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT a.app_id, a.citizen_id, a.service_id, s.service_name, s.fee,
			a.applied_date, COALESCE(a.completion_date, ''), a.status, COALESCE(a.remark, ''),
			COALESCE(p.status, ''), COALESCE(p.transaction_id, '')
		FROM application a
		LEFT JOIN service s ON a.service_id = s.service_id
		LEFT JOIN payment p ON a.app_id = p.app_id
		WHERE a.citizen_id = ?
		ORDER BY a.applied_date DESC`, citizenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ApplicationView{}
	for rows.Next() {
		var v models.ApplicationView
		if err := rows.Scan(&v.ID, &v.CitizenID, &v.ServiceID, &v.ServiceName, &v.Fee,
			&v.AppliedDate, &v.CompletionDate, &v.Status, &v.Remark,
			&v.PaymentStatus, &v.TransactionID); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Get loads the admin detail view including the department and the days
// taken so far (or to completion).
func (r ApplicationRepository) Get(ctx context.Context, appID int64) (models.ApplicationDetail, error) {
	var d models.ApplicationDetail
	var completion, remark, phone sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			a.app_id, a.citizen_id, c.name, c.email, c.phone,
			a.service_id, s.service_name, s.fee, d.dept_id, d.dept_name,
			a.applied_date, a.completion_date, a.status, a.remark,
			DATEDIFF(COALESCE(a.completion_date, CURDATE()), a.applied_date)
		FROM application a
		JOIN citizen c ON a.citizen_id = c.citizen_id
		JOIN service s ON a.service_id = s.service_id
		JOIN department d ON s.dept_id = d.dept_id
		WHERE a.app_id = ?`, appID).
		Scan(&d.ID, &d.CitizenID, &d.CitizenName, &d.CitizenEmail, &phone,
			&d.ServiceID, &d.ServiceName, &d.Fee, &d.DeptID, &d.DeptName,
			&d.AppliedDate, &completion, &d.Status, &remark, &d.DaysTaken)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ApplicationDetail{}, domain.NotFoundError{Resource: "application"}
	}
	if err != nil {
		return models.ApplicationDetail{}, err
	}
	d.CitizenPhone = phone.String
	d.CompletionDate = completion.String
	d.Remark = remark.String
	return d, nil
}

// GetOwned loads an application with its fee only when it belongs to the
// citizen; used by the payment flow.
func (r ApplicationRepository) GetOwned(ctx context.Context, appID, citizenID int64) (models.Application, error) {
	var a models.Application
	var completion, remark sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT a.app_id, a.citizen_id, a.service_id, s.service_name, s.fee,
			a.applied_date, a.completion_date, a.status, a.remark
		FROM application a
		JOIN service s ON a.service_id = s.service_id
		WHERE a.app_id = ? AND a.citizen_id = ?`, appID, citizenID).
		Scan(&a.ID, &a.CitizenID, &a.ServiceID, &a.ServiceName, &a.Fee,
			&a.AppliedDate, &completion, &a.Status, &remark)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Application{}, domain.NotFoundError{Resource: "application"}
	}
	if err != nil {
		return models.Application{}, err
	}
	a.CompletionDate = completion.String
	a.Remark = remark.String
	return a, nil
}

// Documents takes a Querier so the verification cascade can re-read the
// document set inside its transaction.
func (r ApplicationRepository) Documents(ctx context.Context, q db.Querier, appID int64) ([]models.Document, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT doc_id, app_id, doc_type, COALESCE(doc_path, ''), COALESCE(uploaded_date, ''), verification_status
		FROM document WHERE app_id = ?`, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Document{}
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.AppID, &d.DocType, &d.DocPath, &d.UploadedDate, &d.Status); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r ApplicationRepository) InsertDocument(ctx context.Context, appID int64, docType, docPath, uploadedDate string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO document (app_id, doc_type, doc_path, uploaded_date, verification_status)
		VALUES (?, ?, ?, ?, 'PENDING')`,
		appID, docType, db.NullIfEmpty(docPath), uploadedDate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DocumentContext is a document joined with the owning application's
// department, for the verification access check.
type DocumentContext struct {
	models.Document
	DeptID int64
}

func (r ApplicationRepository) Document(ctx context.Context, docID int64) (DocumentContext, error) {
	var d DocumentContext
	var path, uploaded sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT d.doc_id, d.app_id, d.doc_type, d.doc_path, d.uploaded_date, d.verification_status, s.dept_id
		FROM document d
		JOIN application a ON d.app_id = a.app_id
		JOIN service s ON a.service_id = s.service_id
		WHERE d.doc_id = ?`, docID).
		Scan(&d.ID, &d.AppID, &d.DocType, &path, &uploaded, &d.Status, &d.DeptID)
	if errors.Is(err, sql.ErrNoRows) {
		return DocumentContext{}, domain.NotFoundError{Resource: "document"}
	}
	if err != nil {
		return DocumentContext{}, err
	}
	d.DocPath = path.String
	d.UploadedDate = uploaded.String
	return d, nil
}

// StatusFee reads the application's current status and service fee; the
// cascade uses it inside the verification transaction.
func (r ApplicationRepository) StatusFee(ctx context.Context, q db.Querier, appID int64) (domain.ApplicationStatus, int64, error) {
	var status domain.ApplicationStatus
	var fee int64
	err := q.QueryRowContext(ctx, `
		SELECT a.status, s.fee
		FROM application a
		JOIN service s ON a.service_id = s.service_id
		WHERE a.app_id = ?`, appID).Scan(&status, &fee)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, domain.NotFoundError{Resource: "application"}
	}
	if err != nil {
		return "", 0, err
	}
	return status, fee, nil
}

func (r ApplicationRepository) SetDocumentStatus(ctx context.Context, q db.Querier, docID int64, status domain.DocumentStatus) error {
	_, err := q.ExecContext(ctx,
		`UPDATE document SET verification_status=? WHERE doc_id=?`, string(status), docID)
	return err
}

func (r ApplicationRepository) PaymentExists(ctx context.Context, q db.Querier, appID int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM payment WHERE app_id=? LIMIT 1`, appID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r ApplicationRepository) InsertPayment(ctx context.Context, q db.Querier, appID, amount int64, mode, txnID, date string) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO payment (app_id, amount, payment_date, payment_mode, transaction_id, status)
		VALUES (?, ?, ?, ?, ?, 'SUCCESS')`,
		appID, amount, date, mode, txnID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r ApplicationRepository) Payments(ctx context.Context, appID int64) ([]models.Payment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT payment_id, app_id, amount, payment_date, payment_mode, transaction_id, status
		FROM payment WHERE app_id = ?`, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.AppID, &p.Amount, &p.PaymentDate, &p.PaymentMode, &p.TransactionID, &p.Status); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateStatus writes the new status, keeps the existing remark when the
// new one is empty, and stamps the completion date for COMPLETED.
func (r ApplicationRepository) UpdateStatus(ctx context.Context, q db.Querier, appID int64, status domain.ApplicationStatus, remark string, stampCompletion bool) error {
	_, err := q.ExecContext(ctx, `
		UPDATE application
		SET status = ?,
			remark = COALESCE(?, remark),
			completion_date = IF(?, CURDATE(), completion_date)
		WHERE app_id = ?`,
		string(status), db.NullIfEmpty(remark), stampCompletion, appID)
	return err
}

// AdminFilter scopes the admin application listing. DeptID zero means all
// departments (super admin); Status empty means all statuses.
type AdminFilter struct {
	DeptID int64
	Status string
	Page   int
	Limit  int
}

func (r ApplicationRepository) ListAdmin(ctx context.Context, f AdminFilter) ([]models.ApplicationDetail, error) {
	query := `
		SELECT
			a.app_id, a.citizen_id, c.name, c.email, c.phone,
			a.service_id, s.service_name, s.fee, d.dept_id, d.dept_name,
			a.applied_date, a.completion_date, a.status, a.remark,
			DATEDIFF(COALESCE(a.completion_date, CURDATE()), a.applied_date)
		FROM application a
		JOIN citizen c ON a.citizen_id = c.citizen_id
		JOIN service s ON a.service_id = s.service_id
		JOIN department d ON s.dept_id = d.dept_id
		WHERE 1=1`
	args := []any{}
	if f.DeptID != 0 {
		query += ` AND s.dept_id = ?`
		args = append(args, f.DeptID)
	}
	if f.Status != "" {
		query += ` AND a.status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY a.applied_date DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ApplicationDetail{}
	for rows.Next() {
		var d models.ApplicationDetail
		var completion, remark, phone sql.NullString
		if err := rows.Scan(&d.ID, &d.CitizenID, &d.CitizenName, &d.CitizenEmail, &phone,
			&d.ServiceID, &d.ServiceName, &d.Fee, &d.DeptID, &d.DeptName,
			&d.AppliedDate, &completion, &d.Status, &remark, &d.DaysTaken); err != nil {
			return nil, err
		}
		d.CitizenPhone = phone.String
		d.CompletionDate = completion.String
		d.Remark = remark.String
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r ApplicationRepository) CountAdmin(ctx context.Context, f AdminFilter) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM application a
		JOIN service s ON a.service_id = s.service_id
		WHERE 1=1`
	args := []any{}
	if f.DeptID != 0 {
		query += ` AND s.dept_id = ?`
		args = append(args, f.DeptID)
	}
	if f.Status != "" {
		query += ` AND a.status = ?`
		args = append(args, f.Status)
	}
	var n int
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (r ApplicationRepository) PendingDocuments(ctx context.Context, deptID int64) ([]models.PendingDocument, error) {
	query := `
		SELECT d.doc_id, d.app_id, d.doc_type, COALESCE(d.doc_path, ''), COALESCE(d.uploaded_date, ''),
			d.verification_status, s.service_name, s.dept_id, c.name
		FROM document d
		JOIN application a ON d.app_id = a.app_id
		JOIN service s ON a.service_id = s.service_id
		JOIN citizen c ON a.citizen_id = c.citizen_id
		WHERE d.verification_status = 'PENDING'`
	args := []any{}
	if deptID != 0 {
		query += ` AND s.dept_id = ?`
		args = append(args, deptID)
	}
	query += ` ORDER BY d.uploaded_date ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PendingDocument{}
	for rows.Next() {
		var p models.PendingDocument
		if err := rows.Scan(&p.ID, &p.AppID, &p.DocType, &p.DocPath, &p.UploadedDate,
			&p.Status, &p.ServiceName, &p.DeptID, &p.CitizenName); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r ApplicationRepository) DashboardStats(ctx context.Context, deptID int64) (models.DashboardStats, error) {
	deptFilter := ""
	args := []any{}
	if deptID != 0 {
		deptFilter = " AND s.dept_id = ?"
		args = []any{deptID, deptID, deptID, deptID, deptID, deptID}
	}
	query := `
		SELECT
			(SELECT COUNT(*) FROM application a
			 JOIN service s ON a.service_id = s.service_id
			 WHERE 1=1` + deptFilter + `) AS total_applications,
			(SELECT COUNT(*) FROM application a
			 JOIN service s ON a.service_id = s.service_id
			 WHERE a.status = 'PENDING'` + deptFilter + `) AS pending_applications,
			(SELECT COUNT(*) FROM application a
			 JOIN service s ON a.service_id = s.service_id
			 WHERE a.status = 'DOCUMENTS_VERIFIED'` + deptFilter + `) AS documents_verified_applications,
			(SELECT COUNT(*) FROM application a
			 JOIN service s ON a.service_id = s.service_id
			 WHERE a.status = 'IN_PROGRESS'` + deptFilter + `) AS in_progress_applications,
			(SELECT COUNT(*) FROM application a
			 JOIN service s ON a.service_id = s.service_id
			 WHERE a.status = 'COMPLETED'` + deptFilter + `) AS completed_applications,
			(SELECT COUNT(*) FROM grievance g
			 LEFT JOIN service s ON g.service_id = s.service_id
			 WHERE g.status = 'OPEN'` + deptFilter + `) AS open_grievances`

	var st models.DashboardStats
	err := r.DB.QueryRowContext(ctx, query, args...).
		Scan(&st.TotalApplications, &st.PendingApplications, &st.DocsVerifiedApplications,
			&st.InProgressApplications, &st.CompletedApplications, &st.OpenGrievances)
	return st, err
}
