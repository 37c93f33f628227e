package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
	"sevaportal/internal/notify"
	"sevaportal/internal/repositories"
)

func testApplicationService(t *testing.T) (ApplicationService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return ApplicationService{
		DB:       db,
		Apps:     repositories.ApplicationRepository{DB: db},
		Catalog:  repositories.CatalogRepository{DB: db},
		Citizens: repositories.CitizenRepository{DB: db},
		Notifier: notify.NopNotifier{},
	}, mock
}

func docRows(rows ...[]driver.Value) *sqlmock.Rows {
	r := sqlmock.NewRows([]string{"doc_id", "app_id", "doc_type", "doc_path", "uploaded_date", "verification_status"})
	for _, row := range rows {
		r.AddRow(row...)
	}
	return r
}

func expectDocumentLookup(mock sqlmock.Sqlmock, docID, appID, deptID int64) {
	mock.ExpectQuery("FROM document d").
		WithArgs(docID).
		WillReturnRows(sqlmock.NewRows([]string{"doc_id", "app_id", "doc_type", "doc_path", "uploaded_date", "verification_status", "dept_id"}).
			AddRow(docID, appID, "aadhaar card", "/uploads/a.pdf", "2026-08-01", "PENDING", deptID))
}

func TestNextAfterVerification(t *testing.T) {
	noPayment := func() (bool, error) { return false, nil }
	paid := func() (bool, error) { return true, nil }

	verified := func(n int) []models.Document {
		docs := make([]models.Document, n)
		for i := range docs {
			docs[i].Status = domain.DocVerified
		}
		return docs
	}

	t.Run("rejected document rejects the set", func(t *testing.T) {
		docs := verified(2)
		docs[1].Status = domain.DocRejected
		next, changed, err := nextAfterVerification(domain.AppPending, 50, docs, noPayment)
		if err != nil || !changed || next != domain.AppDocumentRejected {
			t.Fatalf("got (%v, %v, %v), want DOCUMENT_REJECTED", next, changed, err)
		}
	})

	t.Run("all verified with fee waits at the gate", func(t *testing.T) {
		next, changed, err := nextAfterVerification(domain.AppPending, 50, verified(3), noPayment)
		if err != nil || !changed || next != domain.AppDocumentsVerified {
			t.Fatalf("got (%v, %v, %v), want DOCUMENTS_VERIFIED", next, changed, err)
		}
	})

	t.Run("zero fee skips the gate", func(t *testing.T) {
		next, changed, err := nextAfterVerification(domain.AppPending, 0, verified(1), noPayment)
		if err != nil || !changed || next != domain.AppInProgress {
			t.Fatalf("got (%v, %v, %v), want IN_PROGRESS", next, changed, err)
		}
	})

	t.Run("already paid skips the gate", func(t *testing.T) {
		next, changed, err := nextAfterVerification(domain.AppPending, 50, verified(1), paid)
		if err != nil || !changed || next != domain.AppInProgress {
			t.Fatalf("got (%v, %v, %v), want IN_PROGRESS", next, changed, err)
		}
	})

	t.Run("pending documents leave status alone", func(t *testing.T) {
		docs := verified(2)
		docs[0].Status = domain.DocPending
		_, changed, err := nextAfterVerification(domain.AppPending, 50, docs, noPayment)
		if err != nil || changed {
			t.Fatalf("changed = %v, want no change", changed)
		}
	})

	t.Run("non-pending application is not retriggered", func(t *testing.T) {
		_, changed, err := nextAfterVerification(domain.AppInProgress, 50, verified(2), noPayment)
		if err != nil || changed {
			t.Fatalf("changed = %v, want no change", changed)
		}
	})
}

func TestVerifyDocumentCascadeToDocumentsVerified(t *testing.T) {
	svc, mock := testApplicationService(t)
	admin := domain.AdminContext{AdminID: 1, Role: domain.RoleDeptAdmin, DeptID: 4}

	expectDocumentLookup(mock, 30, 12, 4)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE document SET verification_status").
		WithArgs("VERIFIED", int64(30)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT a.status, s.fee").
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "fee"}).AddRow("PENDING", 50))
	mock.ExpectQuery("FROM document WHERE app_id").
		WithArgs(int64(12)).
		WillReturnRows(docRows(
			[]driver.Value{30, 12, "aadhaar card", "", "2026-08-01", "VERIFIED"},
			[]driver.Value{31, 12, "address proof", "", "2026-08-01", "VERIFIED"},
		))
	mock.ExpectQuery("SELECT 1 FROM payment").
		WithArgs(int64(12)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("UPDATE application").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// The post-commit profile load for the notification mail; failing it
	// keeps the test free of background goroutines.
	mock.ExpectQuery("FROM application a").WillReturnError(sql.ErrConnDone)

	doc, err := svc.VerifyDocument(context.Background(), admin, 30, domain.DocVerified)
	if err != nil {
		t.Fatalf("VerifyDocument: %v", err)
	}
	if doc.Status != domain.DocVerified {
		t.Fatalf("doc status = %s, want VERIFIED", doc.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestVerifyDocumentRejectionCascades(t *testing.T) {
	svc, mock := testApplicationService(t)
	admin := domain.AdminContext{AdminID: 1, Role: domain.RoleSuperAdmin}

	expectDocumentLookup(mock, 30, 12, 4)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE document SET verification_status").
		WithArgs("REJECTED", int64(30)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT a.status, s.fee").
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "fee"}).AddRow("PENDING", 0))
	mock.ExpectQuery("FROM document WHERE app_id").
		WithArgs(int64(12)).
		WillReturnRows(docRows(
			[]driver.Value{30, 12, "aadhaar card", "", "2026-08-01", "REJECTED"},
		))
	mock.ExpectExec("UPDATE application").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM application a").WillReturnError(sql.ErrConnDone)

	_, err := svc.VerifyDocument(context.Background(), admin, 30, domain.DocRejected)
	if err != nil {
		t.Fatalf("VerifyDocument: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestVerifyDocumentForeignDepartment(t *testing.T) {
	svc, mock := testApplicationService(t)
	admin := domain.AdminContext{AdminID: 1, Role: domain.RoleDeptAdmin, DeptID: 2}

	expectDocumentLookup(mock, 30, 12, 4)

	_, err := svc.VerifyDocument(context.Background(), admin, 30, domain.DocVerified)
	if !domain.IsForbidden(err) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestPayTwiceFails(t *testing.T) {
	svc, mock := testApplicationService(t)

	ownedRow := func(status string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"app_id", "citizen_id", "service_id", "service_name", "fee",
			"applied_date", "completion_date", "status", "remark"}).
			AddRow(12, 2, 5, "income certificate", 50, "2026-08-01", nil, status, nil)
	}

	// Already moved past the fee gate.
	mock.ExpectQuery("FROM application a").
		WithArgs(int64(12), int64(2)).
		WillReturnRows(ownedRow("IN_PROGRESS"))
	_, err := svc.Pay(context.Background(), 2, 12, "UPI")
	if !domain.IsAlreadyProcessed(err) {
		t.Fatalf("err = %v, want already processed", err)
	}

	// Status still at the gate but a payment row exists.
	mock.ExpectQuery("FROM application a").
		WithArgs(int64(12), int64(2)).
		WillReturnRows(ownedRow("DOCUMENTS_VERIFIED"))
	mock.ExpectQuery("FROM document WHERE app_id").
		WithArgs(int64(12)).
		WillReturnRows(docRows([]driver.Value{30, 12, "aadhaar card", "", "2026-08-01", "VERIFIED"}))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM payment").
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()
	_, err = svc.Pay(context.Background(), 2, 12, "UPI")
	if !domain.IsAlreadyProcessed(err) {
		t.Fatalf("err = %v, want already processed", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPayBlockedBeforeVerification(t *testing.T) {
	svc, mock := testApplicationService(t)

	ownedRow := func(status string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"app_id", "citizen_id", "service_id", "service_name", "fee",
			"applied_date", "completion_date", "status", "remark"}).
			AddRow(12, 2, 5, "income certificate", 50, "2026-08-01", nil, status, nil)
	}

	// A rejected document set blocks payment outright.
	mock.ExpectQuery("FROM application a").
		WithArgs(int64(12), int64(2)).
		WillReturnRows(ownedRow("DOCUMENT_REJECTED"))
	_, err := svc.Pay(context.Background(), 2, 12, "UPI")
	if !domain.IsConflict(err) {
		t.Fatalf("rejected documents: err = %v, want conflict", err)
	}

	// PENDING with an unverified document waits for the admin.
	mock.ExpectQuery("FROM application a").
		WithArgs(int64(12), int64(2)).
		WillReturnRows(ownedRow("PENDING"))
	mock.ExpectQuery("FROM document WHERE app_id").
		WithArgs(int64(12)).
		WillReturnRows(docRows([]driver.Value{30, 12, "aadhaar card", "", "2026-08-01", "PENDING"}))
	_, err = svc.Pay(context.Background(), 2, 12, "UPI")
	if !domain.IsConflict(err) {
		t.Fatalf("pending document: err = %v, want conflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPaySuccessMovesToInProgress(t *testing.T) {
	svc, mock := testApplicationService(t)

	mock.ExpectQuery("FROM application a").
		WithArgs(int64(12), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"app_id", "citizen_id", "service_id", "service_name", "fee",
			"applied_date", "completion_date", "status", "remark"}).
			AddRow(12, 2, 5, "income certificate", 50, "2026-08-01", nil, "DOCUMENTS_VERIFIED", nil))
	mock.ExpectQuery("FROM document WHERE app_id").
		WithArgs(int64(12)).
		WillReturnRows(docRows([]driver.Value{30, 12, "aadhaar card", "", "2026-08-01", "VERIFIED"}))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM payment").
		WithArgs(int64(12)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO payment").
		WillReturnResult(sqlmock.NewResult(77, 1))
	mock.ExpectExec("UPDATE application").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	pay, err := svc.Pay(context.Background(), 2, 12, "UPI")
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}
	if pay.Amount != 50 {
		t.Fatalf("amount = %d, want 50", pay.Amount)
	}
	if pay.TransactionID == "" {
		t.Fatalf("transaction id is empty")
	}
}
