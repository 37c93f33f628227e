package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"sevaportal/internal/domain"
)

func TestIntervalsMapsRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := BookingRepository{DB: db}
	mock.ExpectQuery("SELECT b.seat_number").
		WithArgs(int64(9), int64(9), int64(3), "2026-09-01").
		WillReturnRows(sqlmock.NewRows([]string{"seat_number", "src_order", "dst_order"}).
			AddRow(7, 1, 3).
			AddRow(12, 2, 4))

	intervals, err := repo.Intervals(context.Background(), 3, 9, "2026-09-01")
	if err != nil {
		t.Fatalf("Intervals: %v", err)
	}
	if len(intervals) != 2 {
		t.Fatalf("len = %d, want 2", len(intervals))
	}
	if intervals[0].Seat != 7 || intervals[0].SrcOrder != 1 || intervals[0].DstOrder != 3 {
		t.Fatalf("first interval = %+v", intervals[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestIntervalsForUpdateAppendsLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := BookingRepository{DB: db}
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(int64(9), int64(9), int64(3), "2026-09-01").
		WillReturnRows(sqlmock.NewRows([]string{"seat_number", "src_order", "dst_order"}))

	intervals, err := repo.IntervalsForUpdate(context.Background(), db, 3, 9, "2026-09-01")
	if err != nil {
		t.Fatalf("IntervalsForUpdate: %v", err)
	}
	if len(intervals) != 0 {
		t.Fatalf("len = %d, want 0", len(intervals))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTicketNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := BookingRepository{DB: db}
	mock.ExpectQuery("FROM booking b").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id"}))

	_, err = repo.Ticket(context.Background(), 404)
	if !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestPayHistoryTotals(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := BookingRepository{DB: db}
	mock.ExpectQuery("SELECT amount, payment_mode").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"amount", "payment_mode", "payment_date", "status"}).
			AddRow(40, "UPI", "2026-08-27", "SUCCESS").
			AddRow(110, "CARD", "2026-08-25", "SUCCESS"))
	mock.ExpectQuery("SELECT SUM\\(amount\\)").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(150))

	records, total, err := repo.PayHistory(context.Background(), 7)
	if err != nil {
		t.Fatalf("PayHistory: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if total != 150 {
		t.Fatalf("total = %d, want 150", total)
	}
}
