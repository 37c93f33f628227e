package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"sevaportal/internal/domain"
	"sevaportal/internal/fare"
	"sevaportal/internal/locks"
	"sevaportal/internal/repositories"
)

func testBookingService(t *testing.T) (BookingService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return BookingService{
		DB:       db,
		Buses:    repositories.BusRepository{DB: db},
		Routes:   repositories.RouteRepository{DB: db},
		Stops:    repositories.StopRepository{DB: db},
		Bookings: repositories.BookingRepository{DB: db},
		Locks:    locks.New(),
		Tariff:   fare.Tariff{Base: 20, PerHop: 10},
		Timeout:  2 * time.Second,
	}, mock
}

func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format("2006-01-02")
}

func TestBookSeatSuccess(t *testing.T) {
	svc, mock := testBookingService(t)
	date := futureDate()

	mock.ExpectQuery("SELECT bus_id, bus_name, total_seats").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"bus_id", "bus_name", "total_seats", "route_id", "route_variant_id"}).
			AddRow(3, "morning express", 40, 1, 9))

	mock.ExpectQuery("SELECT stop_id, stop_order FROM routestops").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"stop_id", "stop_order"}).
			AddRow(10, 1).AddRow(11, 2).AddRow(12, 3).AddRow(13, 4))

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(int64(9), int64(9), int64(3), date).
		WillReturnRows(sqlmock.NewRows([]string{"seat_number", "src_order", "dst_order"}).
			AddRow(7, 1, 2))
	mock.ExpectExec("INSERT INTO booking").
		WillReturnResult(sqlmock.NewResult(55, 1))
	mock.ExpectExec("INSERT INTO payment").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// Seat 7 is booked for [1,2); booking [2,4) on the same seat is a
	// back-to-back continuation and must succeed.
	res, err := svc.BookSeat(context.Background(), BookRequest{
		CitizenID:     2,
		BusID:         3,
		SrcStopID:     11,
		DstStopID:     13,
		SeatNumber:    7,
		TravelDate:    date,
		PaymentMethod: "UPI",
	})
	if err != nil {
		t.Fatalf("BookSeat: %v", err)
	}
	if res.BookingID != 55 {
		t.Fatalf("booking id = %d, want 55", res.BookingID)
	}
	// Two hops at base 20 plus 10 per extra hop.
	if res.Fare != 30 {
		t.Fatalf("fare = %d, want 30", res.Fare)
	}
	if res.TransactionID == "" {
		t.Fatalf("transaction id is empty")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBookSeatOverlapConflict(t *testing.T) {
	svc, mock := testBookingService(t)
	date := futureDate()

	mock.ExpectQuery("SELECT bus_id, bus_name, total_seats").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"bus_id", "bus_name", "total_seats", "route_id", "route_variant_id"}).
			AddRow(3, "morning express", 40, 1, 9))

	mock.ExpectQuery("SELECT stop_id, stop_order FROM routestops").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"stop_id", "stop_order"}).
			AddRow(10, 1).AddRow(11, 2).AddRow(12, 3).AddRow(13, 4))

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"seat_number", "src_order", "dst_order"}).
			AddRow(7, 2, 4))
	mock.ExpectRollback()

	// Seat 7 holds [2,4); the request [1,3) overlaps it.
	_, err := svc.BookSeat(context.Background(), BookRequest{
		CitizenID:     2,
		BusID:         3,
		SrcStopID:     10,
		DstStopID:     12,
		SeatNumber:    7,
		TravelDate:    date,
		PaymentMethod: "UPI",
	})
	if !domain.IsSeatConflict(err) {
		t.Fatalf("err = %v, want seat conflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBookSeatRejectsInvalidInput(t *testing.T) {
	svc, mock := testBookingService(t)
	date := futureDate()

	_, err := svc.BookSeat(context.Background(), BookRequest{TravelDate: "not-a-date", PaymentMethod: "UPI"})
	if !domain.IsValidation(err) {
		t.Fatalf("bad date: err = %v, want validation error", err)
	}

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	_, err = svc.BookSeat(context.Background(), BookRequest{TravelDate: yesterday, PaymentMethod: "UPI"})
	if !domain.IsValidation(err) {
		t.Fatalf("past date: err = %v, want validation error", err)
	}

	mock.ExpectQuery("SELECT bus_id, bus_name, total_seats").
		WillReturnRows(sqlmock.NewRows([]string{"bus_id", "bus_name", "total_seats", "route_id", "route_variant_id"}).
			AddRow(3, "morning express", 40, 1, 9))
	_, err = svc.BookSeat(context.Background(), BookRequest{
		BusID: 3, SeatNumber: 41, TravelDate: date, PaymentMethod: "UPI",
	})
	if !domain.IsValidation(err) {
		t.Fatalf("seat out of range: err = %v, want validation error", err)
	}

	// Reversed segment on the variant.
	mock.ExpectQuery("SELECT bus_id, bus_name, total_seats").
		WillReturnRows(sqlmock.NewRows([]string{"bus_id", "bus_name", "total_seats", "route_id", "route_variant_id"}).
			AddRow(3, "morning express", 40, 1, 9))
	mock.ExpectQuery("SELECT stop_id, stop_order FROM routestops").
		WillReturnRows(sqlmock.NewRows([]string{"stop_id", "stop_order"}).
			AddRow(10, 1).AddRow(11, 2))
	_, err = svc.BookSeat(context.Background(), BookRequest{
		BusID: 3, SrcStopID: 11, DstStopID: 10, SeatNumber: 5, TravelDate: date, PaymentMethod: "UPI",
	})
	if !domain.IsInvalidSegment(err) {
		t.Fatalf("reversed segment: err = %v, want invalid segment", err)
	}
}

func TestBookSeatDistinguishesUnknownStop(t *testing.T) {
	svc, mock := testBookingService(t)
	date := futureDate()

	// A stop id that exists nowhere in the network is not found.
	mock.ExpectQuery("SELECT bus_id, bus_name, total_seats").
		WillReturnRows(sqlmock.NewRows([]string{"bus_id", "bus_name", "total_seats", "route_id", "route_variant_id"}).
			AddRow(3, "morning express", 40, 1, 9))
	mock.ExpectQuery("SELECT stop_id, stop_order FROM routestops").
		WillReturnRows(sqlmock.NewRows([]string{"stop_id", "stop_order"}).
			AddRow(10, 1).AddRow(11, 2))
	mock.ExpectQuery("SELECT 1 FROM bus_stops WHERE stop_id").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)
	_, err := svc.BookSeat(context.Background(), BookRequest{
		BusID: 3, SrcStopID: 10, DstStopID: 99, SeatNumber: 5, TravelDate: date, PaymentMethod: "UPI",
	})
	if !domain.IsNotFound(err) {
		t.Fatalf("unknown stop: err = %v, want not found", err)
	}

	// A real stop this variant does not serve is an invalid segment.
	mock.ExpectQuery("SELECT bus_id, bus_name, total_seats").
		WillReturnRows(sqlmock.NewRows([]string{"bus_id", "bus_name", "total_seats", "route_id", "route_variant_id"}).
			AddRow(3, "morning express", 40, 1, 9))
	mock.ExpectQuery("SELECT stop_id, stop_order FROM routestops").
		WillReturnRows(sqlmock.NewRows([]string{"stop_id", "stop_order"}).
			AddRow(10, 1).AddRow(11, 2))
	mock.ExpectQuery("SELECT 1 FROM bus_stops WHERE stop_id").
		WithArgs(int64(50)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	_, err = svc.BookSeat(context.Background(), BookRequest{
		BusID: 3, SrcStopID: 10, DstStopID: 50, SeatNumber: 5, TravelDate: date, PaymentMethod: "UPI",
	})
	if !domain.IsInvalidSegment(err) {
		t.Fatalf("off-variant stop: err = %v, want invalid segment", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBookedSeatsFiltersDisjointSegments(t *testing.T) {
	svc, mock := testBookingService(t)
	date := futureDate()

	mock.ExpectQuery("SELECT bus_id, bus_name, total_seats").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"bus_id", "bus_name", "total_seats", "route_id", "route_variant_id"}).
			AddRow(3, "morning express", 40, 1, 9))
	mock.ExpectQuery("SELECT stop_id, stop_order FROM routestops").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"stop_id", "stop_order"}).
			AddRow(10, 1).AddRow(11, 2).AddRow(12, 3).AddRow(13, 4))
	mock.ExpectQuery("SELECT b.seat_number").
		WillReturnRows(sqlmock.NewRows([]string{"seat_number", "src_order", "dst_order"}).
			AddRow(1, 1, 2).
			AddRow(2, 2, 4).
			AddRow(3, 3, 4))

	// Requested segment [1,3): seat 1 ([1,2)) and seat 2 ([2,4)) overlap,
	// seat 3 ([3,4)) does not.
	seats, err := svc.BookedSeats(context.Background(), 3, date, 10, 12)
	if err != nil {
		t.Fatalf("BookedSeats: %v", err)
	}
	if len(seats) != 2 || seats[0] != 1 || seats[1] != 2 {
		t.Fatalf("seats = %v, want [1 2]", seats)
	}
}
