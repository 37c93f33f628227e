package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
	"sevaportal/internal/repositories"
)

func testTopologyService(t *testing.T) (TopologyService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return TopologyService{
		DB:       db,
		Stops:    repositories.StopRepository{DB: db},
		Routes:   repositories.RouteRepository{DB: db},
		Buses:    repositories.BusRepository{DB: db},
		Bookings: repositories.BookingRepository{DB: db},
	}, mock
}

func expectStopExists(mock sqlmock.Sqlmock, id int64) {
	mock.ExpectQuery("SELECT 1 FROM bus_stops WHERE stop_id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
}

func TestEditVariantRefusedWithUpcomingBookings(t *testing.T) {
	svc, mock := testTopologyService(t)

	mock.ExpectQuery("SELECT 1 FROM routevariants WHERE route_variant_id").
		WithArgs(int64(9), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	expectStopExists(mock, 10)
	expectStopExists(mock, 11)
	expectStopExists(mock, 12)
	mock.ExpectQuery("SELECT 1 FROM routevariants WHERE route_id").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM booking WHERE route_variant_id").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	_, err := svc.EditVariant(context.Background(), 1, 9, []int64{10, 11, 12})
	if !domain.IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteVariantWithOnlyPastBookings(t *testing.T) {
	svc, mock := testTopologyService(t)

	mock.ExpectQuery("SELECT 1 FROM routevariants WHERE route_variant_id").
		WithArgs(int64(9), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM booking WHERE route_variant_id").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM busschedule WHERE route_variant_id").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM routestops WHERE route_variant_id").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM routevariants WHERE route_variant_id").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.DeleteVariant(context.Background(), 1, 9); err != nil {
		t.Fatalf("DeleteVariant: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAddVariantValidatesSequence(t *testing.T) {
	svc, mock := testTopologyService(t)

	mock.ExpectQuery("SELECT 1 FROM routes WHERE route_id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	if _, err := svc.AddVariant(context.Background(), 1, []int64{10}); !domain.IsValidation(err) {
		t.Fatalf("single stop: err = %v, want validation error", err)
	}

	mock.ExpectQuery("SELECT 1 FROM routes WHERE route_id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	expectStopExists(mock, 10)
	if _, err := svc.AddVariant(context.Background(), 1, []int64{10, 10}); !domain.IsValidation(err) {
		t.Fatalf("duplicate stop: err = %v, want validation error", err)
	}
}

func TestDeleteStopStillReferenced(t *testing.T) {
	svc, mock := testTopologyService(t)

	expectStopExists(mock, 10)
	mock.ExpectQuery("SELECT 1 FROM routestops WHERE stop_id").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	if err := svc.DeleteStop(context.Background(), 10); !domain.IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestValidateSchedule(t *testing.T) {
	stops := []models.VariantStop{
		{StopID: 10, Order: 1},
		{StopID: 11, Order: 2},
		{StopID: 12, Order: 3},
	}

	good := []models.ScheduleEntry{
		{StopID: 10, ArrivalTime: "08:00:00", DepartureTime: "08:05:00"},
		{StopID: 11, ArrivalTime: "08:30:00", DepartureTime: "08:32:00"},
		{StopID: 12, ArrivalTime: "09:00:00", DepartureTime: "09:00:00"},
	}
	if err := validateSchedule(stops, good); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}

	short := good[:2]
	if err := validateSchedule(stops, short); !domain.IsValidation(err) {
		t.Fatalf("missing stop: err = %v, want validation error", err)
	}

	wrongOrder := []models.ScheduleEntry{good[1], good[0], good[2]}
	if err := validateSchedule(stops, wrongOrder); !domain.IsValidation(err) {
		t.Fatalf("wrong order: err = %v, want validation error", err)
	}

	backwards := []models.ScheduleEntry{
		{StopID: 10, ArrivalTime: "08:00:00", DepartureTime: "08:05:00"},
		{StopID: 11, ArrivalTime: "07:30:00", DepartureTime: "07:32:00"},
		{StopID: 12, ArrivalTime: "09:00:00", DepartureTime: "09:00:00"},
	}
	if err := validateSchedule(stops, backwards); !domain.IsValidation(err) {
		t.Fatalf("time going backwards: err = %v, want validation error", err)
	}

	badClock := []models.ScheduleEntry{
		{StopID: 10, ArrivalTime: "8am", DepartureTime: "08:05:00"},
		good[1], good[2],
	}
	if err := validateSchedule(stops, badClock); !domain.IsValidation(err) {
		t.Fatalf("bad clock: err = %v, want validation error", err)
	}
}

func TestSetScheduleRejectsExistingSchedule(t *testing.T) {
	svc, mock := testTopologyService(t)

	mock.ExpectQuery("SELECT bus_id, bus_name, total_seats").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"bus_id", "bus_name", "total_seats", "route_id", "route_variant_id"}).
			AddRow(3, "morning express", 40, 1, 9))
	mock.ExpectQuery("SELECT 1 FROM busschedule WHERE bus_id").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	_, err := svc.SetBusSchedule(context.Background(), 3, nil)
	if !domain.IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReplaceScheduleRefusedWithUpcomingBookings(t *testing.T) {
	svc, mock := testTopologyService(t)

	mock.ExpectQuery("SELECT bus_id, bus_name, total_seats").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"bus_id", "bus_name", "total_seats", "route_id", "route_variant_id"}).
			AddRow(3, "morning express", 40, 1, 9))
	mock.ExpectQuery("FROM routestops rs").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"stop_id", "stop_name", "stop_order"}).
			AddRow(10, "gandhi chowk", 1).
			AddRow(11, "central", 2))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM booking WHERE bus_id").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	schedule := []models.ScheduleEntry{
		{StopID: 10, ArrivalTime: "08:00:00", DepartureTime: "08:05:00"},
		{StopID: 11, ArrivalTime: "08:30:00", DepartureTime: "08:32:00"},
	}
	_, err := svc.ReplaceBusSchedule(context.Background(), 3, schedule)
	if !domain.IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteScheduleWithOnlyPastBookings(t *testing.T) {
	svc, mock := testTopologyService(t)

	mock.ExpectQuery("SELECT bus_id, bus_name, total_seats").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"bus_id", "bus_name", "total_seats", "route_id", "route_variant_id"}).
			AddRow(3, "morning express", 40, 1, 9))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM booking WHERE bus_id").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM busschedule WHERE bus_id").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := svc.DeleteBusSchedule(context.Background(), 3); err != nil {
		t.Fatalf("DeleteBusSchedule: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestVariantLabel(t *testing.T) {
	if got := variantLabel([]int64{10, 5, 7}); got != "10_5_7" {
		t.Fatalf("label = %q, want 10_5_7", got)
	}
}
