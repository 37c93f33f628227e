package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sevaportal/internal/config"
	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
	"sevaportal/internal/fare"
	"sevaportal/internal/locks"
	"sevaportal/internal/repositories"
	"sevaportal/internal/segment"
	"sevaportal/internal/utils"
)

// BookingService owns the seat/segment availability and booking flow.
// Commits for the same bus and travel date are serialized twice: by an
// in-process keyed mutex and by row locks inside the transaction, so a
// seat can never be sold for two overlapping segments.
type BookingService struct {
	DB       *sql.DB
	Buses    repositories.BusRepository
	Routes   repositories.RouteRepository
	Stops    repositories.StopRepository
	Bookings repositories.BookingRepository
	Locks    *locks.KeyedMutex
	Tariff   fare.Tariff
	Timeout  time.Duration
}

func NewBookingService(env config.Env, db *sql.DB) BookingService {
	return BookingService{
		DB:       db,
		Buses:    repositories.BusRepository{DB: db},
		Routes:   repositories.RouteRepository{DB: db},
		Stops:    repositories.StopRepository{DB: db},
		Bookings: repositories.BookingRepository{DB: db},
		Locks:    locks.New(),
		Tariff:   fare.Tariff{Base: env.FareBase, PerHop: env.FarePerHop},
		Timeout:  env.BookingTimeout,
	}
}

// SearchBuses finds buses serving source before destination. Unknown stop
// names simply yield no options; the handler reports the empty result.
func (s BookingService) SearchBuses(ctx context.Context, source, destination string) ([]models.BusOption, error) {
	source = utils.NormalizeName(source)
	destination = utils.NormalizeName(destination)
	if source == "" || destination == "" {
		return nil, domain.ValidationError{Field: "source/destination", Msg: "both stops are required"}
	}
	if source == destination {
		return nil, domain.InvalidSegmentError{Msg: "source and destination must differ"}
	}

	srcID, err := s.Stops.IDByName(ctx, source)
	if domain.IsNotFound(err) {
		return []models.BusOption{}, nil
	}
	if err != nil {
		return nil, err
	}
	dstID, err := s.Stops.IDByName(ctx, destination)
	if domain.IsNotFound(err) {
		return []models.BusOption{}, nil
	}
	if err != nil {
		return nil, err
	}

	options, err := s.Buses.SearchBySegment(ctx, srcID, dstID)
	if err != nil {
		return nil, err
	}
	for i := range options {
		orders, err := s.Routes.StopOrders(ctx, options[i].VariantID)
		if err != nil {
			return nil, err
		}
		amount, err := fare.Amount(orders, srcID, dstID, s.Tariff)
		if err != nil {
			// The search query already filtered on forward order, so
			// this only fires on a concurrent variant edit. Skip the
			// option rather than fail the whole search.
			continue
		}
		options[i].Fare = amount
	}
	return options, nil
}

// BookedSeats returns the seats unavailable for the requested segment on
// the bus and date. A seat booked for a disjoint section of the route is
// not listed.
func (s BookingService) BookedSeats(ctx context.Context, busID int64, travelDate string, srcStopID, dstStopID int64) ([]int, error) {
	if _, err := utils.ParseDate(travelDate); err != nil {
		return nil, domain.ValidationError{Field: "travel_date", Msg: "must be YYYY-MM-DD"}
	}
	bus, err := s.Buses.Get(ctx, busID)
	if err != nil {
		return nil, err
	}
	orders, err := s.Routes.StopOrders(ctx, bus.VariantID)
	if err != nil {
		return nil, err
	}
	srcOrder, dstOrder, err := s.resolveSegment(ctx, orders, srcStopID, dstStopID)
	if err != nil {
		return nil, err
	}
	intervals, err := s.Bookings.Intervals(ctx, busID, bus.VariantID, travelDate)
	if err != nil {
		return nil, err
	}
	return segment.NewIndex(intervals).BookedSeats(srcOrder, dstOrder), nil
}

// BookRequest is the seat purchase input.
type BookRequest struct {
	CitizenID     int64
	BusID         int64
	SrcStopID     int64
	DstStopID     int64
	SeatNumber    int
	TravelDate    string
	PaymentMethod string
}

// BookResult is returned on a successful commit.
type BookResult struct {
	BookingID     int64  `json:"booking_id"`
	Fare          int64  `json:"fare"`
	TransactionID string `json:"transaction_id"`
}

// BookSeat atomically sells one seat for one segment. The whole check and
// insert runs under the per-(bus, date) lock and inside a transaction
// bounded by the configured timeout.
func (s BookingService) BookSeat(ctx context.Context, req BookRequest) (BookResult, error) {
	date, err := utils.ParseDate(req.TravelDate)
	if err != nil {
		return BookResult{}, domain.ValidationError{Field: "travel_date", Msg: "must be YYYY-MM-DD"}
	}
	today, _ := utils.ParseDate(utils.Today())
	if date.Before(today) {
		return BookResult{}, domain.ValidationError{Field: "travel_date", Msg: "must not be in the past"}
	}
	if req.PaymentMethod == "" {
		return BookResult{}, domain.ValidationError{Field: "payment_method", Msg: "is required"}
	}

	bus, err := s.Buses.Get(ctx, req.BusID)
	if err != nil {
		return BookResult{}, err
	}
	if req.SeatNumber < 1 || req.SeatNumber > bus.TotalSeats {
		return BookResult{}, domain.ValidationError{
			Field: "seat_number",
			Msg:   fmt.Sprintf("must be between 1 and %d", bus.TotalSeats),
		}
	}

	orders, err := s.Routes.StopOrders(ctx, bus.VariantID)
	if err != nil {
		return BookResult{}, err
	}
	srcOrder, dstOrder, err := s.resolveSegment(ctx, orders, req.SrcStopID, req.DstStopID)
	if err != nil {
		return BookResult{}, err
	}
	amount, err := fare.Amount(orders, req.SrcStopID, req.DstStopID, s.Tariff)
	if err != nil {
		return BookResult{}, err
	}

	unlock := s.Locks.Lock(fmt.Sprintf("%d:%s", req.BusID, req.TravelDate))
	defer unlock()

	txCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	result, err := s.bookTx(txCtx, req, bus.VariantID, srcOrder, dstOrder, amount)
	if err != nil && errors.Is(txCtx.Err(), context.DeadlineExceeded) {
		return BookResult{}, domain.TimeoutError{Op: "booking", Err: err}
	}
	return result, err
}

func (s BookingService) bookTx(ctx context.Context, req BookRequest, variantID int64, srcOrder, dstOrder int, amount int64) (BookResult, error) {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return BookResult{}, err
	}
	defer tx.Rollback()

	intervals, err := s.Bookings.IntervalsForUpdate(ctx, tx, req.BusID, variantID, req.TravelDate)
	if err != nil {
		return BookResult{}, err
	}
	if !segment.NewIndex(intervals).IsFree(req.SeatNumber, srcOrder, dstOrder) {
		return BookResult{}, domain.SeatConflictError{Seat: req.SeatNumber}
	}

	bookingID, err := s.Bookings.Insert(ctx, tx, models.Booking{
		CitizenID:     req.CitizenID,
		BusID:         req.BusID,
		VariantID:     variantID,
		SrcStopID:     req.SrcStopID,
		DstStopID:     req.DstStopID,
		SeatNumber:    req.SeatNumber,
		TravelDate:    req.TravelDate,
		Fare:          amount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return BookResult{}, err
	}

	txnID := uuid.NewString()
	if err := s.Bookings.InsertPayment(ctx, tx, bookingID, amount, req.PaymentMethod, txnID, utils.Today()); err != nil {
		return BookResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return BookResult{}, err
	}
	return BookResult{BookingID: bookingID, Fare: amount, TransactionID: txnID}, nil
}

func (s BookingService) PastBookings(ctx context.Context, citizenID int64) ([]models.BookingRecord, error) {
	return s.Bookings.PastByCitizen(ctx, citizenID)
}

func (s BookingService) UpcomingBookings(ctx context.Context, citizenID int64) ([]models.BookingRecord, error) {
	return s.Bookings.UpcomingByCitizen(ctx, citizenID)
}

// PayHistory is the admin earnings rollup over the last N days.
func (s BookingService) PayHistory(ctx context.Context, days int) ([]models.PaymentRecord, int64, error) {
	if days <= 0 {
		days = 30
	}
	return s.Bookings.PayHistory(ctx, days)
}

// resolveSegment maps the stop ids onto the variant's stop orders. A
// stop id that exists nowhere in the network is NotFound; a real stop
// that this variant does not serve is an invalid segment.
func (s BookingService) resolveSegment(ctx context.Context, orders fare.StopOrders, srcID, dstID int64) (int, int, error) {
	for _, id := range []int64{srcID, dstID} {
		if _, ok := orders[id]; ok {
			continue
		}
		known, err := s.Stops.ExistsID(ctx, id)
		if err != nil {
			return 0, 0, err
		}
		if !known {
			return 0, 0, domain.NotFoundError{Resource: "stop"}
		}
	}
	return segmentOrders(orders, srcID, dstID)
}

func segmentOrders(orders fare.StopOrders, srcID, dstID int64) (int, int, error) {
	srcOrder, ok := orders[srcID]
	if !ok {
		return 0, 0, domain.InvalidSegmentError{Msg: "source stop is not part of this route variant"}
	}
	dstOrder, ok := orders[dstID]
	if !ok {
		return 0, 0, domain.InvalidSegmentError{Msg: "destination stop is not part of this route variant"}
	}
	if srcOrder >= dstOrder {
		return 0, 0, domain.InvalidSegmentError{}
	}
	return srcOrder, dstOrder, nil
}
