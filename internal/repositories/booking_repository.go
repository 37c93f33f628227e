package repositories

import (
	"context"
	"database/sql"
	"errors"

	"sevaportal/internal/db"
	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
	"sevaportal/internal/segment"
)

type BookingRepository struct {
	DB *sql.DB
}

const intervalsQuery = `
	SELECT b.seat_number, rs_src.stop_order, rs_dst.stop_order
	FROM booking b
	JOIN routestops rs_src ON rs_src.stop_id = b.src_stop_id AND rs_src.route_variant_id = ?
	JOIN routestops rs_dst ON rs_dst.stop_id = b.dst_stop_id AND rs_dst.route_variant_id = ?
	WHERE b.bus_id = ? AND b.travel_date = ?`

// Intervals loads every committed (seat, segment) tuple for one bus and
// travel date. The overlap filtering happens in Go via segment.Index so
// the predicate stays explicit and testable.
func (r BookingRepository) Intervals(ctx context.Context, busID, variantID int64, travelDate string) ([]segment.Interval, error) {
	return r.intervals(ctx, r.DB, intervalsQuery, busID, variantID, travelDate)
}

// IntervalsForUpdate is the transactional variant: it locks the matched
// booking rows so a concurrent commit for the same bus/date blocks until
// this transaction finishes.
func (r BookingRepository) IntervalsForUpdate(ctx context.Context, q db.Querier, busID, variantID int64, travelDate string) ([]segment.Interval, error) {
	return r.intervals(ctx, q, intervalsQuery+` FOR UPDATE`, busID, variantID, travelDate)
}

func (r BookingRepository) intervals(ctx context.Context, q db.Querier, query string, busID, variantID int64, travelDate string) ([]segment.Interval, error) {
	rows, err := q.QueryContext(ctx, query, variantID, variantID, busID, travelDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []segment.Interval{}
	for rows.Next() {
		var iv segment.Interval
		if err := rows.Scan(&iv.Seat, &iv.SrcOrder, &iv.DstOrder); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

func (r BookingRepository) Insert(ctx context.Context, q db.Querier, b models.Booking) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO booking (citizen_id, bus_id, route_variant_id, src_stop_id, dst_stop_id, seat_number, travel_date, fare, payment_method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.CitizenID, b.BusID, b.VariantID, b.SrcStopID, b.DstStopID, b.SeatNumber, b.TravelDate, b.Fare, b.PaymentMethod)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BookingRepository) InsertPayment(ctx context.Context, q db.Querier, bookingID, amount int64, mode, txnID, date string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO payment (booking_id, amount, payment_date, payment_mode, transaction_id, status)
		VALUES (?, ?, ?, ?, ?, 'SUCCESS')`,
		bookingID, amount, date, mode, txnID)
	return err
}

// FutureCountByVariant counts bookings on the variant with travel_date
// today or later; used as the structural-mutation guard.
func (r BookingRepository) FutureCountByVariant(ctx context.Context, q db.Querier, variantID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM booking WHERE route_variant_id=? AND travel_date>=CURDATE()`,
		variantID).Scan(&n)
	return n, err
}

func (r BookingRepository) FutureCountByBus(ctx context.Context, q db.Querier, busID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM booking WHERE bus_id=? AND travel_date>=CURDATE()`,
		busID).Scan(&n)
	return n, err
}

const historyQuery = `
	SELECT
		b.booking_id,
		b.bus_id,
		bs.bus_name,
		c.name AS citizen_name,
		src.stop_name AS source_stop,
		dst.stop_name AS destination_stop,
		b.seat_number,
		b.travel_date,
		COALESCE(p.amount, b.fare),
		COALESCE(p.payment_mode, b.payment_method),
		COALESCE(p.status, '')
	FROM booking b
	JOIN citizen c ON b.citizen_id = c.citizen_id
	JOIN bus bs ON bs.bus_id = b.bus_id
	JOIN bus_stops src ON src.stop_id = b.src_stop_id
	JOIN bus_stops dst ON dst.stop_id = b.dst_stop_id
	LEFT JOIN payment p ON p.booking_id = b.booking_id`

func (r BookingRepository) PastByCitizen(ctx context.Context, citizenID int64) ([]models.BookingRecord, error) {
	return r.history(ctx, historyQuery+`
	WHERE b.travel_date < CURDATE() AND b.citizen_id = ?
	ORDER BY b.travel_date DESC`, citizenID)
}

func (r BookingRepository) UpcomingByCitizen(ctx context.Context, citizenID int64) ([]models.BookingRecord, error) {
	return r.history(ctx, historyQuery+`
	WHERE b.travel_date >= CURDATE() AND b.citizen_id = ?
	ORDER BY b.travel_date ASC`, citizenID)
}

func (r BookingRepository) history(ctx context.Context, query string, citizenID int64) ([]models.BookingRecord, error) {
	rows, err := r.DB.QueryContext(ctx, query, citizenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.BookingRecord{}
	for rows.Next() {
		var rec models.BookingRecord
		if err := rows.Scan(&rec.BookingID, &rec.BusID, &rec.BusName, &rec.CitizenName,
			&rec.SourceStop, &rec.DestStop, &rec.SeatNumber, &rec.TravelDate,
			&rec.Amount, &rec.PaymentMethod, &rec.PaymentStatus); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// TicketInfo is everything the e-ticket PDF needs for one booking.
type TicketInfo struct {
	BookingID     int64
	CitizenID     int64
	CitizenName   string
	BusName       string
	SourceStop    string
	DestStop      string
	SeatNumber    int
	TravelDate    string
	Fare          int64
	PaymentMethod string
}

func (r BookingRepository) Ticket(ctx context.Context, bookingID int64) (TicketInfo, error) {
	var t TicketInfo
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			b.booking_id, b.citizen_id, c.name, bs.bus_name,
			src.stop_name, dst.stop_name,
			b.seat_number, b.travel_date, b.fare, b.payment_method
		FROM booking b
		JOIN citizen c ON b.citizen_id = c.citizen_id
		JOIN bus bs ON bs.bus_id = b.bus_id
		JOIN bus_stops src ON src.stop_id = b.src_stop_id
		JOIN bus_stops dst ON dst.stop_id = b.dst_stop_id
		WHERE b.booking_id = ?`, bookingID).
		Scan(&t.BookingID, &t.CitizenID, &t.CitizenName, &t.BusName,
			&t.SourceStop, &t.DestStop, &t.SeatNumber, &t.TravelDate, &t.Fare, &t.PaymentMethod)
	if errors.Is(err, sql.ErrNoRows) {
		return TicketInfo{}, domain.NotFoundError{Resource: "booking"}
	}
	if err != nil {
		return TicketInfo{}, err
	}
	return t, nil
}

// PayHistory returns payments within the window plus the total earning,
// for the admin rollup. Covers both booking and application payments.
func (r BookingRepository) PayHistory(ctx context.Context, days int) ([]models.PaymentRecord, int64, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT amount, payment_mode, payment_date, status
		FROM payment
		WHERE payment_date >= DATE_SUB(CURDATE(), INTERVAL ? DAY)
		ORDER BY payment_date DESC`, days)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.PaymentRecord{}
	for rows.Next() {
		var p models.PaymentRecord
		if err := rows.Scan(&p.Amount, &p.PaymentMethod, &p.PaymentDate, &p.Status); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total sql.NullInt64
	err = r.DB.QueryRowContext(ctx, `
		SELECT SUM(amount) FROM payment
		WHERE payment_date >= DATE_SUB(CURDATE(), INTERVAL ? DAY)`, days).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return out, total.Int64, nil
}
