package repositories

import (
	"context"
	"database/sql"
	"errors"

	"sevaportal/internal/db"
	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
)

type BusRepository struct {
	DB *sql.DB
}

func (r BusRepository) Get(ctx context.Context, id int64) (models.Bus, error) {
	var b models.Bus
	err := r.DB.QueryRowContext(ctx, `
		SELECT bus_id, bus_name, total_seats, route_id, route_variant_id
		FROM bus WHERE bus_id=?`, id).
		Scan(&b.ID, &b.Name, &b.TotalSeats, &b.RouteID, &b.VariantID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bus{}, domain.NotFoundError{Resource: "bus"}
	}
	if err != nil {
		return models.Bus{}, err
	}
	return b, nil
}

func (r BusRepository) List(ctx context.Context) ([]models.BusDetail, error) {
	return r.list(ctx, `
		SELECT b.bus_id, b.bus_name, b.total_seats, b.route_id, b.route_variant_id, r.route_name
		FROM bus b
		JOIN routes r ON b.route_id = r.route_id
		ORDER BY b.bus_id`)
}

func (r BusRepository) ListByRoute(ctx context.Context, routeID int64) ([]models.BusDetail, error) {
	return r.list(ctx, `
		SELECT b.bus_id, b.bus_name, b.total_seats, b.route_id, b.route_variant_id, r.route_name
		FROM bus b
		JOIN routes r ON b.route_id = r.route_id
		WHERE b.route_id=?
		ORDER BY b.bus_id`, routeID)
}

func (r BusRepository) list(ctx context.Context, query string, args ...any) ([]models.BusDetail, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.BusDetail{}
	for rows.Next() {
		var d models.BusDetail
		if err := rows.Scan(&d.ID, &d.Name, &d.TotalSeats, &d.RouteID, &d.VariantID, &d.RouteName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r BusRepository) Insert(ctx context.Context, q db.Querier, b models.Bus) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO bus (bus_name, total_seats, route_id, route_variant_id)
		VALUES (?, ?, ?, ?)`,
		b.Name, b.TotalSeats, b.RouteID, b.VariantID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BusRepository) Delete(ctx context.Context, q db.Querier, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM bus WHERE bus_id=?`, id)
	return err
}

func (r BusRepository) HasSchedule(ctx context.Context, busID int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM busschedule WHERE bus_id=? LIMIT 1`, busID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r BusRepository) Schedule(ctx context.Context, busID int64) ([]models.ScheduleEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT bs.stop_id, s.stop_name, bs.arrival_time, bs.departure_time
		FROM busschedule bs
		JOIN bus_stops s ON bs.stop_id = s.stop_id
		WHERE bs.bus_id = ?
		ORDER BY bs.arrival_time`, busID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ScheduleEntry{}
	for rows.Next() {
		var e models.ScheduleEntry
		if err := rows.Scan(&e.StopID, &e.StopName, &e.ArrivalTime, &e.DepartureTime); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r BusRepository) InsertScheduleEntry(ctx context.Context, q db.Querier, busID, routeID, variantID, stopID int64, arrival, departure string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO busschedule (bus_id, route_id, route_variant_id, stop_id, arrival_time, departure_time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		busID, routeID, variantID, stopID, arrival, departure)
	return err
}

func (r BusRepository) DeleteSchedule(ctx context.Context, q db.Querier, busID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM busschedule WHERE bus_id=?`, busID)
	return err
}

func (r BusRepository) DeleteScheduleByVariant(ctx context.Context, q db.Querier, variantID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM busschedule WHERE route_variant_id=?`, variantID)
	return err
}

// SearchBySegment finds buses whose variant serves src before dst, with
// the segment's boundary times and the readable intermediate stop path,
// ordered by departure time.
func (r BusRepository) SearchBySegment(ctx context.Context, srcID, dstID int64) ([]models.BusOption, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT
			b.bus_id,
			b.bus_name,
			b.total_seats,
			r.route_id,
			r.route_name,
			rv.route_variant_id,
			rv.variant_name,
			MIN(s_src.departure_time) AS src_departure_time,
			MIN(s_dst.arrival_time) AS dst_arrival_time,
			GROUP_CONCAT(bs.stop_name ORDER BY rs.stop_order SEPARATOR ' -> ') AS section_stops
		FROM bus b
		JOIN routevariants rv ON b.route_variant_id = rv.route_variant_id
		JOIN routes r ON rv.route_id = r.route_id
		JOIN routestops src_rs ON rv.route_variant_id = src_rs.route_variant_id AND src_rs.stop_id = ?
		JOIN routestops dst_rs ON rv.route_variant_id = dst_rs.route_variant_id AND dst_rs.stop_id = ?
		JOIN routestops rs ON rv.route_variant_id = rs.route_variant_id
			AND rs.stop_order BETWEEN src_rs.stop_order AND dst_rs.stop_order
		JOIN bus_stops bs ON rs.stop_id = bs.stop_id
		LEFT JOIN busschedule s_src ON b.bus_id = s_src.bus_id AND s_src.stop_id = src_rs.stop_id
		LEFT JOIN busschedule s_dst ON b.bus_id = s_dst.bus_id AND s_dst.stop_id = dst_rs.stop_id
		WHERE src_rs.stop_order < dst_rs.stop_order
		GROUP BY b.bus_id, rv.variant_name
		ORDER BY src_departure_time`,
		srcID, dstID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.BusOption{}
	for rows.Next() {
		var o models.BusOption
		var dep, arr, stops sql.NullString
		if err := rows.Scan(&o.BusID, &o.BusName, &o.TotalSeats, &o.RouteID, &o.RouteName,
			&o.VariantID, &o.VariantName, &dep, &arr, &stops); err != nil {
			return nil, err
		}
		o.SrcDepartureTime = dep.String
		o.DstArrivalTime = arr.String
		o.SectionStops = stops.String
		out = append(out, o)
	}
	return out, rows.Err()
}
