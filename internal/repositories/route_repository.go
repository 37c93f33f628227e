package repositories

import (
	"context"
	"database/sql"
	"errors"

	"sevaportal/internal/db"
	"sevaportal/internal/domain/models"
	"sevaportal/internal/fare"
)

// RouteRepository covers routes, route variants and their ordered stop
// sequences (routestops rows).
type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) List(ctx context.Context) ([]models.Route, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT route_id, route_name FROM routes ORDER BY route_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		var rt models.Route
		if err := rows.Scan(&rt.ID, &rt.Name); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r RouteRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM routes WHERE route_id=? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r RouteRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM routes WHERE route_name=? LIMIT 1`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r RouteRepository) Insert(ctx context.Context, name string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO routes (route_name) VALUES (?)`, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r RouteRepository) HasVariants(ctx context.Context, routeID int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM routevariants WHERE route_id=? LIMIT 1`, routeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r RouteRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM routes WHERE route_id=?`, id)
	return err
}

func (r RouteRepository) VariantsByRoute(ctx context.Context, routeID int64) ([]models.RouteVariant, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT route_variant_id, route_id, variant_name
		FROM routevariants
		WHERE route_id=?
		ORDER BY route_variant_id`, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.RouteVariant{}
	for rows.Next() {
		var v models.RouteVariant
		if err := rows.Scan(&v.ID, &v.RouteID, &v.Name); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r RouteRepository) VariantBelongs(ctx context.Context, variantID, routeID int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM routevariants WHERE route_variant_id=? AND route_id=? LIMIT 1`,
		variantID, routeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// VariantNameExists checks the derived stop-sequence label for uniqueness
// within a route, optionally excluding the variant being edited.
func (r RouteRepository) VariantNameExists(ctx context.Context, routeID int64, name string, excludeID int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM routevariants WHERE route_id=? AND variant_name=? AND route_variant_id<>? LIMIT 1`,
		routeID, name, excludeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r RouteRepository) InsertVariant(ctx context.Context, q db.Querier, routeID int64, name string) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO routevariants (route_id, variant_name) VALUES (?, ?)`, routeID, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r RouteRepository) UpdateVariantName(ctx context.Context, q db.Querier, variantID int64, name string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE routevariants SET variant_name=? WHERE route_variant_id=?`, name, variantID)
	return err
}

func (r RouteRepository) DeleteVariant(ctx context.Context, q db.Querier, variantID int64) error {
	_, err := q.ExecContext(ctx,
		`DELETE FROM routevariants WHERE route_variant_id=?`, variantID)
	return err
}

func (r RouteRepository) InsertVariantStop(ctx context.Context, q db.Querier, routeID, variantID, stopID int64, order int) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO routestops (route_id, route_variant_id, stop_id, stop_order) VALUES (?, ?, ?, ?)`,
		routeID, variantID, stopID, order)
	return err
}

func (r RouteRepository) DeleteVariantStops(ctx context.Context, q db.Querier, variantID int64) error {
	_, err := q.ExecContext(ctx,
		`DELETE FROM routestops WHERE route_variant_id=?`, variantID)
	return err
}

// StopOrders loads the variant's stop_id -> stop_order map for the fare
// calculator and the overlap check.
func (r RouteRepository) StopOrders(ctx context.Context, variantID int64) (fare.StopOrders, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT stop_id, stop_order FROM routestops WHERE route_variant_id=?`, variantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := fare.StopOrders{}
	for rows.Next() {
		var stopID int64
		var order int
		if err := rows.Scan(&stopID, &order); err != nil {
			return nil, err
		}
		orders[stopID] = order
	}
	return orders, rows.Err()
}

// VariantStops returns the ordered stop sequence with names, for readable
// variant listings.
func (r RouteRepository) VariantStops(ctx context.Context, variantID int64) ([]models.VariantStop, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT rs.stop_id, s.stop_name, rs.stop_order
		FROM routestops rs
		JOIN bus_stops s ON s.stop_id = rs.stop_id
		WHERE rs.route_variant_id=?
		ORDER BY rs.stop_order`, variantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.VariantStop{}
	for rows.Next() {
		var vs models.VariantStop
		if err := rows.Scan(&vs.StopID, &vs.StopName, &vs.Order); err != nil {
			return nil, err
		}
		out = append(out, vs)
	}
	return out, rows.Err()
}
