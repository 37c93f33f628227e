package repositories

import (
	"context"
	"database/sql"
	"errors"

	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
)

type StopRepository struct {
	DB *sql.DB
}

func (r StopRepository) List(ctx context.Context) ([]models.Stop, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT stop_id, stop_name FROM bus_stops ORDER BY stop_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Stop{}
	for rows.Next() {
		var s models.Stop
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// IDByName resolves a normalized stop name. Callers must normalize first.
func (r StopRepository) IDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `SELECT stop_id FROM bus_stops WHERE stop_name=?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFoundError{Resource: "stop"}
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r StopRepository) Exists(ctx context.Context, name string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM bus_stops WHERE stop_name=? LIMIT 1`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r StopRepository) ExistsID(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM bus_stops WHERE stop_id=? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r StopRepository) Insert(ctx context.Context, name string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO bus_stops (stop_name) VALUES (?)`, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r StopRepository) Rename(ctx context.Context, id int64, name string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE bus_stops SET stop_name=? WHERE stop_id=?`, name, id)
	return err
}

// Referenced reports whether any route variant lists the stop.
func (r StopRepository) Referenced(ctx context.Context, stopID int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM routestops WHERE stop_id=? LIMIT 1`, stopID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r StopRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM bus_stops WHERE stop_id=?`, id)
	return err
}
