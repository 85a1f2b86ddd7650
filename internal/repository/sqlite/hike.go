package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/hikelog/internal/apperror"
	"github.com/sakif/hikelog/internal/model"
	"github.com/sakif/hikelog/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// Assigning a nil *DB to the interface type fails the build if a method is
// missing, instead of failing later where *DB is passed to the service.
var _ repository.HikeRepository = (*DB)(nil)

const hikeColumns = `id, name, location, date, difficulty, distance_km, duration_h,
	elevation_m, parking, group_size, terrain, description`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanHike reads one row selected with hikeColumns.
// Scan must receive pointers in the same order as the SELECT list.
func scanHike(s scanner) (model.Hike, error) {
	var (
		h                    model.Hike
		difficulty           string
		terrain, description sql.NullString
	)
	err := s.Scan(
		&h.ID,
		&h.Name,
		&h.Location,
		&h.Date,
		&difficulty,
		&h.DistanceKm,
		&h.DurationHours,
		&h.ElevationM,
		&h.Parking,
		&h.GroupSize,
		&terrain,
		&description,
	)
	if err != nil {
		return model.Hike{}, err
	}
	h.Difficulty = model.Difficulty(difficulty)
	h.Terrain = terrain.String
	h.Description = description.String
	return h, nil
}

// CreateHike inserts a hike and sets hike.ID to the generated identifier.
//
// The store does no business validation; the service layer has already
// checked required fields and numbers before we get here.
func (db *DB) CreateHike(ctx context.Context, hike *model.Hike) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO hikes (name, location, date, difficulty, distance_km, duration_h,
		                    elevation_m, parking, group_size, terrain, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		hike.Name,
		hike.Location,
		hike.Date,
		string(hike.Difficulty),
		hike.DistanceKm,
		hike.DurationHours,
		hike.ElevationM,
		boolToInt(hike.Parking),
		hike.GroupSize,
		nullString(hike.Terrain),
		nullString(hike.Description),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating hike: %w", err)
	}

	// AUTOINCREMENT ids start at 1 and are never reused, so a valid id is
	// always > 0.
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new hike id: %w", err)
	}
	hike.ID = id
	return nil
}

// GetHike retrieves a single hike. A missing id is reported as
// apperror.ErrNotFound rather than sql.ErrNoRows, so callers never need to
// import database/sql.
func (db *DB) GetHike(ctx context.Context, id int64) (*model.Hike, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+hikeColumns+` FROM hikes WHERE id = ?`, id)

	h, err := scanHike(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("hike", id)
		}
		return nil, fmt.Errorf("sqlite: getting hike %d: %w", id, err)
	}
	return &h, nil
}

// ListHikes returns every hike ordered by the stored date text, ascending.
//
// The ordering is lexicographic on whatever the application wrote into the
// date column; id breaks ties so equal dates keep insertion order.
func (db *DB) ListHikes(ctx context.Context) ([]model.Hike, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+hikeColumns+` FROM hikes ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing hikes: %w", err)
	}
	// CRITICAL: rows holds the pool's only connection until closed.
	defer rows.Close()

	hikes := []model.Hike{}
	for rows.Next() {
		h, err := scanHike(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning hike row: %w", err)
		}
		hikes = append(hikes, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating hikes: %w", err)
	}
	return hikes, nil
}

// UpdateHike overwrites every mutable column of the hike identified by
// hike.ID. The id itself is never written.
//
// Zero affected rows means the id did not exist; that is surfaced as
// apperror.NotFound, which callers treat as recoverable.
func (db *DB) UpdateHike(ctx context.Context, hike *model.Hike) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE hikes
		 SET name = ?, location = ?, date = ?, difficulty = ?, distance_km = ?, duration_h = ?,
		     elevation_m = ?, parking = ?, group_size = ?, terrain = ?, description = ?
		 WHERE id = ?`,
		hike.Name,
		hike.Location,
		hike.Date,
		string(hike.Difficulty),
		hike.DistanceKm,
		hike.DurationHours,
		hike.ElevationM,
		boolToInt(hike.Parking),
		hike.GroupSize,
		nullString(hike.Terrain),
		nullString(hike.Description),
		hike.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating hike %d: %w", hike.ID, err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("hike", hike.ID)
	}
	return nil
}

// DeleteHike removes a hike together with all of its observations.
//
// CASCADE + TRANSACTION:
// The schema declares ON DELETE CASCADE, but that only fires while
// foreign_keys is ON for the connection. Deleting the children explicitly in
// the same transaction makes the cascade independent of that setting, and
// the transaction guarantees either both deletes happen or neither does.
func (db *DB) DeleteHike(ctx context.Context, id int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete of hike %d: %w", id, err)
	}
	// Rollback after a successful Commit is a no-op, so deferring it is safe.
	defer tx.Rollback()

	obsResult, err := tx.ExecContext(ctx, `DELETE FROM observations WHERE hike_id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting observations of hike %d: %w", id, err)
	}
	cascaded, err := rowsAffected(obsResult)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM hikes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting hike %d: %w", id, err)
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("hike", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of hike %d: %w", id, err)
	}

	db.logger.Debug("hike deleted",
		slog.Int64("id", id),
		slog.Int64("observations", cascaded),
	)
	return nil
}

// DeleteAllHikes empties both tables in one transaction and returns how many
// hikes were removed. This backs the "reset database" action.
func (db *DB) DeleteAllHikes(ctx context.Context) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning reset: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM observations`); err != nil {
		return 0, fmt.Errorf("sqlite: clearing observations: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM hikes`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: clearing hikes: %w", err)
	}
	n, err := rowsAffected(result)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing reset: %w", err)
	}
	return n, nil
}
