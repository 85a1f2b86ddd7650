package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/hikelog/internal/apperror"
	"github.com/sakif/hikelog/internal/model"
	"github.com/sakif/hikelog/internal/repository"
)

var _ repository.ObservationRepository = (*DB)(nil)

const observationColumns = `id, hike_id, title, time, comment`

func scanObservation(s scanner) (model.Observation, error) {
	var (
		o       model.Observation
		comment sql.NullString
	)
	if err := s.Scan(&o.ID, &o.HikeID, &o.Title, &o.Time, &comment); err != nil {
		return model.Observation{}, err
	}
	o.Comment = comment.String
	return o, nil
}

// CreateObservation inserts an observation for an existing hike and sets
// obs.ID.
//
// The parent check and the insert share a transaction, so the hike cannot
// disappear between them. A missing hike yields apperror.ErrIntegrity; the
// foreign key constraint is a second line of defence and maps to the same
// error.
func (db *DB) CreateObservation(ctx context.Context, obs *model.Observation) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning observation insert: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM hikes WHERE id = ?)`, obs.HikeID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("sqlite: checking hike %d: %w", obs.HikeID, err)
	}
	if !exists {
		return apperror.IntegrityViolation("hike", obs.HikeID)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO observations (hike_id, title, time, comment) VALUES (?, ?, ?, ?)`,
		obs.HikeID,
		obs.Title,
		obs.Time,
		nullString(obs.Comment),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.IntegrityViolation("hike", obs.HikeID)
		}
		return fmt.Errorf("sqlite: creating observation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new observation id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing observation insert: %w", err)
	}
	obs.ID = id
	return nil
}

// GetObservation retrieves a single observation by id.
func (db *DB) GetObservation(ctx context.Context, id int64) (*model.Observation, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+observationColumns+` FROM observations WHERE id = ?`, id)

	o, err := scanObservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("observation", id)
		}
		return nil, fmt.Errorf("sqlite: getting observation %d: %w", id, err)
	}
	return &o, nil
}

// ListObservations returns the observations of one hike ordered by the
// stored time text, ascending. An unknown hike id simply yields an empty
// slice; the service decides whether that deserves a NotFound.
func (db *DB) ListObservations(ctx context.Context, hikeID int64) ([]model.Observation, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+observationColumns+` FROM observations
		 WHERE hike_id = ?
		 ORDER BY time ASC, id ASC`,
		hikeID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing observations of hike %d: %w", hikeID, err)
	}
	defer rows.Close()

	observations := []model.Observation{}
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning observation row: %w", err)
		}
		observations = append(observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating observations: %w", err)
	}
	return observations, nil
}

// UpdateObservation rewrites title, time and comment. The owning hike is
// fixed at insert time and is not part of the update.
func (db *DB) UpdateObservation(ctx context.Context, obs *model.Observation) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE observations SET title = ?, time = ?, comment = ? WHERE id = ?`,
		obs.Title,
		obs.Time,
		nullString(obs.Comment),
		obs.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating observation %d: %w", obs.ID, err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("observation", obs.ID)
	}
	return nil
}

// DeleteObservation removes one observation.
func (db *DB) DeleteObservation(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM observations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting observation %d: %w", id, err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("observation", id)
	}
	return nil
}
