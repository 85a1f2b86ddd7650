// Package repository declares the storage interfaces the service layer
// depends on. The SQLite implementation lives in repository/sqlite; tests
// substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/hikelog/internal/model"
)

// HikeRepository persists hikes.
//
// Update and Delete return apperror.ErrNotFound when no row matched the id.
// DeleteHike also removes every observation owned by the hike, atomically.
type HikeRepository interface {
	CreateHike(ctx context.Context, hike *model.Hike) error
	GetHike(ctx context.Context, id int64) (*model.Hike, error)
	ListHikes(ctx context.Context) ([]model.Hike, error)
	UpdateHike(ctx context.Context, hike *model.Hike) error
	DeleteHike(ctx context.Context, id int64) error
	DeleteAllHikes(ctx context.Context) (int64, error)
}

// ObservationRepository persists observations scoped to a hike.
//
// CreateObservation returns apperror.ErrIntegrity when HikeID does not
// reference an existing hike.
type ObservationRepository interface {
	CreateObservation(ctx context.Context, obs *model.Observation) error
	GetObservation(ctx context.Context, id int64) (*model.Observation, error)
	ListObservations(ctx context.Context, hikeID int64) ([]model.Observation, error)
	UpdateObservation(ctx context.Context, obs *model.Observation) error
	DeleteObservation(ctx context.Context, id int64) error
}
