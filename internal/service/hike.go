// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Adapter (HTTP handler, CLI command) → parses input, renders output
//	Service (this package)              → validates, orchestrates, logs
//	Repository (repository/sqlite)      → reads/writes the database
//
// Services accept the repository INTERFACES, not *sqlite.DB, so tests inject
// in-memory fakes and neither adapter ever imports the SQL layer.
//
// Every mutation is followed by a fresh read on the presentation side; the
// services keep no cached state of their own.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/hikelog/internal/apperror"
	"github.com/sakif/hikelog/internal/filter"
	"github.com/sakif/hikelog/internal/model"
	"github.com/sakif/hikelog/internal/repository"
)

// HikeService handles business logic for hikes.
type HikeService struct {
	repo   repository.HikeRepository
	logger *slog.Logger
}

// NewHikeService creates a HikeService backed by repo.
func NewHikeService(repo repository.HikeRepository, logger *slog.Logger) *HikeService {
	return &HikeService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates the form and inserts a new hike. The returned hike
// carries the generated ID.
func (s *HikeService) Create(ctx context.Context, in HikeInput) (*model.Hike, error) {
	hike, err := in.Validate()
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateHike(ctx, hike); err != nil {
		s.logger.Error("failed to create hike",
			slog.String("name", hike.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating hike: %w", err)
	}

	s.logger.Info("hike created",
		slog.Int64("id", hike.ID),
		slog.String("name", hike.Name),
	)
	return hike, nil
}

// Get retrieves a hike by ID. Returns apperror.ErrNotFound if it doesn't exist.
func (s *HikeService) Get(ctx context.Context, id int64) (*model.Hike, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "hike ID must be positive")
	}
	return s.repo.GetHike(ctx, id)
}

// List returns every hike ordered by date.
func (s *HikeService) List(ctx context.Context) ([]model.Hike, error) {
	hikes, err := s.repo.ListHikes(ctx)
	if err != nil {
		s.logger.Error("failed to list hikes", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing hikes: %w", err)
	}
	return hikes, nil
}

// Update replaces every field of hike id with the validated form.
// The identifier never changes. Unknown ids yield apperror.ErrNotFound.
func (s *HikeService) Update(ctx context.Context, id int64, in HikeInput) (*model.Hike, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "hike ID must be positive")
	}

	hike, err := in.Validate()
	if err != nil {
		return nil, err
	}
	hike.ID = id

	if err := s.repo.UpdateHike(ctx, hike); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update hike",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating hike: %w", err)
	}

	s.logger.Info("hike updated",
		slog.Int64("id", hike.ID),
		slog.String("name", hike.Name),
	)
	return hike, nil
}

// Delete removes a hike and, with it, all of its observations.
func (s *HikeService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed("id", "hike ID must be positive")
	}

	if err := s.repo.DeleteHike(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete hike",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting hike: %w", err)
	}

	s.logger.Info("hike deleted", slog.Int64("id", id))
	return nil
}

// Reset deletes every hike and observation and reports how many hikes
// were removed.
func (s *HikeService) Reset(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAllHikes(ctx)
	if err != nil {
		s.logger.Error("failed to reset database", slog.String("error", err.Error()))
		return 0, fmt.Errorf("resetting database: %w", err)
	}

	s.logger.Warn("database reset", slog.Int64("hikes", n))
	return n, nil
}

// Search lists all hikes and keeps those whose name contains query.
func (s *HikeService) Search(ctx context.Context, query string) ([]model.Hike, error) {
	hikes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.ByName(hikes, query), nil
}

// AdvancedSearch lists all hikes and applies the location / max distance /
// date criteria. See filter.Apply for the matching rules.
func (s *HikeService) AdvancedSearch(ctx context.Context, c filter.Criteria) ([]model.Hike, error) {
	hikes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(hikes, c), nil
}
