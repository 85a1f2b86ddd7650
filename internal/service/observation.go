package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/hikelog/internal/apperror"
	"github.com/sakif/hikelog/internal/model"
	"github.com/sakif/hikelog/internal/repository"
)

// ObservationService handles business logic for observations.
//
// It needs the hike repository too: listing the observations of a hike that
// does not exist is reported as NotFound rather than as an empty list.
type ObservationService struct {
	repo   repository.ObservationRepository
	hikes  repository.HikeRepository
	logger *slog.Logger
}

// NewObservationService creates an ObservationService.
func NewObservationService(repo repository.ObservationRepository, hikes repository.HikeRepository, logger *slog.Logger) *ObservationService {
	return &ObservationService{
		repo:   repo,
		hikes:  hikes,
		logger: logger,
	}
}

// Create validates the form and attaches a new observation to hikeID.
// A missing hike fails with apperror.ErrIntegrity.
func (s *ObservationService) Create(ctx context.Context, hikeID int64, in ObservationInput) (*model.Observation, error) {
	if hikeID <= 0 {
		return nil, apperror.ValidationFailed("hikeId", "hike ID must be positive")
	}

	obs, err := in.Validate()
	if err != nil {
		return nil, err
	}
	obs.HikeID = hikeID

	if err := s.repo.CreateObservation(ctx, obs); err != nil {
		if errors.Is(err, apperror.ErrIntegrity) {
			s.logger.Warn("observation rejected: hike does not exist", slog.Int64("hikeId", hikeID))
			return nil, err
		}
		s.logger.Error("failed to create observation",
			slog.Int64("hikeId", hikeID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating observation: %w", err)
	}

	s.logger.Info("observation created",
		slog.Int64("id", obs.ID),
		slog.Int64("hikeId", obs.HikeID),
		slog.String("title", obs.Title),
	)
	return obs, nil
}

// Get retrieves an observation by ID.
func (s *ObservationService) Get(ctx context.Context, id int64) (*model.Observation, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "observation ID must be positive")
	}
	return s.repo.GetObservation(ctx, id)
}

// List returns the observations of hikeID ordered by time.
func (s *ObservationService) List(ctx context.Context, hikeID int64) ([]model.Observation, error) {
	if hikeID <= 0 {
		return nil, apperror.ValidationFailed("hikeId", "hike ID must be positive")
	}
	if _, err := s.hikes.GetHike(ctx, hikeID); err != nil {
		return nil, err
	}

	observations, err := s.repo.ListObservations(ctx, hikeID)
	if err != nil {
		s.logger.Error("failed to list observations",
			slog.Int64("hikeId", hikeID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing observations: %w", err)
	}
	return observations, nil
}

// Update rewrites title, time and comment of observation id. The owning hike
// is kept; the returned observation reflects the stored row.
func (s *ObservationService) Update(ctx context.Context, id int64, in ObservationInput) (*model.Observation, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "observation ID must be positive")
	}

	obs, err := in.Validate()
	if err != nil {
		return nil, err
	}
	obs.ID = id

	if err := s.repo.UpdateObservation(ctx, obs); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update observation",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating observation: %w", err)
	}

	updated, err := s.repo.GetObservation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reloading observation: %w", err)
	}

	s.logger.Info("observation updated", slog.Int64("id", id))
	return updated, nil
}

// Delete removes a single observation.
func (s *ObservationService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed("id", "observation ID must be positive")
	}

	if err := s.repo.DeleteObservation(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete observation",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting observation: %w", err)
	}

	s.logger.Info("observation deleted", slog.Int64("id", id))
	return nil
}
