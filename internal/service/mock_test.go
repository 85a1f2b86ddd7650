package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"testing"

	"github.com/sakif/hikelog/internal/apperror"
	"github.com/sakif/hikelog/internal/model"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================
//
// mockStore implements both repository.HikeRepository and
// repository.ObservationRepository in memory, the same pair of interfaces
// *sqlite.DB satisfies. The services never learn which one they got.
//
// failWith, when set, is returned by every method. That lets a test simulate
// the database going away without a real database.

type mockStore struct {
	hikes        map[int64]model.Hike
	observations map[int64]model.Observation
	nextHikeID   int64
	nextObsID    int64
	failWith     error
}

func newMockStore() *mockStore {
	return &mockStore{
		hikes:        make(map[int64]model.Hike),
		observations: make(map[int64]model.Observation),
	}
}

func (m *mockStore) CreateHike(_ context.Context, hike *model.Hike) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.nextHikeID++
	hike.ID = m.nextHikeID
	m.hikes[hike.ID] = *hike
	return nil
}

func (m *mockStore) GetHike(_ context.Context, id int64) (*model.Hike, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	h, ok := m.hikes[id]
	if !ok {
		return nil, apperror.NotFound("hike", id)
	}
	return &h, nil
}

func (m *mockStore) ListHikes(_ context.Context) ([]model.Hike, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]model.Hike, 0, len(m.hikes))
	for _, h := range m.hikes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *mockStore) UpdateHike(_ context.Context, hike *model.Hike) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.hikes[hike.ID]; !ok {
		return apperror.NotFound("hike", hike.ID)
	}
	m.hikes[hike.ID] = *hike
	return nil
}

func (m *mockStore) DeleteHike(_ context.Context, id int64) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.hikes[id]; !ok {
		return apperror.NotFound("hike", id)
	}
	delete(m.hikes, id)
	for oid, o := range m.observations {
		if o.HikeID == id {
			delete(m.observations, oid)
		}
	}
	return nil
}

func (m *mockStore) DeleteAllHikes(_ context.Context) (int64, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	n := int64(len(m.hikes))
	m.hikes = make(map[int64]model.Hike)
	m.observations = make(map[int64]model.Observation)
	return n, nil
}

func (m *mockStore) CreateObservation(_ context.Context, obs *model.Observation) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.hikes[obs.HikeID]; !ok {
		return apperror.IntegrityViolation("hike", obs.HikeID)
	}
	m.nextObsID++
	obs.ID = m.nextObsID
	m.observations[obs.ID] = *obs
	return nil
}

func (m *mockStore) GetObservation(_ context.Context, id int64) (*model.Observation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	o, ok := m.observations[id]
	if !ok {
		return nil, apperror.NotFound("observation", id)
	}
	return &o, nil
}

func (m *mockStore) ListObservations(_ context.Context, hikeID int64) ([]model.Observation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []model.Observation{}
	for _, o := range m.observations {
		if o.HikeID == hikeID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *mockStore) UpdateObservation(_ context.Context, obs *model.Observation) error {
	if m.failWith != nil {
		return m.failWith
	}
	stored, ok := m.observations[obs.ID]
	if !ok {
		return apperror.NotFound("observation", obs.ID)
	}
	stored.Title = obs.Title
	stored.Time = obs.Time
	stored.Comment = obs.Comment
	m.observations[obs.ID] = stored
	return nil
}

func (m *mockStore) DeleteObservation(_ context.Context, id int64) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.observations[id]; !ok {
		return apperror.NotFound("observation", id)
	}
	delete(m.observations, id)
	return nil
}

var errDiskGone = errors.New("disk I/O error")

// =========================================================================
// TEST HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestServices wires both services to one shared mock store.
func newTestServices(t *testing.T) (*HikeService, *ObservationService, *mockStore) {
	t.Helper()
	store := newMockStore()
	logger := testLogger()
	return NewHikeService(store, logger), NewObservationService(store, store, logger), store
}

func validHikeInput() HikeInput {
	return HikeInput{
		Name:       "Ridge Walk",
		Location:   "Hill Park",
		Date:       "03/10/2025",
		Difficulty: "Moderate",
		Distance:   "8.5",
		Duration:   "3",
		Elevation:  "400",
		Parking:    true,
		GroupSize:  "4",
		Terrain:    "rocky",
	}
}
