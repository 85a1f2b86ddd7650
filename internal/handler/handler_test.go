package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/hikelog/internal/handler"
	"github.com/sakif/hikelog/internal/model"
	sqliteRepo "github.com/sakif/hikelog/internal/repository/sqlite"
	"github.com/sakif/hikelog/internal/service"
)

// newTestRouter mounts both handlers on a chi router backed by an in-memory
// database, the same shape server.New builds minus middleware and auth.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqliteRepo.New(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hikes := handler.NewHikeHandler(service.NewHikeService(db, logger), logger)
	observations := handler.NewObservationHandler(service.NewObservationService(db, db, logger), logger)

	r := chi.NewRouter()
	r.Get("/api/hikes", hikes.HandleList)
	r.Post("/api/hikes", hikes.HandleCreate)
	r.Delete("/api/hikes", hikes.HandleReset)
	r.Get("/api/hikes/{id}", hikes.HandleGet)
	r.Put("/api/hikes/{id}", hikes.HandleUpdate)
	r.Delete("/api/hikes/{id}", hikes.HandleDelete)
	r.Get("/api/hikes/{id}/observations", observations.HandleList)
	r.Post("/api/hikes/{id}/observations", observations.HandleCreate)
	r.Get("/api/observations/{id}", observations.HandleGet)
	r.Put("/api/observations/{id}", observations.HandleUpdate)
	r.Delete("/api/observations/{id}", observations.HandleDelete)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

const ridgeWalkJSON = `{
	"name": "Ridge Walk", "location": "Hill Park", "date": "03/10/2025",
	"difficulty": "Moderate", "distance": 8.5, "duration": 3, "elevation": 400,
	"parking": true, "groupSize": 4, "terrain": "rocky"
}`

func createHike(t *testing.T, h http.Handler, body string) model.Hike {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/hikes", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[model.Hike](t, rr)
}

func hikeJSON(name, location, date string, distance float64) string {
	b, _ := json.Marshal(map[string]any{
		"name": name, "location": location, "date": date,
		"distance": distance, "duration": 1, "elevation": 0, "groupSize": 1,
	})
	return string(b)
}

// =========================================================================
// HIKES
// =========================================================================

func TestHikeHandler_CreateAndGet(t *testing.T) {
	h := newTestRouter(t)

	created := createHike(t, h, ridgeWalkJSON)
	assert.Positive(t, created.ID)
	assert.Equal(t, model.DifficultyModerate, created.Difficulty)
	assert.Equal(t, 8.5, created.DistanceKm)

	rr := do(t, h, http.MethodGet, "/api/hikes/"+itoa(created.ID), "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created, decode[model.Hike](t, rr))
}

func TestHikeHandler_NumbersAsStrings(t *testing.T) {
	h := newTestRouter(t)

	created := createHike(t, h, `{"name":"a","location":"b","date":"c","distance":"2.5","duration":"1","elevation":"10","groupSize":"2"}`)
	assert.Equal(t, 2.5, created.DistanceKm)
	assert.Equal(t, model.DifficultyEasy, created.Difficulty)
}

func TestHikeHandler_CreateErrors(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name     string
		body     string
		wantKind string
	}{
		{"malformed JSON", `{"name":`, "validation_error"},
		{"missing name", `{"location":"b","date":"c","distance":1,"duration":1,"elevation":1,"groupSize":1}`, "validation_error"},
		{"negative distance", `{"name":"a","location":"b","date":"c","distance":-1,"duration":1,"elevation":1,"groupSize":1}`, "validation_error"},
		{"bad difficulty", `{"name":"a","location":"b","date":"c","difficulty":"Lethal","distance":1,"duration":1,"elevation":1,"groupSize":1}`, "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/api/hikes", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.wantKind, decode[handler.ErrorResponse](t, rr).Error)
		})
	}
}

func TestHikeHandler_GetErrors(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/api/hikes/999", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	body := decode[handler.ErrorResponse](t, rr)
	assert.Equal(t, "not_found", body.Error)
	assert.Equal(t, "hike not found with id 999", body.Message)

	rr = do(t, h, http.MethodGet, "/api/hikes/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHikeHandler_List(t *testing.T) {
	h := newTestRouter(t)
	createHike(t, h, hikeJSON("Coastal Path", "Cove", "05/05/2025", 12))
	createHike(t, h, hikeJSON("Ridge Walk", "Hill Park", "03/10/2025", 8.5))
	createHike(t, h, hikeJSON("Lake Loop", "Lakeside Park", "04/01/2025", 5))

	names := func(rr *httptest.ResponseRecorder) []string {
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var out []string
		for _, hk := range decode[[]model.Hike](t, rr) {
			out = append(out, hk.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Ridge Walk", "Lake Loop", "Coastal Path"},
		names(do(t, h, http.MethodGet, "/api/hikes", "")))
	assert.Equal(t, []string{"Lake Loop"},
		names(do(t, h, http.MethodGet, "/api/hikes?name=LOOP", "")))
	assert.Equal(t, []string{"Ridge Walk", "Lake Loop"},
		names(do(t, h, http.MethodGet, "/api/hikes?location=park", "")))
	assert.Equal(t, []string{"Ridge Walk", "Lake Loop"},
		names(do(t, h, http.MethodGet, "/api/hikes?maxDistance=10", "")))
	// Unparseable threshold disables the distance axis.
	assert.Equal(t, []string{"Ridge Walk", "Lake Loop", "Coastal Path"},
		names(do(t, h, http.MethodGet, "/api/hikes?maxDistance=abc", "")))
	assert.Equal(t, []string{"Coastal Path"},
		names(do(t, h, http.MethodGet, "/api/hikes?date=05/05/2025", "")))
}

func TestHikeHandler_ListEmptyIsArray(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/api/hikes?name=nothing", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestHikeHandler_ListRejectsMixedFilters(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/api/hikes?name=a&date=01/01/2025", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHikeHandler_Update(t *testing.T) {
	h := newTestRouter(t)
	created := createHike(t, h, ridgeWalkJSON)

	rr := do(t, h, http.MethodPut, "/api/hikes/"+itoa(created.ID), hikeJSON("Renamed", "Hill Park", "03/10/2025", 9))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[model.Hike](t, rr)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Renamed", updated.Name)

	rr = do(t, h, http.MethodPut, "/api/hikes/4040", hikeJSON("x", "y", "z", 1))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHikeHandler_DeleteCascades(t *testing.T) {
	h := newTestRouter(t)
	created := createHike(t, h, ridgeWalkJSON)
	path := "/api/hikes/" + itoa(created.ID)

	rr := do(t, h, http.MethodPost, path+"/observations", `{"title":"deer","time":"2025-03-10 09:00"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	obs := decode[model.Observation](t, rr)

	rr = do(t, h, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/observations/"+itoa(obs.ID), "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, path, "").Code)
}

func TestHikeHandler_Reset(t *testing.T) {
	h := newTestRouter(t)
	createHike(t, h, ridgeWalkJSON)
	createHike(t, h, ridgeWalkJSON)

	rr := do(t, h, http.MethodDelete, "/api/hikes", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deleted":2}`, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/api/hikes", "")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

// =========================================================================
// OBSERVATIONS
// =========================================================================

func TestObservationHandler_Lifecycle(t *testing.T) {
	h := newTestRouter(t)
	hike := createHike(t, h, ridgeWalkJSON)
	listPath := "/api/hikes/" + itoa(hike.ID) + "/observations"

	for _, body := range []string{
		`{"title":"lunch","time":"2025-03-10 12:30"}`,
		`{"title":"start","time":"2025-03-10 08:05","comment":"cold"}`,
	} {
		rr := do(t, h, http.MethodPost, listPath, body)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr := do(t, h, http.MethodGet, listPath, "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]model.Observation](t, rr)
	require.Len(t, list, 2)
	assert.Equal(t, "start", list[0].Title)
	assert.Equal(t, "cold", list[0].Comment)
	assert.Equal(t, hike.ID, list[0].HikeID)

	obsPath := "/api/observations/" + itoa(list[1].ID)
	rr = do(t, h, http.MethodPut, obsPath, `{"title":"late lunch","time":"2025-03-10 13:00"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "late lunch", decode[model.Observation](t, rr).Title)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, obsPath, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, obsPath, "").Code)
}

func TestObservationHandler_MissingHike(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodPost, "/api/hikes/77/observations", `{"title":"orphan","time":"2025-01-01 00:00"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "integrity_violation", decode[handler.ErrorResponse](t, rr).Error)

	rr = do(t, h, http.MethodGet, "/api/hikes/77/observations", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestObservationHandler_Validation(t *testing.T) {
	h := newTestRouter(t)
	hike := createHike(t, h, ridgeWalkJSON)

	rr := do(t, h, http.MethodPost, "/api/hikes/"+itoa(hike.ID)+"/observations", `{"time":"2025-01-01 00:00"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.True(t, strings.Contains(decode[handler.ErrorResponse](t, rr).Message, "title"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
