// Package handler exposes the hike log services as a JSON HTTP API.
//
// Handlers only translate: decode the request, call one service method,
// encode the result or hand the error to WriteError. Validation and logging
// of business events live in the service layer.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/hikelog/internal/apperror"
	"github.com/sakif/hikelog/internal/filter"
	"github.com/sakif/hikelog/internal/service"
)

// HikeHandler serves /api/hikes.
type HikeHandler struct {
	service *service.HikeService
	logger  *slog.Logger
}

// NewHikeHandler creates a HikeHandler.
func NewHikeHandler(svc *service.HikeService, logger *slog.Logger) *HikeHandler {
	return &HikeHandler{service: svc, logger: logger}
}

// hikeRequest is the JSON body of POST and PUT.
//
// json.Number accepts both 8.5 and "8.5" and keeps the literal text, which
// is what service.HikeInput expects. A missing number decodes to "" and is
// reported by validation as required.
type hikeRequest struct {
	Name        string      `json:"name"`
	Location    string      `json:"location"`
	Date        string      `json:"date"`
	Difficulty  string      `json:"difficulty"`
	Distance    json.Number `json:"distance"`
	Duration    json.Number `json:"duration"`
	Elevation   json.Number `json:"elevation"`
	Parking     bool        `json:"parking"`
	GroupSize   json.Number `json:"groupSize"`
	Terrain     string      `json:"terrain"`
	Description string      `json:"description"`
}

func (req hikeRequest) input() service.HikeInput {
	return service.HikeInput{
		Name:        req.Name,
		Location:    req.Location,
		Date:        req.Date,
		Difficulty:  req.Difficulty,
		Distance:    req.Distance.String(),
		Duration:    req.Duration.String(),
		Elevation:   req.Elevation.String(),
		Parking:     req.Parking,
		GroupSize:   req.GroupSize.String(),
		Terrain:     req.Terrain,
		Description: req.Description,
	}
}

// HandleList returns hikes ordered by date.
//
// HTTP: GET /api/hikes
//
//	?name=ridge                              name filter
//	?location=park&maxDistance=10&date=...   advanced filter
//
// The two filter kinds are independent; combining them is rejected rather
// than guessing which one wins.
func (h *HikeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := filter.Criteria{
		Location:    q.Get("location"),
		MaxDistance: q.Get("maxDistance"),
		Date:        q.Get("date"),
	}

	var (
		hikes any
		err   error
	)
	switch {
	case q.Has("name") && !criteria.IsZero():
		err = apperror.ValidationFailed("name", "use either name or location/maxDistance/date, not both")
	case q.Has("name"):
		hikes, err = h.service.Search(r.Context(), q.Get("name"))
	case !criteria.IsZero():
		hikes, err = h.service.AdvancedSearch(r.Context(), criteria)
	default:
		hikes, err = h.service.List(r.Context())
	}
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hikes)
}

// HandleCreate adds a hike. HTTP: POST /api/hikes → 201.
func (h *HikeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req hikeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	hike, err := h.service.Create(r.Context(), req.input())
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, hike)
}

// HandleGet returns one hike. HTTP: GET /api/hikes/{id}.
func (h *HikeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	hike, err := h.service.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hike)
}

// HandleUpdate replaces a hike. HTTP: PUT /api/hikes/{id}.
func (h *HikeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	var req hikeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	hike, err := h.service.Update(r.Context(), id, req.input())
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hike)
}

// HandleDelete removes a hike and its observations.
// HTTP: DELETE /api/hikes/{id} → 204.
func (h *HikeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReset deletes every hike and observation.
// HTTP: DELETE /api/hikes → {"deleted": n}.
func (h *HikeHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Reset(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
