package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/hikelog/internal/service"
)

// ObservationHandler serves /api/hikes/{id}/observations and
// /api/observations/{id}.
type ObservationHandler struct {
	service *service.ObservationService
	logger  *slog.Logger
}

// NewObservationHandler creates an ObservationHandler.
func NewObservationHandler(svc *service.ObservationService, logger *slog.Logger) *ObservationHandler {
	return &ObservationHandler{service: svc, logger: logger}
}

// HandleList returns the observations of one hike ordered by time.
// HTTP: GET /api/hikes/{id}/observations.
func (h *ObservationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	hikeID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	observations, err := h.service.List(r.Context(), hikeID)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, observations)
}

// HandleCreate attaches an observation to a hike.
// HTTP: POST /api/hikes/{id}/observations → 201, or 409 if the hike is gone.
func (h *ObservationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	hikeID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	var in service.ObservationInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, err)
		return
	}

	obs, err := h.service.Create(r.Context(), hikeID, in)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, obs)
}

// HandleGet returns one observation. HTTP: GET /api/observations/{id}.
func (h *ObservationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	obs, err := h.service.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

// HandleUpdate rewrites title, time and comment.
// HTTP: PUT /api/observations/{id}.
func (h *ObservationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	var in service.ObservationInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, err)
		return
	}

	obs, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

// HandleDelete removes one observation. HTTP: DELETE /api/observations/{id} → 204.
func (h *ObservationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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
