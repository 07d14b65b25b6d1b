package api

import (
	"database/sql"
	"errors"
	"net/http"

	"ms-checkin/internal/utils"
)

// GetEventStats returns registered/checked-in totals for an event.
func (h *Handler) GetEventStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.EventStats(r.Context(), urlParam(r, "eventId"))
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load event stats", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Event stats loaded", stats))
}

// GetSessionStats returns the attendance numbers for one session.
func (h *Handler) GetSessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.SessionStats(r.Context(), urlParam(r, "sessionId"))
	if errors.Is(err, sql.ErrNoRows) {
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Session not found", err.Error()))
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load session stats", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Session stats loaded", stats))
}

// GetCheckinTimeline buckets an event's check-ins by hour.
func (h *Handler) GetCheckinTimeline(w http.ResponseWriter, r *http.Request) {
	timeline, err := h.Stats.CheckinTimeline(r.Context(), urlParam(r, "eventId"))
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load timeline", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Timeline loaded", timeline))
}
