package api

import (
	"errors"
	"net/http"
	"time"

	"ms-checkin/internal/capacity"
	"ms-checkin/internal/models"
	"ms-checkin/internal/utils"
)

// PostRegistration reserves a seat for a participant in a session.
func (h *Handler) PostRegistration(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	outcome, err := h.Capacity.Reserve(r.Context(), req.SessionID, req.ParticipantID)
	if err != nil {
		if ce, ok := capacity.AsCapacityError(err); ok {
			h.writeJSON(w, http.StatusConflict, utils.APIResponse{
				Success:   false,
				Message:   "Session pleine",
				Error:     "Session pleine",
				Data:      models.CapacityInfo{Current: ce.Current, Max: ce.Max},
				Timestamp: time.Now(),
			})
			return
		}
		if errors.Is(err, capacity.ErrSessionNotFound) {
			h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Session not found", err.Error()))
			return
		}
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to reserve seat", err.Error()))
		return
	}

	if outcome == capacity.OutcomeAlreadyRegistered {
		h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Participant already registered", map[string]string{
			"status": string(outcome),
		}))
		return
	}

	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("Seat reserved", map[string]string{
		"status": string(outcome),
	}))
}

// DeleteRegistration releases a seat. Releasing a reservation that does not
// exist still returns 204.
func (h *Handler) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Capacity.Release(r.Context(), req.SessionID, req.ParticipantID); err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to release seat", err.Error()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSessionCapacity reports current/max counts for one session.
func (h *Handler) GetSessionCapacity(w http.ResponseWriter, r *http.Request) {
	sessionID := urlParam(r, "sessionId")

	info, err := h.Capacity.SessionCapacity(r.Context(), sessionID)
	if errors.Is(err, capacity.ErrSessionNotFound) {
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Session not found", err.Error()))
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load capacity", err.Error()))
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Capacity loaded", info))
}
