package api

import (
	"errors"
	"fmt"
	"net/http"

	"ms-checkin/internal/access"
	"ms-checkin/internal/checkin"
	"ms-checkin/internal/models"
	"ms-checkin/internal/utils"
)

// PostEventAccess unlocks a scanner with a 4-digit event code.
func (h *Handler) PostEventAccess(w http.ResponseWriter, r *http.Request) {
	var req models.EventAccessRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	data, err := h.Access.ValidateEventCode(r.Context(), req.EventCode)
	switch {
	case errors.Is(err, access.ErrEventCodeInvalid):
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid event code", err.Error()))
		return
	case errors.Is(err, access.ErrEventNotFound):
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("No event matches this code", err.Error()))
		return
	case err != nil:
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to validate event code", err.Error()))
		return
	}

	h.Logger.Info("ACCESS", fmt.Sprintf("scanner unlocked for event %s", data.Event.ID))
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Event code accepted", data))
}

// GetRoster returns the registered participants of a session (search tab).
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("session_id is required", ""))
		return
	}

	roster, err := h.Checkin.Roster(r.Context(), sessionID)
	if errors.Is(err, checkin.ErrSessionNotFound) {
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Session not found", err.Error()))
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load roster", err.Error()))
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Roster loaded", roster))
}

// PostCheckin records one scan or manual check-in attempt.
func (h *Handler) PostCheckin(w http.ResponseWriter, r *http.Request) {
	var req models.CheckinRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.QRToken == "" && req.ParticipantID == "" {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Either qr_token or participant_id is required", ""))
		return
	}

	resp, err := h.Checkin.CheckIn(r.Context(), req)
	if err != nil {
		status, message := checkinErrorStatus(err)
		h.writeJSON(w, status, utils.ErrorResponse(message, err.Error()))
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse(resp.Message, resp))
}

// checkinErrorStatus maps the check-in failure taxonomy onto HTTP statuses.
// Duplicates never reach here; they are a success status.
func checkinErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, checkin.ErrSessionNotFound):
		return http.StatusNotFound, "Session not found"
	case errors.Is(err, checkin.ErrParticipantNotFound):
		return http.StatusNotFound, "Participant not found"
	case errors.Is(err, checkin.ErrTokenInvalid):
		return http.StatusBadRequest, "Badge could not be recognized"
	case errors.Is(err, checkin.ErrEventMismatch):
		return http.StatusConflict, "Badge belongs to a different event"
	case errors.Is(err, checkin.ErrNotRegistered):
		return http.StatusConflict, "Participant is not registered for this session"
	}
	return http.StatusInternalServerError, "Check-in failed"
}
