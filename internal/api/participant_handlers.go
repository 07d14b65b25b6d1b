package api

import (
	"errors"
	"net/http"

	"ms-checkin/internal/models"
	"ms-checkin/internal/participants"
	"ms-checkin/internal/utils"
)

// PostParticipant registers a participant for an event. Registering the same
// email twice returns the existing participant with a 200.
func (h *Handler) PostParticipant(w http.ResponseWriter, r *http.Request) {
	var req models.CreateParticipantRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	participant, created, err := h.Participants.Register(r.Context(), req)
	if errors.Is(err, participants.ErrEventNotFound) {
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", err.Error()))
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to register participant", err.Error()))
		return
	}

	if !created {
		h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Participant already registered", participant))
		return
	}
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("Participant registered", participant))
}

// GetParticipant returns a single participant by ID.
func (h *Handler) GetParticipant(w http.ResponseWriter, r *http.Request) {
	participant, err := h.Participants.Get(r.Context(), urlParam(r, "participantId"))
	if errors.Is(err, participants.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Participant not found", err.Error()))
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load participant", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Participant loaded", participant))
}

// GetEventParticipants lists all participants of an event.
func (h *Handler) GetEventParticipants(w http.ResponseWriter, r *http.Request) {
	list, err := h.Participants.ListByEvent(r.Context(), urlParam(r, "eventId"))
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load participants", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Participants loaded", list))
}

// GetParticipantBadge renders the participant's badge QR code as a PNG.
// ?encrypted=true swaps the plain URL payload for the encrypted one.
func (h *Handler) GetParticipantBadge(w http.ResponseWriter, r *http.Request) {
	participantID := urlParam(r, "participantId")

	var png []byte
	var err error
	if r.URL.Query().Get("encrypted") == "true" {
		png, err = h.Participants.EncryptedBadgePNG(r.Context(), participantID)
	} else {
		png, err = h.Participants.BadgePNG(r.Context(), participantID)
	}

	if errors.Is(err, participants.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Participant not found", err.Error()))
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to render badge", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil && h.Logger != nil {
		h.Logger.Error("API", "failed to write badge PNG: "+err.Error())
	}
}
