package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"ms-checkin/internal/access"
	"ms-checkin/internal/capacity"
	"ms-checkin/internal/checkin"
	"ms-checkin/internal/logger"
	"ms-checkin/internal/participants"
	"ms-checkin/internal/sse"
	"ms-checkin/internal/stats"
	"ms-checkin/internal/ticketing"
	"ms-checkin/internal/utils"
)

// Handler wires the HTTP surface to the domain services.
type Handler struct {
	Access       *access.Service
	Checkin      *checkin.Service
	Capacity     *capacity.Service
	Participants *participants.Service
	Ticketing    *ticketing.Service
	Promo        *ticketing.PromoService
	Stats        *stats.Service
	Emitter      *sse.CheckinEventEmitter
	Issuer       *access.ScannerTokenIssuer
	Validator    *validator.Validate
	Logger       *logger.Logger
}

func NewHandler(
	accessSvc *access.Service,
	checkinSvc *checkin.Service,
	capacitySvc *capacity.Service,
	participantSvc *participants.Service,
	ticketingSvc *ticketing.Service,
	promoSvc *ticketing.PromoService,
	statsSvc *stats.Service,
	emitter *sse.CheckinEventEmitter,
	issuer *access.ScannerTokenIssuer,
	log *logger.Logger,
) *Handler {
	return &Handler{
		Access:       accessSvc,
		Checkin:      checkinSvc,
		Capacity:     capacitySvc,
		Participants: participantSvc,
		Ticketing:    ticketingSvc,
		Promo:        promoSvc,
		Stats:        statsSvc,
		Emitter:      emitter,
		Issuer:       issuer,
		Validator:    validator.New(),
		Logger:       log,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && h.Logger != nil {
		h.Logger.Error("API", "failed to encode response: "+err.Error())
	}
}

// decodeAndValidate parses the JSON body into dst and runs struct validation.
// On failure it writes the 400 itself and reports false.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return false
	}
	if err := h.Validator.Struct(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return false
	}
	return true
}
