package api

import (
	"errors"
	"net/http"
	"time"

	"ms-checkin/internal/capacity"
	"ms-checkin/internal/models"
	"ms-checkin/internal/ticketing"
	"ms-checkin/internal/utils"
)

// PostTicketType creates a sellable ticket category.
func (h *Handler) PostTicketType(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTicketTypeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ticketType, err := h.Ticketing.CreateTicketType(r.Context(), req)
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to create ticket type", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("Ticket type created", ticketType))
}

// GetEventTicketTypes lists an event's ticket types. ?all=true includes the
// hidden ones.
func (h *Handler) GetEventTicketTypes(w http.ResponseWriter, r *http.Request) {
	visibleOnly := r.URL.Query().Get("all") != "true"
	list, err := h.Ticketing.ListTicketTypes(r.Context(), urlParam(r, "eventId"), visibleOnly)
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load ticket types", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Ticket types loaded", list))
}

// GetTicketType returns one ticket type with its remaining quota.
func (h *Handler) GetTicketType(w http.ResponseWriter, r *http.Request) {
	ticketType, err := h.Ticketing.GetTicketType(r.Context(), urlParam(r, "ticketTypeId"))
	if errors.Is(err, capacity.ErrTicketTypeNotFound) {
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Ticket type not found", err.Error()))
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load ticket type", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Ticket type loaded", ticketType))
}

// PostReserveTickets claims quota units against a ticket type.
func (h *Handler) PostReserveTickets(w http.ResponseWriter, r *http.Request) {
	var req models.ReserveTicketsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ticketType, err := h.Ticketing.Reserve(r.Context(), urlParam(r, "ticketTypeId"), req.Quantity)
	if err != nil {
		if ce, ok := capacity.AsCapacityError(err); ok {
			h.writeJSON(w, http.StatusConflict, utils.APIResponse{
				Success:   false,
				Message:   "Quota exceeded",
				Error:     "Quota exceeded",
				Data:      models.CapacityInfo{Current: ce.Current, Max: ce.Max},
				Timestamp: time.Now(),
			})
			return
		}
		status, message := ticketingErrorStatus(err)
		h.writeJSON(w, status, utils.ErrorResponse(message, err.Error()))
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Tickets reserved", ticketType))
}

// PostReleaseTickets returns previously reserved quota units.
func (h *Handler) PostReleaseTickets(w http.ResponseWriter, r *http.Request) {
	var req models.ReserveTicketsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Ticketing.Release(r.Context(), urlParam(r, "ticketTypeId"), req.Quantity); err != nil {
		status, message := ticketingErrorStatus(err)
		h.writeJSON(w, status, utils.ErrorResponse(message, err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Tickets released", nil))
}

// PostPromoValidate checks a promo code against an order without consuming it.
func (h *Handler) PostPromoValidate(w http.ResponseWriter, r *http.Request) {
	var req models.PromoValidateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.Promo.Validate(r.Context(), req)
	if errors.Is(err, ticketing.ErrPromoNotFound) {
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Promo code not found", err.Error()))
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to validate promo code", err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Promo code evaluated", result))
}

// PostPromoRedeem consumes one use of a promo code.
func (h *Handler) PostPromoRedeem(w http.ResponseWriter, r *http.Request) {
	var req models.PromoRedeemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Promo.Redeem(r.Context(), req); err != nil {
		status, message := ticketingErrorStatus(err)
		h.writeJSON(w, status, utils.ErrorResponse(message, err.Error()))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Promo code redeemed", nil))
}

func ticketingErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, capacity.ErrTicketTypeNotFound):
		return http.StatusNotFound, "Ticket type not found"
	case errors.Is(err, ticketing.ErrNotOnSale):
		return http.StatusConflict, "Ticket type is not on sale"
	case errors.Is(err, ticketing.ErrQuantityOutOfRange):
		return http.StatusBadRequest, "Quantity outside allowed range"
	case errors.Is(err, ticketing.ErrPromoNotFound):
		return http.StatusNotFound, "Promo code not found"
	case errors.Is(err, ticketing.ErrPromoExhausted):
		return http.StatusConflict, "Promo code can no longer be redeemed"
	case errors.Is(err, ticketing.ErrPromoCustomerLimit):
		return http.StatusConflict, "Promo usage limit reached for this customer"
	}
	return http.StatusInternalServerError, "Ticketing operation failed"
}
