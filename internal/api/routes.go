package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes assembles the full HTTP surface. Scan-time routes sit behind the
// scanner token; registration and admin routes do not.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.RequestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Scanner unlock (the gate itself, so no token yet).
		r.Post("/event-access", h.PostEventAccess)

		// Scan-time routes, scoped by the unlock token.
		r.Group(func(r chi.Router) {
			r.Use(h.ScannerAuth)
			r.Get("/event-access/roster", h.GetRoster)
			r.Post("/checkin", h.PostCheckin)
		})

		// Registration.
		r.Post("/participants", h.PostParticipant)
		r.Get("/participants/{participantId}", h.GetParticipant)
		r.Get("/participants/{participantId}/badge", h.GetParticipantBadge)
		r.Post("/sessions/participants", h.PostRegistration)
		r.Delete("/sessions/participants", h.DeleteRegistration)
		r.Get("/sessions/{sessionId}/capacity", h.GetSessionCapacity)
		r.Get("/sessions/{sessionId}/stats", h.GetSessionStats)
		r.Get("/sessions/{sessionId}/checkins/stream", h.StreamSessionCheckins)

		// Event views.
		r.Get("/events/{eventId}/participants", h.GetEventParticipants)
		r.Get("/events/{eventId}/stats", h.GetEventStats)
		r.Get("/events/{eventId}/checkins/timeline", h.GetCheckinTimeline)
		r.Get("/events/{eventId}/checkins/stream", h.StreamEventCheckins)
		r.Get("/events/{eventId}/ticket-types", h.GetEventTicketTypes)

		// Ticketing.
		r.Post("/ticket-types", h.PostTicketType)
		r.Get("/ticket-types/{ticketTypeId}", h.GetTicketType)
		r.Post("/ticket-types/{ticketTypeId}/reserve", h.PostReserveTickets)
		r.Post("/ticket-types/{ticketTypeId}/release", h.PostReleaseTickets)

		// Promo codes.
		r.Post("/promos/validate", h.PostPromoValidate)
		r.Post("/promos/redeem", h.PostPromoRedeem)
	})

	return r
}
