package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ms-checkin/internal/utils"
)

type contextKey string

// scannerEventKey carries the event ID a verified scanner token is scoped to.
const scannerEventKey contextKey = "scanner_event_id"

// ScannerAuth verifies the Bearer token minted at event-code unlock. The
// event the token is scoped to is placed in the request context.
func (h *Handler) ScannerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			h.writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Scanner token required", "missing bearer token"))
			return
		}

		eventID, err := h.Issuer.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			h.writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Invalid scanner token", err.Error()))
			return
		}

		ctx := context.WithValue(r.Context(), scannerEventKey, eventID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ScannerEventID returns the event a verified scanner token is scoped to.
func ScannerEventID(ctx context.Context) string {
	eventID, _ := ctx.Value(scannerEventKey).(string)
	return eventID
}

// RequestLogger writes one line per request through the category logger.
func (h *Handler) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.Logger.LogAPI(r.Method, r.URL.Path,
			strconv.Itoa(ww.Status()),
			time.Since(start).String())
	})
}

func urlParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
