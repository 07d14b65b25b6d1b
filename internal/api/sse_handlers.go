package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-checkin/internal/models"
)

// StreamEventCheckins pushes an event's confirmed check-ins over SSE.
func (h *Handler) StreamEventCheckins(w http.ResponseWriter, r *http.Request) {
	eventID := urlParam(r, "eventId")
	clientChan := h.Emitter.SubscribeToEvent(r.Context(), eventID)
	h.streamCheckins(w, r, clientChan)
}

// StreamSessionCheckins pushes one session's confirmed check-ins over SSE.
func (h *Handler) StreamSessionCheckins(w http.ResponseWriter, r *http.Request) {
	sessionID := urlParam(r, "sessionId")
	clientChan := h.Emitter.SubscribeToSession(r.Context(), sessionID)
	h.streamCheckins(w, r, clientChan)
}

func (h *Handler) streamCheckins(w http.ResponseWriter, r *http.Request, clientChan chan models.CheckinEvent) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Initial comment so clients know the stream is live.
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-clientChan:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				if h.Logger != nil {
					h.Logger.Error("SSE", "failed to marshal check-in event: "+err.Error())
				}
				continue
			}
			fmt.Fprintf(w, "event: checkin\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
