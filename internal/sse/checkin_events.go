package sse

import (
	"context"
	"sync"

	"ms-checkin/internal/models"
)

// CheckinEventEmitter manages SSE connections and broadcasting for live
// check-in events. Scanners follow one session, organiser dashboards follow a
// whole event.
type CheckinEventEmitter struct {
	// Event channel clients map - key: eventID, value: slice of client channels
	eventClients     map[string][]chan models.CheckinEvent
	eventClientMutex sync.RWMutex

	// Session channel clients map - key: sessionID, value: slice of client channels
	sessionClients     map[string][]chan models.CheckinEvent
	sessionClientMutex sync.RWMutex
}

// NewCheckinEventEmitter creates a new SSE event emitter for check-in events
func NewCheckinEventEmitter() *CheckinEventEmitter {
	return &CheckinEventEmitter{
		eventClients:   make(map[string][]chan models.CheckinEvent),
		sessionClients: make(map[string][]chan models.CheckinEvent),
	}
}

// SubscribeToEvent adds a client to the event's check-in feed
func (e *CheckinEventEmitter) SubscribeToEvent(ctx context.Context, eventID string) chan models.CheckinEvent {
	clientChan := make(chan models.CheckinEvent, 10)

	e.eventClientMutex.Lock()
	e.eventClients[eventID] = append(e.eventClients[eventID], clientChan)
	e.eventClientMutex.Unlock()

	// Remove client when context is done
	go func() {
		<-ctx.Done()
		e.removeEventClient(eventID, clientChan)
	}()

	return clientChan
}

// SubscribeToSession adds a client to the session's check-in feed
func (e *CheckinEventEmitter) SubscribeToSession(ctx context.Context, sessionID string) chan models.CheckinEvent {
	clientChan := make(chan models.CheckinEvent, 10)

	e.sessionClientMutex.Lock()
	e.sessionClients[sessionID] = append(e.sessionClients[sessionID], clientChan)
	e.sessionClientMutex.Unlock()

	// Remove client when context is done
	go func() {
		<-ctx.Done()
		e.removeSessionClient(sessionID, clientChan)
	}()

	return clientChan
}

// EmitCheckin broadcasts a confirmed check-in to all subscribed clients
func (e *CheckinEventEmitter) EmitCheckin(event models.CheckinEvent) {
	e.eventClientMutex.RLock()
	eventClients := e.eventClients[event.EventID]
	e.eventClientMutex.RUnlock()

	for _, clientChan := range eventClients {
		// Non-blocking send to avoid slowing down emitter if client is slow
		select {
		case clientChan <- event:
		default:
			// Channel buffer full, skip this client for now
		}
	}

	e.sessionClientMutex.RLock()
	sessionClients := e.sessionClients[event.SessionID]
	e.sessionClientMutex.RUnlock()

	for _, clientChan := range sessionClients {
		select {
		case clientChan <- event:
		default:
		}
	}
}

// Helper methods to remove clients when they disconnect
func (e *CheckinEventEmitter) removeEventClient(eventID string, clientChan chan models.CheckinEvent) {
	e.eventClientMutex.Lock()
	defer e.eventClientMutex.Unlock()

	clients := e.eventClients[eventID]
	for i, ch := range clients {
		if ch == clientChan {
			e.eventClients[eventID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.eventClients[eventID]) == 0 {
		delete(e.eventClients, eventID)
	}
}

func (e *CheckinEventEmitter) removeSessionClient(sessionID string, clientChan chan models.CheckinEvent) {
	e.sessionClientMutex.Lock()
	defer e.sessionClientMutex.Unlock()

	clients := e.sessionClients[sessionID]
	for i, ch := range clients {
		if ch == clientChan {
			e.sessionClients[sessionID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.sessionClients[sessionID]) == 0 {
		delete(e.sessionClients, sessionID)
	}
}

// GetEventClientCount returns the number of clients subscribed to an event
func (e *CheckinEventEmitter) GetEventClientCount(eventID string) int {
	e.eventClientMutex.RLock()
	defer e.eventClientMutex.RUnlock()
	return len(e.eventClients[eventID])
}

// GetSessionClientCount returns the number of clients subscribed to a session
func (e *CheckinEventEmitter) GetSessionClientCount(sessionID string) int {
	e.sessionClientMutex.RLock()
	defer e.sessionClientMutex.RUnlock()
	return len(e.sessionClients[sessionID])
}
