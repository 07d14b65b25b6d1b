package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-checkin/internal/access"
	accessdb "ms-checkin/internal/access/db"
	"ms-checkin/internal/api"
	"ms-checkin/internal/capacity"
	capacitydb "ms-checkin/internal/capacity/db"
	"ms-checkin/internal/checkin"
	checkindb "ms-checkin/internal/checkin/db"
	"ms-checkin/internal/logger"
	"ms-checkin/internal/models"
	"ms-checkin/internal/participants"
	participantsdb "ms-checkin/internal/participants/db"
	"ms-checkin/internal/qr"
	"ms-checkin/internal/sse"
	"ms-checkin/internal/ticketing"
	ticketingdb "ms-checkin/internal/ticketing/db"
)

// responseEnvelope mirrors utils.APIResponse with a raw data payload so each
// test can decode data into the shape it expects.
type responseEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func setupServer(t *testing.T) (*httptest.Server, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{
		(*models.Event)(nil),
		(*models.Session)(nil),
		(*models.Participant)(nil),
		(*models.SessionParticipant)(nil),
		(*models.CheckinRecord)(nil),
		(*models.TicketType)(nil),
		(*models.PromoCode)(nil),
		(*models.PromoRedemption)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	log := logger.NewLogger()
	codec := qr.NewCodec("badge-secret")
	issuer := access.NewScannerTokenIssuer("jwt-secret", time.Hour)
	emitter := sse.NewCheckinEventEmitter()

	accessSvc := access.NewService(&accessdb.DB{Bun: bunDB}, nil, nil, codec, issuer, log)
	capacitySvc := capacity.NewService(&capacitydb.DB{Bun: bunDB}, nil, log)
	checkinSvc := checkin.NewService(&checkindb.DB{Bun: bunDB}, accessSvc, nil, emitter, log)
	participantSvc := participants.NewService(&participantsdb.DB{Bun: bunDB}, codec, "https://events.example.com/checkin", log)

	ticketStore := &ticketingdb.DB{Bun: bunDB}
	ticketingSvc := ticketing.NewService(ticketStore, capacitySvc, log)
	promoSvc := ticketing.NewPromoService(ticketStore, nil, log)

	handler := api.NewHandler(accessSvc, checkinSvc, capacitySvc, participantSvc, ticketingSvc, promoSvc, nil, emitter, issuer, log)

	server := httptest.NewServer(handler.Routes())
	t.Cleanup(func() {
		server.Close()
		bunDB.Close()
	})
	return server, bunDB
}

func seedEvent(t *testing.T, bunDB *bun.DB, maxParticipants *int) {
	ctx := context.Background()

	event := &models.Event{
		ID:         "event-1",
		Name:       "DevConf",
		AccessCode: "4242",
		StartDate:  time.Now(),
		EndDate:    time.Now().Add(8 * time.Hour),
		CreatedAt:  time.Now(),
	}
	_, err := bunDB.NewInsert().Model(event).Exec(ctx)
	assert.NoError(t, err)

	session := &models.Session{
		ID:              "session-1",
		EventID:         "event-1",
		Title:           "Opening Keynote",
		StartsAt:        time.Now(),
		EndsAt:          time.Now().Add(time.Hour),
		MaxParticipants: maxParticipants,
		CreatedAt:       time.Now(),
	}
	_, err = bunDB.NewInsert().Model(session).Exec(ctx)
	assert.NoError(t, err)

	for i := 1; i <= 3; i++ {
		participant := &models.Participant{
			ID:         fmt.Sprintf("participant-%d", i),
			EventID:    "event-1",
			Name:       fmt.Sprintf("Participant %d", i),
			Email:      fmt.Sprintf("p%d@example.com", i),
			BadgeToken: fmt.Sprintf("badge-token-%d", i),
			CreatedAt:  time.Now(),
		}
		_, err = bunDB.NewInsert().Model(participant).Exec(ctx)
		assert.NoError(t, err)
	}
}

func registerDirect(t *testing.T, bunDB *bun.DB, sessionID string, participantIDs ...string) {
	ctx := context.Background()
	for _, id := range participantIDs {
		_, err := bunDB.NewInsert().Model(&models.SessionParticipant{
			SessionID:     sessionID,
			ParticipantID: id,
			CreatedAt:     time.Now(),
		}).Exec(ctx)
		assert.NoError(t, err)
	}
	_, err := bunDB.NewUpdate().Model((*models.Session)(nil)).
		Set("participant_count = ?", len(participantIDs)).
		Where("id = ?", sessionID).
		Exec(ctx)
	assert.NoError(t, err)
}

func postJSON(t *testing.T, url, token string, body interface{}) (*http.Response, responseEnvelope) {
	payload, err := json.Marshal(body)
	assert.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)

	var envelope responseEnvelope
	if resp.Header.Get("Content-Type") == "application/json" {
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	}
	resp.Body.Close()
	return resp, envelope
}

func unlockScanner(t *testing.T, server *httptest.Server) string {
	resp, envelope := postJSON(t, server.URL+"/api/event-access", "", models.EventAccessRequest{EventCode: "4242"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var data models.EventAccessData
	assert.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.NotEmpty(t, data.ScannerToken)
	return data.ScannerToken
}

func TestEventAccess(t *testing.T) {
	server, bunDB := setupServer(t)
	seedEvent(t, bunDB, nil)

	// Malformed code is rejected by validation before any lookup.
	resp, _ := postJSON(t, server.URL+"/api/event-access", "", models.EventAccessRequest{EventCode: "42"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Well-formed but unknown code.
	resp, envelope := postJSON(t, server.URL+"/api/event-access", "", models.EventAccessRequest{EventCode: "0000"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, envelope.Success)

	resp, envelope = postJSON(t, server.URL+"/api/event-access", "", models.EventAccessRequest{EventCode: "4242"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var data models.EventAccessData
	assert.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, "event-1", data.Event.ID)
	assert.Len(t, data.Sessions, 1)
	assert.NotEmpty(t, data.ScannerToken)
}

func TestRosterRequiresScannerToken(t *testing.T) {
	server, bunDB := setupServer(t)
	seedEvent(t, bunDB, nil)
	registerDirect(t, bunDB, "session-1", "participant-1")

	resp, err := http.Get(server.URL + "/api/event-access/roster?session_id=session-1")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := unlockScanner(t, server)
	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/event-access/roster?session_id=session-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope responseEnvelope
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	var roster []models.Participant
	assert.NoError(t, json.Unmarshal(envelope.Data, &roster))
	assert.Len(t, roster, 1)
	assert.Equal(t, "participant-1", roster[0].ID)
}

func TestCheckinOverHTTP(t *testing.T) {
	server, bunDB := setupServer(t)
	seedEvent(t, bunDB, nil)
	registerDirect(t, bunDB, "session-1", "participant-1", "participant-2")

	token := unlockScanner(t, server)

	checkinReq := models.CheckinRequest{
		QRToken:   "badge-token-1",
		SessionID: "session-1",
		EventCode: "4242",
		CheckedBy: "door-a",
		Method:    "scan",
	}

	resp, envelope := postJSON(t, server.URL+"/api/checkin", token, checkinReq)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var checkinResp models.CheckinResponse
	assert.NoError(t, json.Unmarshal(envelope.Data, &checkinResp))
	assert.Equal(t, checkin.StatusCheckedIn, checkinResp.Status)

	// Re-scanning the same badge is a success with a distinct status.
	resp, envelope = postJSON(t, server.URL+"/api/checkin", token, checkinReq)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, json.Unmarshal(envelope.Data, &checkinResp))
	assert.Equal(t, checkin.StatusAlreadyCheckedIn, checkinResp.Status)

	// Participant 3 never registered for this session.
	unregistered := checkinReq
	unregistered.QRToken = "badge-token-3"
	resp, _ = postJSON(t, server.URL+"/api/checkin", token, unregistered)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown badge.
	invalid := checkinReq
	invalid.QRToken = "no-such-token"
	resp, _ = postJSON(t, server.URL+"/api/checkin", token, invalid)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegistrationCapacityConflict(t *testing.T) {
	server, bunDB := setupServer(t)
	maxParticipants := 2
	seedEvent(t, bunDB, &maxParticipants)
	registerDirect(t, bunDB, "session-1", "participant-1", "participant-2")

	// Session is full.
	resp, envelope := postJSON(t, server.URL+"/api/sessions/participants", "", models.RegistrationRequest{
		SessionID:     "session-1",
		ParticipantID: "participant-3",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Session pleine", envelope.Message)

	var info models.CapacityInfo
	assert.NoError(t, json.Unmarshal(envelope.Data, &info))
	assert.Equal(t, 2, info.Current)
	assert.Equal(t, 2, info.Max)

	// Re-registering an existing participant is not an error.
	resp, _ = postJSON(t, server.URL+"/api/sessions/participants", "", models.RegistrationRequest{
		SessionID:     "session-1",
		ParticipantID: "participant-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Releasing a seat frees it for someone else.
	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/sessions/participants", bytes.NewReader(mustJSON(t, models.RegistrationRequest{
		SessionID:     "session-1",
		ParticipantID: "participant-2",
	})))
	req.Header.Set("Content-Type", "application/json")
	deleteResp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	deleteResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, deleteResp.StatusCode)

	resp, _ = postJSON(t, server.URL+"/api/sessions/participants", "", models.RegistrationRequest{
		SessionID:     "session-1",
		ParticipantID: "participant-3",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestParticipantRegistrationAndBadge(t *testing.T) {
	server, bunDB := setupServer(t)
	seedEvent(t, bunDB, nil)

	createReq := models.CreateParticipantRequest{
		EventID: "event-1",
		Name:    "Ada Example",
		Email:   "Ada@Example.com",
	}

	resp, envelope := postJSON(t, server.URL+"/api/participants", "", createReq)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Participant
	assert.NoError(t, json.Unmarshal(envelope.Data, &created))
	assert.Equal(t, "ada@example.com", created.Email)

	// Same email again returns the existing participant.
	resp, envelope = postJSON(t, server.URL+"/api/participants", "", createReq)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var existing models.Participant
	assert.NoError(t, json.Unmarshal(envelope.Data, &existing))
	assert.Equal(t, created.ID, existing.ID)

	// Unknown event.
	badEvent := createReq
	badEvent.EventID = "missing"
	badEvent.Email = "other@example.com"
	resp, _ = postJSON(t, server.URL+"/api/participants", "", badEvent)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	badgeResp, err := http.Get(server.URL + "/api/participants/" + created.ID + "/badge")
	assert.NoError(t, err)
	defer badgeResp.Body.Close()
	assert.Equal(t, http.StatusOK, badgeResp.StatusCode)
	assert.Equal(t, "image/png", badgeResp.Header.Get("Content-Type"))
}

func TestPromoEndpoints(t *testing.T) {
	server, bunDB := setupServer(t)
	seedEvent(t, bunDB, nil)

	maxUses := 1
	promo := &models.PromoCode{
		ID:         "promo-1",
		Code:       "WELCOME10",
		Type:       models.PromoPercentage,
		Value:      10,
		MaxUses:    &maxUses,
		ActiveFrom: time.Now().Add(-time.Hour),
		ExpiresAt:  time.Now().Add(time.Hour),
		Active:     true,
		CreatedAt:  time.Now(),
	}
	_, err := bunDB.NewInsert().Model(promo).Exec(context.Background())
	assert.NoError(t, err)

	resp, envelope := postJSON(t, server.URL+"/api/promos/validate", "", models.PromoValidateRequest{
		Code:        "welcome10",
		OrderAmount: 100,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result ticketing.ValidationResult
	assert.NoError(t, json.Unmarshal(envelope.Data, &result))
	assert.True(t, result.IsValid)
	assert.Equal(t, 10.0, result.DiscountAmount)

	resp, _ = postJSON(t, server.URL+"/api/promos/redeem", "", models.PromoRedeemRequest{
		Code:       "WELCOME10",
		CustomerID: "cust-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The single use is gone.
	resp, _ = postJSON(t, server.URL+"/api/promos/redeem", "", models.PromoRedeemRequest{
		Code:       "WELCOME10",
		CustomerID: "cust-2",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func mustJSON(t *testing.T, body interface{}) []byte {
	payload, err := json.Marshal(body)
	assert.NoError(t, err)
	return payload
}
