package access

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"ms-checkin/internal/checkin"
	"ms-checkin/internal/logger"
	"ms-checkin/internal/models"
	"ms-checkin/internal/qr"
)

var eventCodePattern = regexp.MustCompile(`^[0-9]{4}$`)

// DBLayer is the storage contract for token and event-code resolution.
type DBLayer interface {
	GetParticipantByToken(ctx context.Context, token string) (*models.Participant, error)
	GetEventByID(ctx context.Context, eventID string) (*models.Event, error)
	GetEventByAccessCode(ctx context.Context, code string) (*models.Event, error)
	GetSessionsByEvent(ctx context.Context, eventID string) ([]models.Session, error)
}

// TokenCache fronts participant-by-token lookups. A nil participant with a
// nil error is a cache miss.
type TokenCache interface {
	GetParticipant(ctx context.Context, token string) (*models.Participant, error)
	SetParticipant(ctx context.Context, token string, participant *models.Participant) error
}

// StatsProvider aggregates attendance numbers for the unlock response.
type StatsProvider interface {
	EventStats(ctx context.Context, eventID string) (*models.EventStats, error)
}

// Service turns scanned or typed strings into verified participant/event
// context, and gates scanner access behind the event's digit code.
type Service struct {
	DB     DBLayer
	Cache  TokenCache
	Stats  StatsProvider
	Codec  *qr.Codec
	Issuer *ScannerTokenIssuer
	Logger *logger.Logger
}

func NewService(db DBLayer, cache TokenCache, stats StatsProvider, codec *qr.Codec, issuer *ScannerTokenIssuer, log *logger.Logger) *Service {
	return &Service{DB: db, Cache: cache, Stats: stats, Codec: codec, Issuer: issuer, Logger: log}
}

// Resolve maps a scanned payload (URL with a token param, an encrypted badge
// payload, or a bare token) to a participant, and rejects tokens minted for
// a different event than the one the scanner is unlocked for.
func (s *Service) Resolve(ctx context.Context, payload, expectedEventCode string) (*models.Participant, *models.Event, error) {
	token := s.extractToken(payload)
	if token == "" {
		return nil, nil, checkin.ErrTokenInvalid
	}

	participant, err := s.lookupParticipant(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	event, err := s.DB.GetEventByID(ctx, participant.EventID)
	if err != nil {
		return nil, nil, checkin.ErrTokenInvalid
	}
	if event.AccessCode != expectedEventCode {
		if s.Logger != nil {
			s.Logger.Warn("ACCESS", fmt.Sprintf("token for event %s presented at a different event's scanner", event.ID))
		}
		return nil, nil, checkin.ErrEventMismatch
	}

	return participant, event, nil
}

// ValidateEventCode resolves a 4-digit code to an event with its sessions,
// attendance stats and a signed scanner token. Malformed codes are rejected
// before any store access.
func (s *Service) ValidateEventCode(ctx context.Context, code string) (*models.EventAccessData, error) {
	if !eventCodePattern.MatchString(code) {
		return nil, ErrEventCodeInvalid
	}

	event, err := s.DB.GetEventByAccessCode(ctx, code)
	if err != nil {
		return nil, ErrEventNotFound
	}

	sessions, err := s.DB.GetSessionsByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	data := &models.EventAccessData{Event: event, Sessions: sessions}

	if s.Stats != nil {
		stats, err := s.Stats.EventStats(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		data.Stats = *stats
	}

	if s.Issuer != nil {
		token, err := s.Issuer.Issue(event.ID)
		if err != nil {
			return nil, err
		}
		data.ScannerToken = token
	}

	return data, nil
}

// extractToken tries the payload shapes in order: URL with a token query
// param, encrypted badge payload, bare token.
func (s *Service) extractToken(payload string) string {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return ""
	}

	if strings.Contains(payload, "://") {
		parsed, err := url.Parse(payload)
		if err != nil {
			return ""
		}
		return parsed.Query().Get("token")
	}

	if s.Codec != nil {
		if decrypted, err := s.Codec.DecryptPayload(payload); err == nil {
			return decrypted.Token
		}
	}

	if strings.ContainsAny(payload, " \t\n") {
		return ""
	}
	return payload
}

func (s *Service) lookupParticipant(ctx context.Context, token string) (*models.Participant, error) {
	if s.Cache != nil {
		cached, err := s.Cache.GetParticipant(ctx, token)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	participant, err := s.DB.GetParticipantByToken(ctx, token)
	if err != nil {
		return nil, checkin.ErrTokenInvalid
	}

	if s.Cache != nil {
		if err := s.Cache.SetParticipant(ctx, token, participant); err != nil && s.Logger != nil {
			s.Logger.Warn("ACCESS", fmt.Sprintf("failed to cache token lookup: %v", err))
		}
	}
	return participant, nil
}
