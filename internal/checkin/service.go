package checkin

import (
	"context"
	"fmt"
	"time"

	"ms-checkin/internal/logger"
	"ms-checkin/internal/models"
)

// Status values carried in CheckinResponse.
const (
	StatusCheckedIn        = "checked_in"
	StatusAlreadyCheckedIn = "already_checked_in"
)

// DBLayer is the storage contract for the check-in ledger. MarkCheckedIn
// must be an atomic test-and-set: of any number of concurrent calls for the
// same participant, exactly one observes newly=true.
type DBLayer interface {
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	GetParticipant(ctx context.Context, participantID string) (*models.Participant, error)
	IsRegistered(ctx context.Context, sessionID, participantID string) (bool, error)
	MarkCheckedIn(ctx context.Context, participantID string, at time.Time) (bool, error)
	InsertRecord(ctx context.Context, record models.CheckinRecord) error
	RosterBySession(ctx context.Context, sessionID string) ([]models.Participant, error)
}

// Resolver maps a scanned payload to a verified participant within the
// expected event.
type Resolver interface {
	Resolve(ctx context.Context, payload, expectedEventCode string) (*models.Participant, *models.Event, error)
}

// KafkaPublisher streams confirmed check-ins.
type KafkaPublisher interface {
	PublishCheckinRecorded(event models.CheckinEvent) error
}

// Emitter pushes confirmed check-ins to live SSE subscribers.
type Emitter interface {
	EmitCheckin(event models.CheckinEvent)
}

// Service records attendance exactly once per (participant, session),
// regardless of how many scanner devices hit it concurrently.
type Service struct {
	DB       DBLayer
	Resolver Resolver
	Kafka    KafkaPublisher
	Emitter  Emitter
	Logger   *logger.Logger
}

func NewService(db DBLayer, resolver Resolver, kafka KafkaPublisher, emitter Emitter, log *logger.Logger) *Service {
	return &Service{DB: db, Resolver: resolver, Kafka: kafka, Emitter: emitter, Logger: log}
}

// CheckIn processes one scan or manual attempt. Repeated attempts for an
// already present participant return success with StatusAlreadyCheckedIn;
// the scan loop is expected to re-scan badges and must not see errors for
// that.
func (s *Service) CheckIn(ctx context.Context, req models.CheckinRequest) (*models.CheckinResponse, error) {
	session, err := s.DB.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	participant, err := s.resolveParticipant(ctx, req, session)
	if err != nil {
		return nil, err
	}

	registered, err := s.DB.IsRegistered(ctx, req.SessionID, participant.ID)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, ErrNotRegistered
	}

	now := time.Now()
	newly, err := s.DB.MarkCheckedIn(ctx, participant.ID, now)
	if err != nil {
		return nil, err
	}

	// At most one record per (participant, session); the insert is a no-op
	// when the pair already exists.
	record := models.CheckinRecord{
		ParticipantID: participant.ID,
		SessionID:     req.SessionID,
		CheckedBy:     req.CheckedBy,
		Method:        req.Method,
		DeviceInfo:    req.DeviceInfo,
		CheckedAt:     now,
	}
	if err := s.DB.InsertRecord(ctx, record); err != nil {
		return nil, err
	}

	if !newly {
		if s.Logger != nil {
			s.Logger.LogCheckin(StatusAlreadyCheckedIn, participant.ID, req.SessionID)
		}
		return &models.CheckinResponse{
			Success:     true,
			Status:      StatusAlreadyCheckedIn,
			Message:     fmt.Sprintf("%s is already checked in", participant.Name),
			Participant: participant,
		}, nil
	}

	participant.CheckedIn = true
	participant.CheckedInAt = &now

	checkinEvent := models.CheckinEvent{
		EventID:       session.EventID,
		SessionID:     req.SessionID,
		ParticipantID: participant.ID,
		Name:          participant.Name,
		CheckedBy:     req.CheckedBy,
		Method:        req.Method,
		CheckedAt:     now,
	}
	if s.Kafka != nil {
		if err := s.Kafka.PublishCheckinRecorded(checkinEvent); err != nil && s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish check-in: %v", err))
		}
	}
	if s.Emitter != nil {
		s.Emitter.EmitCheckin(checkinEvent)
	}
	if s.Logger != nil {
		s.Logger.LogCheckin(StatusCheckedIn, participant.ID, req.SessionID)
	}

	return &models.CheckinResponse{
		Success:     true,
		Status:      StatusCheckedIn,
		Message:     fmt.Sprintf("Welcome, %s", participant.Name),
		Participant: participant,
	}, nil
}

// Roster returns all participants registered for a session (search tab).
func (s *Service) Roster(ctx context.Context, sessionID string) ([]models.Participant, error) {
	if _, err := s.DB.GetSession(ctx, sessionID); err != nil {
		return nil, ErrSessionNotFound
	}
	return s.DB.RosterBySession(ctx, sessionID)
}

func (s *Service) resolveParticipant(ctx context.Context, req models.CheckinRequest, session *models.Session) (*models.Participant, error) {
	if req.ParticipantID != "" {
		// Manual path: the search tab names the participant directly.
		participant, err := s.DB.GetParticipant(ctx, req.ParticipantID)
		if err != nil {
			return nil, ErrParticipantNotFound
		}
		if participant.EventID != session.EventID {
			return nil, ErrEventMismatch
		}
		return participant, nil
	}

	participant, event, err := s.Resolver.Resolve(ctx, req.QRToken, req.EventCode)
	if err != nil {
		return nil, err
	}
	if event.ID != session.EventID {
		return nil, ErrEventMismatch
	}
	return participant, nil
}
