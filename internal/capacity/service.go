package capacity

import (
	"context"
	"fmt"
	"time"

	"ms-checkin/internal/logger"
	"ms-checkin/internal/models"
)

// Outcome distinguishes a fresh reservation from an idempotent repeat. Both
// are success; callers pick the UI message from it.
type Outcome string

const (
	OutcomeReserved          Outcome = "reserved"
	OutcomeAlreadyRegistered Outcome = "already_registered"
)

// DBLayer is the storage contract for the capacity ledger. Implementations
// must make the count check and the write a single atomic unit; the service
// never does read-then-write on top of it.
type DBLayer interface {
	ReserveSeat(ctx context.Context, sessionID, participantID string) (Outcome, error)
	ReleaseSeat(ctx context.Context, sessionID, participantID string) (bool, error)
	ReserveTicketQuota(ctx context.Context, ticketTypeID string, qty int) error
	ReleaseTicketQuota(ctx context.Context, ticketTypeID string, qty int) error
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
}

// KafkaPublisher streams registration changes to downstream consumers.
type KafkaPublisher interface {
	PublishRegistrationCreated(event models.RegistrationEvent) error
	PublishRegistrationReleased(event models.RegistrationEvent) error
}

// Service guarantees that committed reservations against a capacity-bounded
// resource never exceed its configured limit, even under concurrent
// requests from independent clients.
type Service struct {
	DB     DBLayer
	Kafka  KafkaPublisher
	Logger *logger.Logger
}

func NewService(db DBLayer, kafka KafkaPublisher, log *logger.Logger) *Service {
	return &Service{DB: db, Kafka: kafka, Logger: log}
}

// Reserve commits a seat for participantID in sessionID. Re-reserving an
// already held seat returns OutcomeAlreadyRegistered without touching the
// counter. A full session returns a *CapacityError.
func (s *Service) Reserve(ctx context.Context, sessionID, participantID string) (Outcome, error) {
	outcome, err := s.DB.ReserveSeat(ctx, sessionID, participantID)
	if err != nil {
		if ce, ok := AsCapacityError(err); ok && s.Logger != nil {
			s.Logger.Warn("CAPACITY", fmt.Sprintf("session %s full (%d/%d), rejected %s", sessionID, ce.Current, ce.Max, participantID))
		}
		return "", err
	}

	if outcome == OutcomeReserved && s.Kafka != nil {
		event := models.RegistrationEvent{
			SessionID:     sessionID,
			ParticipantID: participantID,
			Action:        "created",
			OccurredAt:    time.Now(),
		}
		if err := s.Kafka.PublishRegistrationCreated(event); err != nil && s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish registration created: %v", err))
		}
	}

	return outcome, nil
}

// Release removes a reservation and frees its slot. Releasing a reservation
// that does not exist is a no-op.
func (s *Service) Release(ctx context.Context, sessionID, participantID string) error {
	released, err := s.DB.ReleaseSeat(ctx, sessionID, participantID)
	if err != nil {
		return err
	}

	if released && s.Kafka != nil {
		event := models.RegistrationEvent{
			SessionID:     sessionID,
			ParticipantID: participantID,
			Action:        "released",
			OccurredAt:    time.Now(),
		}
		if err := s.Kafka.PublishRegistrationReleased(event); err != nil && s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish registration released: %v", err))
		}
	}

	return nil
}

// ReserveTickets claims qty quota units against a ticket type.
func (s *Service) ReserveTickets(ctx context.Context, ticketTypeID string, qty int) error {
	return s.DB.ReserveTicketQuota(ctx, ticketTypeID, qty)
}

// ReleaseTickets returns qty quota units (refund / abandoned order).
func (s *Service) ReleaseTickets(ctx context.Context, ticketTypeID string, qty int) error {
	return s.DB.ReleaseTicketQuota(ctx, ticketTypeID, qty)
}

// SessionCapacity reports the current committed count and the limit for a
// session, for 409 payloads and stats.
func (s *Service) SessionCapacity(ctx context.Context, sessionID string) (*models.CapacityInfo, error) {
	session, err := s.DB.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	info := &models.CapacityInfo{Current: session.ParticipantCount, Max: -1}
	if session.MaxParticipants != nil {
		info.Max = *session.MaxParticipants
	}
	return info, nil
}
