package participants

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-checkin/internal/logger"
	"ms-checkin/internal/models"
	"ms-checkin/internal/qr"
	"ms-checkin/internal/utils"
)

// DBLayer is the storage contract for participant registration. InsertParticipant
// must treat (event_id, email) as unique and report whether the row was
// actually written, so re-registration stays idempotent under concurrency.
type DBLayer interface {
	EventExists(ctx context.Context, eventID string) (bool, error)
	InsertParticipant(ctx context.Context, participant models.Participant) (bool, error)
	GetParticipant(ctx context.Context, id string) (*models.Participant, error)
	GetParticipantByEmail(ctx context.Context, eventID, email string) (*models.Participant, error)
	ListParticipantsByEvent(ctx context.Context, eventID string) ([]models.Participant, error)
}

// Service registers participants and mints their badges.
type Service struct {
	DB       DBLayer
	Codec    *qr.Codec
	BadgeURL string
	Logger   *logger.Logger
}

func NewService(db DBLayer, codec *qr.Codec, badgeURL string, log *logger.Logger) *Service {
	return &Service{DB: db, Codec: codec, BadgeURL: badgeURL, Logger: log}
}

// Register adds a participant to an event. Registering the same email twice
// for one event returns the existing participant instead of erroring.
func (s *Service) Register(ctx context.Context, req models.CreateParticipantRequest) (*models.Participant, bool, error) {
	exists, err := s.DB.EventExists(ctx, req.EventID)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, ErrEventNotFound
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	participant := models.Participant{
		ID:         uuid.NewString(),
		EventID:    req.EventID,
		Name:       req.Name,
		Email:      email,
		Phone:      req.Phone,
		Profession: req.Profession,
		BadgeToken: utils.GenerateBadgeToken(),
		CreatedAt:  time.Now(),
	}

	inserted, err := s.DB.InsertParticipant(ctx, participant)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		existing, err := s.DB.GetParticipantByEmail(ctx, req.EventID, email)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	if s.Logger != nil {
		s.Logger.Info("PARTICIPANTS", fmt.Sprintf("registered %s for event %s", participant.ID, req.EventID))
	}
	return &participant, true, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Participant, error) {
	return s.DB.GetParticipant(ctx, id)
}

func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]models.Participant, error) {
	return s.DB.ListParticipantsByEvent(ctx, eventID)
}

// BadgePNG renders the participant's badge QR code.
func (s *Service) BadgePNG(ctx context.Context, participantID string) ([]byte, error) {
	participant, err := s.DB.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	return s.Codec.BadgeQR(s.BadgeURL, participant.BadgeToken)
}

// EncryptedBadgePNG renders a badge whose payload does not expose the token
// or participant identifiers in cleartext.
func (s *Service) EncryptedBadgePNG(ctx context.Context, participantID string) ([]byte, error) {
	participant, err := s.DB.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	return s.Codec.EncryptedBadgeQR(qr.BadgePayload{
		Token:         participant.BadgeToken,
		EventID:       participant.EventID,
		ParticipantID: participant.ID,
	})
}
