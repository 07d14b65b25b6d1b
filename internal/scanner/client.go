package scanner

import (
	"context"

	"ms-checkin/internal/models"
)

// AccessClient is the machine's view of the event-access API.
type AccessClient interface {
	ValidateEventCode(ctx context.Context, code string) (*models.EventAccessData, error)
	Roster(ctx context.Context, sessionID string) ([]models.Participant, error)
}

// CheckinClient is the machine's view of the check-in API.
type CheckinClient interface {
	CheckIn(ctx context.Context, req models.CheckinRequest) (*models.CheckinResponse, error)
}
