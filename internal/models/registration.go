package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SessionParticipant links a participant to a session. The (session_id,
// participant_id) pair is unique, which is what makes registration
// idempotent at the storage level.
type SessionParticipant struct {
	bun.BaseModel `bun:"table:session_participants"`

	SessionID     string    `bun:"session_id,pk" json:"session_id"`
	ParticipantID string    `bun:"participant_id,pk" json:"participant_id"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
