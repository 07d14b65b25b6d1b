package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Session is a schedulable sub-event (talk, workshop). MaxParticipants nil
// means unlimited; ParticipantCount is the committed reservation counter and
// must only move through conditional updates in the capacity ledger.
type Session struct {
	bun.BaseModel `bun:"table:sessions"`

	ID               string    `bun:"id,pk" json:"id"`
	EventID          string    `bun:"event_id,notnull" json:"event_id"`
	Title            string    `bun:"title,notnull" json:"title"`
	StartsAt         time.Time `bun:"starts_at,notnull" json:"starts_at"`
	EndsAt           time.Time `bun:"ends_at,notnull" json:"ends_at"`
	Location         string    `bun:"location,nullzero" json:"location,omitempty"`
	SpeakerName      string    `bun:"speaker_name,nullzero" json:"speaker_name,omitempty"`
	MaxParticipants  *int      `bun:"max_participants" json:"max_participants,omitempty"`
	ParticipantCount int       `bun:"participant_count,notnull,default:0" json:"participant_count"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
