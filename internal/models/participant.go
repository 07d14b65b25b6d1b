package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Participant is a registrant of an event. Email is the human identifier
// (unique per event); BadgeToken is the opaque identifier embedded in the
// badge QR code. CheckedInAt is set iff CheckedIn is true.
type Participant struct {
	bun.BaseModel `bun:"table:participants"`

	ID          string     `bun:"id,pk" json:"id"`
	EventID     string     `bun:"event_id,notnull,unique:event_email" json:"event_id"`
	Name        string     `bun:"name,notnull" json:"name"`
	Email       string     `bun:"email,notnull,unique:event_email" json:"email"`
	Phone       string     `bun:"phone,nullzero" json:"phone,omitempty"`
	Profession  string     `bun:"profession,nullzero" json:"profession,omitempty"`
	BadgeToken  string     `bun:"badge_token,unique,notnull" json:"-"`
	CheckedIn   bool       `bun:"checked_in,notnull,default:false" json:"checked_in"`
	CheckedInAt *time.Time `bun:"checked_in_at" json:"checked_in_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
