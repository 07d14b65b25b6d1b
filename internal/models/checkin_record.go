package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Check-in methods recorded on a CheckinRecord.
const (
	CheckinMethodScan   = "scan"
	CheckinMethodManual = "manual"
)

// CheckinRecord marks a participant as present for a session. The
// (participant_id, session_id) pair is unique: re-scanning an already
// checked-in badge never produces a second row.
type CheckinRecord struct {
	bun.BaseModel `bun:"table:checkin_records"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	ParticipantID string    `bun:"participant_id,notnull,unique:participant_session" json:"participant_id"`
	SessionID     string    `bun:"session_id,notnull,unique:participant_session" json:"session_id"`
	CheckedBy     string    `bun:"checked_by,notnull" json:"checked_by"`
	Method        string    `bun:"method,notnull" json:"method"`
	DeviceInfo    string    `bun:"device_info,nullzero" json:"device_info,omitempty"`
	CheckedAt     time.Time `bun:"checked_at,notnull" json:"checked_at"`
}
