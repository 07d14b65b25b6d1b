package checkin

import "errors"

// Failure taxonomy for check-in attempts. Duplicate check-ins are NOT here:
// they are a success outcome with a distinct status.
var (
	// ErrTokenInvalid means the scanned payload could not be resolved to a
	// participant (malformed, unknown, or expired token).
	ErrTokenInvalid = errors.New("token invalid")

	// ErrEventMismatch means the token or participant belongs to a different
	// event than the one the scanner is unlocked for.
	ErrEventMismatch = errors.New("event mismatch")

	// ErrNotRegistered means the participant holds no registration for the
	// target session.
	ErrNotRegistered = errors.New("participant not registered for session")

	// ErrSessionNotFound means the target session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrParticipantNotFound means the manual path named an unknown
	// participant.
	ErrParticipantNotFound = errors.New("participant not found")
)
