package participants

import "errors"

var (
	ErrNotFound      = errors.New("participant not found")
	ErrEventNotFound = errors.New("event not found")
)
