package scanner

import (
	"context"
	"errors"
)

// ErrCameraUnavailable covers permission denial and missing devices. The
// machine stays in a stopped scan state and waits for an explicit retry.
var ErrCameraUnavailable = errors.New("camera unavailable")

// Constraints mirror the capture hints handed to the platform media layer.
type Constraints struct {
	// FacingMode prefers a camera orientation; scanners want "environment"
	// (rear camera).
	FacingMode string
}

// Stream is an acquired camera capture. Stop must release every track and
// is safe to call more than once.
type Stream interface {
	Stop()
}

// Camera acquires capture streams. The machine enforces at most one active
// stream per client (stop-before-start); implementations don't have to.
type Camera interface {
	Acquire(ctx context.Context, constraints Constraints) (Stream, error)
}
