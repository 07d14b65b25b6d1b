package scanner

import (
	"context"
	"errors"
)

// ErrNoCode means the current frame held no QR code. It is the normal idle
// result of the decode loop, never a fatal condition.
var ErrNoCode = errors.New("no code in frame")

// Decoder pulls frames from a stream and returns the next decoded text
// payload. Implementations block until a code is found, ErrNoCode is
// reported for the inspected frame, or ctx is cancelled.
type Decoder interface {
	Decode(ctx context.Context, stream Stream) (string, error)
}
