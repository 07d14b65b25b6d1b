package capacity

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a reservation targets an unknown
// session. Handlers translate it into an HTTP 404 response.
var ErrSessionNotFound = errors.New("session not found")

// ErrTicketTypeNotFound is returned when a quota operation targets an
// unknown ticket type.
var ErrTicketTypeNotFound = errors.New("ticket type not found")

// CapacityError is returned when a resource is full. It carries the counts
// observed at rejection time so the API can surface them in a 409 body.
type CapacityError struct {
	Current int
	Max     int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: %d/%d", e.Current, e.Max)
}

// AsCapacityError unwraps err into a *CapacityError if it is one.
func AsCapacityError(err error) (*CapacityError, bool) {
	var ce *CapacityError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
