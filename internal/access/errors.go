package access

import "errors"

// ErrEventCodeInvalid is returned for codes that are not exactly four
// digits. The scanner client enforces the same rule before calling out.
var ErrEventCodeInvalid = errors.New("event code must be exactly 4 digits")

// ErrEventNotFound is returned when a well-formed code unlocks nothing.
var ErrEventNotFound = errors.New("no event for this code")
