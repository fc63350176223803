package participantdb

import "errors"

var (
	// ErrNotFound is returned when a participant does not exist.
	ErrNotFound = errors.New("participant not found")

	// ErrEmailTaken is returned when another participant already uses the email.
	ErrEmailTaken = errors.New("email already registered")
)
