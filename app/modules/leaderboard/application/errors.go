package leaderboardservice

import "errors"

var (
	// ErrParticipantNotFound is returned when the ledger has no such participant.
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrConflict is returned when the score kept changing underneath an award
	// until the retry cap was reached.
	ErrConflict = errors.New("score update conflicted too many times")

	// ErrAlreadyGranted is returned when the achievement was granted before.
	ErrAlreadyGranted = errors.New("achievement already granted")

	// ErrNegativeDelta is returned for point deductions.
	ErrNegativeDelta = errors.New("points must not be negative")

	// ErrInvalidReason is returned when an achievement award carries no achievement id.
	ErrInvalidReason = errors.New("achievement award requires an achievement id")
)
