package leaderboarddb

import "errors"

// Sentinel errors for the ledger repository.
var (
	// ErrNotFound indicates the participant does not exist.
	ErrNotFound = errors.New("participant not found")

	// ErrScoreConflict indicates a compare-and-swap found a different stored
	// score than expected; the caller should reload and retry.
	ErrScoreConflict = errors.New("score changed since it was read")

	// ErrAlreadyGranted indicates the participant already owns the achievement.
	ErrAlreadyGranted = errors.New("achievement already granted")
)
