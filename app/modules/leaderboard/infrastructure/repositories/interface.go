package leaderboarddb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository is the ledger store: the durable record of participant scores
// and owned badges and achievements.
type Repository interface {
	// LoadParticipant returns the participant's score and owned sets.
	LoadParticipant(ctx context.Context, db bun.IDB, participantID uuid.UUID) (*LedgerEntry, error)

	// CompareAndSwapScore writes next only if the stored score still equals expected.
	CompareAndSwapScore(ctx context.Context, db bun.IDB, participantID uuid.UUID, expected, next int64) error

	// AddBadge records an owned badge and reports whether it was newly added.
	AddBadge(ctx context.Context, db bun.IDB, participantID, badgeID uuid.UUID) (bool, error)

	// AddAchievement records a granted achievement, failing with ErrAlreadyGranted on duplicates.
	AddAchievement(ctx context.Context, db bun.IDB, participantID, achievementID uuid.UUID, points int64) error

	// ListScores returns every participant's score, highest first, ties by who reached the score first.
	ListScores(ctx context.Context, db bun.IDB) ([]ScoreEntry, error)

	// ListOwnedBadges returns owned badge ids keyed by participant.
	ListOwnedBadges(ctx context.Context, db bun.IDB) (map[uuid.UUID][]uuid.UUID, error)

	// DisplayNames returns display names for the given participants. Unknown ids are omitted.
	DisplayNames(ctx context.Context, db bun.IDB, participantIDs []uuid.UUID) (map[uuid.UUID]string, error)
}
