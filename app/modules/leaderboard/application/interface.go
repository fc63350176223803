package leaderboardservice

import (
	"context"

	badgedomain "github.com/ChuloWay/gamification-system/app/modules/badge/domain"
	"github.com/google/uuid"
)

// Service defines the contract for score updates and rank queries.
type Service interface {
	// Writes
	AwardPoints(ctx context.Context, participantID uuid.UUID, delta int64, reason Reason) (*AwardResult, error)
	AwardAchievement(ctx context.Context, participantID, achievementID uuid.UUID, points int64) (*AwardResult, error)

	// Membership
	TrackParticipant(ctx context.Context, participantID uuid.UUID, score int64) error
	RemoveParticipant(ctx context.Context, participantID uuid.UUID) error

	// Reads
	Score(ctx context.Context, participantID uuid.UUID) (*Standing, error)
	Leaderboard(ctx context.Context, k int) ([]RankedParticipant, error)

	// Recovery
	RebuildRankCache(ctx context.Context) (int, error)
	ReevaluateBadges(ctx context.Context, participantID *uuid.UUID) (int, error)
}

// BadgeCatalog supplies the badge definitions evaluated after each award.
type BadgeCatalog interface {
	ListBadges(ctx context.Context) ([]badgedomain.Badge, error)
}

// Notifier is told that the ranking may have changed. Implementations must not block.
type Notifier interface {
	Trigger()
}

// BadgeRetryScheduler queues a later badge re-evaluation for a participant
// whose badge writes failed.
type BadgeRetryScheduler interface {
	EnqueueBadgeReevaluation(ctx context.Context, participantID uuid.UUID) error
}
