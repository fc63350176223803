package leaderboardservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	badgedomain "github.com/ChuloWay/gamification-system/app/modules/badge/domain"
	leaderboarddb "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/repositories"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/ChuloWay/gamification-system/internal/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type awardResult = results.OperationResult[*AwardResult, error]

// committedAward is what a successful ledger transaction hands to the
// post-commit steps.
type committedAward struct {
	previous   int64
	next       int64
	ownedBadge []uuid.UUID
}

// AwardPoints adds delta to the participant's score.
//
// Workflow:
//  1. In one transaction: load the participant, record the achievement grant
//     when the reason names one, then compare-and-swap the score.
//  2. On a swap conflict the transaction rolls back and the whole
//     read-modify-write is retried with a short randomized backoff, up to
//     MaxCASAttempts times.
//  3. After commit, detached from caller cancellation: project the new score
//     into the rank cache, grant newly covered badges, then notify observers.
//
// Cache and badge failures after commit are logged and counted but never
// returned; the ledger is already authoritative.
func (s *LeaderboardService) AwardPoints(ctx context.Context, participantID uuid.UUID, delta int64, reason Reason) (*AwardResult, error) {
	result, err := withTelemetry(s, ctx, "AwardPoints", participantID.String(), func(ctx context.Context) (awardResult, error) {
		return s.awardPointsLogic(ctx, participantID, delta, reason)
	})
	return unwrap(result, err)
}

// AwardAchievement grants the achievement and credits its points.
func (s *LeaderboardService) AwardAchievement(ctx context.Context, participantID, achievementID uuid.UUID, points int64) (*AwardResult, error) {
	return s.AwardPoints(ctx, participantID, points, Reason{
		Kind:          ReasonAchievement,
		AchievementID: &achievementID,
	})
}

func (s *LeaderboardService) awardPointsLogic(ctx context.Context, participantID uuid.UUID, delta int64, reason Reason) (awardResult, error) {
	if delta < 0 {
		return results.FailureResult[*AwardResult, error](ErrNegativeDelta), nil
	}
	if reason.Kind == ReasonAchievement && reason.AchievementID == nil {
		return results.FailureResult[*AwardResult, error](ErrInvalidReason), nil
	}

	for attempt := 1; ; attempt++ {
		txResult, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*committedAward, error], error) {
			return s.applyAward(ctx, db, participantID, delta, reason)
		})
		if err != nil {
			if !errors.Is(err, leaderboarddb.ErrScoreConflict) {
				return awardResult{}, err
			}
			if s.metrics != nil {
				s.metrics.RecordCASRetry(ctx)
			}
			if attempt >= s.cfg.MaxCASAttempts {
				s.logger.WarnContext(ctx, "Score update retries exhausted",
					attr.ExtractCorrelationID(ctx),
					attr.ParticipantID(participantID),
					slog.Int("attempts", attempt),
				)
				return results.FailureResult[*AwardResult, error](ErrConflict), nil
			}
			if err := backoff(ctx, attempt); err != nil {
				return awardResult{}, err
			}
			continue
		}
		if txResult.IsFailure() {
			return results.FailureResult[*AwardResult, error](*txResult.Failure), nil
		}

		committed := *txResult.Success
		award := &AwardResult{
			ParticipantID: participantID,
			PreviousScore: committed.previous,
			NewScore:      committed.next,
			Attempts:      attempt,
		}
		award.NewBadges = s.afterCommit(context.WithoutCancel(ctx), participantID, committed)
		return results.SuccessResult[*AwardResult, error](award), nil
	}
}

// applyAward is one read-modify-write attempt. A swap conflict is returned as
// an error so the surrounding transaction rolls back.
func (s *LeaderboardService) applyAward(ctx context.Context, db bun.IDB, participantID uuid.UUID, delta int64, reason Reason) (results.OperationResult[*committedAward, error], error) {
	entry, err := s.ledger.LoadParticipant(ctx, db, participantID)
	if err != nil {
		if errors.Is(err, leaderboarddb.ErrNotFound) {
			return results.FailureResult[*committedAward, error](ErrParticipantNotFound), nil
		}
		return results.OperationResult[*committedAward, error]{}, fmt.Errorf("failed to load participant: %w", err)
	}

	if reason.Kind == ReasonAchievement {
		achievementID := *reason.AchievementID
		if slices.Contains(entry.AchievementIDs, achievementID) {
			return results.FailureResult[*committedAward, error](ErrAlreadyGranted), nil
		}
		if err := s.ledger.AddAchievement(ctx, db, participantID, achievementID, delta); err != nil {
			if errors.Is(err, leaderboarddb.ErrAlreadyGranted) {
				return results.FailureResult[*committedAward, error](ErrAlreadyGranted), nil
			}
			return results.OperationResult[*committedAward, error]{}, fmt.Errorf("failed to record achievement: %w", err)
		}
	}

	next := entry.Score + delta
	if err := s.ledger.CompareAndSwapScore(ctx, db, participantID, entry.Score, next); err != nil {
		if errors.Is(err, leaderboarddb.ErrScoreConflict) {
			return results.OperationResult[*committedAward, error]{}, err
		}
		return results.OperationResult[*committedAward, error]{}, fmt.Errorf("failed to swap score: %w", err)
	}

	return results.SuccessResult[*committedAward, error](&committedAward{
		previous:   entry.Score,
		next:       next,
		ownedBadge: entry.BadgeIDs,
	}), nil
}

// backoff sleeps up to attempt*5ms, returning early if ctx ends first.
func backoff(ctx context.Context, attempt int) error {
	limit := time.Duration(attempt) * 5 * time.Millisecond
	timer := time.NewTimer(rand.N(limit) + time.Millisecond)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// afterCommit runs the downstream steps of a committed award and returns the
// badges that were newly granted.
func (s *LeaderboardService) afterCommit(ctx context.Context, participantID uuid.UUID, committed *committedAward) []uuid.UUID {
	s.project(ctx, "AwardPoints", participantID, committed.next)

	earned := s.grantBadges(ctx, participantID, committed.next, committed.ownedBadge)

	if committed.next != committed.previous || len(earned) > 0 {
		s.trigger()
	}
	return earned
}

// project raises the cached score. The cache refuses the write when the
// participant was removed while the award was in flight.
func (s *LeaderboardService) project(ctx context.Context, operation string, participantID uuid.UUID, score int64) {
	if err := s.cache.Raise(ctx, participantID, score); err != nil {
		s.recordDesync(ctx, operation, participantID, err)
	}
}

func (s *LeaderboardService) recordDesync(ctx context.Context, operation string, participantID uuid.UUID, err error) {
	s.logger.WarnContext(ctx, "Rank cache out of sync with ledger",
		attr.ExtractCorrelationID(ctx),
		slog.String("operation", operation),
		attr.ParticipantID(participantID),
		attr.Error(err),
	)
	if s.metrics != nil {
		s.metrics.RecordCacheDesync(ctx, operation)
	}
}

// grantBadges persists every newly covered badge. Failures schedule a later
// re-evaluation instead of failing the award.
func (s *LeaderboardService) grantBadges(ctx context.Context, participantID uuid.UUID, score int64, owned []uuid.UUID) []uuid.UUID {
	catalog, err := s.catalog.ListBadges(ctx)
	if err != nil {
		s.recordBadgeFailure(ctx, participantID, fmt.Errorf("failed to read badge catalog: %w", err))
		return nil
	}
	return s.persistBadges(ctx, participantID, badgedomain.Evaluate(score, owned, catalog))
}

func (s *LeaderboardService) persistBadges(ctx context.Context, participantID uuid.UUID, candidates []uuid.UUID) []uuid.UUID {
	earned := make([]uuid.UUID, 0, len(candidates))
	var failed error
	for _, badgeID := range candidates {
		inserted, err := s.ledger.AddBadge(ctx, nil, participantID, badgeID)
		if err != nil {
			failed = errors.Join(failed, err)
			continue
		}
		if inserted {
			earned = append(earned, badgeID)
		}
	}

	if failed != nil {
		s.recordBadgeFailure(ctx, participantID, failed)
	}
	if len(earned) > 0 {
		s.logger.InfoContext(ctx, "Badges granted",
			attr.ExtractCorrelationID(ctx),
			attr.ParticipantID(participantID),
			slog.Int("count", len(earned)),
		)
		if s.metrics != nil {
			s.metrics.RecordBadgesGranted(ctx, len(earned))
		}
	}
	return earned
}

func (s *LeaderboardService) recordBadgeFailure(ctx context.Context, participantID uuid.UUID, err error) {
	s.logger.ErrorContext(ctx, "Badge persist failed",
		attr.ExtractCorrelationID(ctx),
		attr.ParticipantID(participantID),
		attr.Error(err),
	)
	if s.metrics != nil {
		s.metrics.RecordBadgePersistFailure(ctx)
	}
	if s.retries == nil {
		return
	}
	if err := s.retries.EnqueueBadgeReevaluation(ctx, participantID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to schedule badge re-evaluation",
			attr.ExtractCorrelationID(ctx),
			attr.ParticipantID(participantID),
			attr.Error(err),
		)
	}
}
