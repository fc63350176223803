package leaderboardservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	badgedomain "github.com/ChuloWay/gamification-system/app/modules/badge/domain"
	"github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/rankcache"
	leaderboarddb "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/repositories"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/ChuloWay/gamification-system/internal/results"
	"github.com/google/uuid"
)

type countResult = results.OperationResult[int, error]

// RebuildRankCache replaces the rank cache with a fresh read of the ledger and
// returns the number of projected participants.
func (s *LeaderboardService) RebuildRankCache(ctx context.Context) (int, error) {
	result, err := withTelemetry(s, ctx, "RebuildRankCache", "all", func(ctx context.Context) (countResult, error) {
		return s.rebuildLogic(ctx)
	})
	return unwrap(result, err)
}

func (s *LeaderboardService) rebuildLogic(ctx context.Context) (countResult, error) {
	readAt := time.Now()
	mark, err := s.cache.Mark(ctx)
	if err != nil {
		return countResult{}, fmt.Errorf("failed to mark rank cache: %w", err)
	}

	scores, err := s.ledger.ListScores(ctx, nil)
	if err != nil {
		return countResult{}, fmt.Errorf("failed to list scores: %w", err)
	}

	entries := make([]rankcache.Entry, 0, len(scores))
	for _, row := range scores {
		entries = append(entries, rankcache.Entry{ParticipantID: row.ParticipantID, Score: row.Score})
	}

	// Projections landing between the mark and the swap are kept by the cache.
	if err := s.cache.Replace(ctx, entries, mark); err != nil {
		return countResult{}, fmt.Errorf("failed to replace rank cache: %w", err)
	}
	if err := s.cache.Forget(ctx, readAt.Add(-s.cfg.TombstoneTTL)); err != nil {
		s.logger.WarnContext(ctx, "Failed to forget removed participants",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
	}

	n, err := s.cache.Len(ctx)
	if err != nil {
		return countResult{}, fmt.Errorf("failed to count rank cache: %w", err)
	}

	s.logger.InfoContext(ctx, "Rank cache rebuilt from ledger",
		attr.ExtractCorrelationID(ctx),
		slog.Int64("entries", n),
	)
	s.trigger()
	return results.SuccessResult[int, error](int(n)), nil
}

// ReevaluateBadges grants every covered badge a participant is missing. A nil
// id re-evaluates everyone. It returns the number of badges newly granted.
func (s *LeaderboardService) ReevaluateBadges(ctx context.Context, participantID *uuid.UUID) (int, error) {
	identifier := "all"
	if participantID != nil {
		identifier = participantID.String()
	}
	result, err := withTelemetry(s, ctx, "ReevaluateBadges", identifier, func(ctx context.Context) (countResult, error) {
		return s.reevaluateLogic(ctx, participantID)
	})
	return unwrap(result, err)
}

func (s *LeaderboardService) reevaluateLogic(ctx context.Context, participantID *uuid.UUID) (countResult, error) {
	catalog, err := s.catalog.ListBadges(ctx)
	if err != nil {
		return countResult{}, fmt.Errorf("failed to read badge catalog: %w", err)
	}

	var granted int
	if participantID != nil {
		entry, err := s.ledger.LoadParticipant(ctx, nil, *participantID)
		if err != nil {
			if errors.Is(err, leaderboarddb.ErrNotFound) {
				return results.FailureResult[int, error](ErrParticipantNotFound), nil
			}
			return countResult{}, fmt.Errorf("failed to load participant: %w", err)
		}
		granted, err = s.grantMissing(ctx, entry.ID, entry.Score, entry.BadgeIDs, catalog)
		if err != nil {
			return countResult{}, err
		}
	} else {
		scores, err := s.ledger.ListScores(ctx, nil)
		if err != nil {
			return countResult{}, fmt.Errorf("failed to list scores: %w", err)
		}
		owned, err := s.ledger.ListOwnedBadges(ctx, nil)
		if err != nil {
			return countResult{}, fmt.Errorf("failed to list owned badges: %w", err)
		}
		for _, row := range scores {
			n, err := s.grantMissing(ctx, row.ParticipantID, row.Score, owned[row.ParticipantID], catalog)
			if err != nil {
				return countResult{}, err
			}
			granted += n
		}
	}

	if granted > 0 {
		if s.metrics != nil {
			s.metrics.RecordBadgesGranted(ctx, granted)
		}
		s.trigger()
	}
	return results.SuccessResult[int, error](granted), nil
}

// grantMissing persists the covered badges the participant does not own yet.
// Unlike the award path, write failures are returned so the job is retried.
func (s *LeaderboardService) grantMissing(ctx context.Context, participantID uuid.UUID, score int64, owned []uuid.UUID, catalog []badgedomain.Badge) (int, error) {
	var granted int
	for _, badgeID := range badgedomain.Evaluate(score, owned, catalog) {
		inserted, err := s.ledger.AddBadge(ctx, nil, participantID, badgeID)
		if err != nil {
			return granted, fmt.Errorf("failed to add badge %s: %w", badgeID, err)
		}
		if inserted {
			granted++
		}
	}
	return granted, nil
}
