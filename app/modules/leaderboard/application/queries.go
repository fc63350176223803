package leaderboardservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/rankcache"
	leaderboarddb "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/repositories"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/ChuloWay/gamification-system/internal/results"
	"github.com/google/uuid"
)

type standingResult = results.OperationResult[*Standing, error]

// Score returns the participant's cached score and rank. A cache miss is
// reconciled from the ledger and re-projected.
func (s *LeaderboardService) Score(ctx context.Context, participantID uuid.UUID) (*Standing, error) {
	result, err := withTelemetry(s, ctx, "Score", participantID.String(), func(ctx context.Context) (standingResult, error) {
		return s.scoreLogic(ctx, participantID)
	})
	return unwrap(result, err)
}

func (s *LeaderboardService) scoreLogic(ctx context.Context, participantID uuid.UUID) (standingResult, error) {
	standing := &Standing{ParticipantID: participantID}

	score, err := s.cache.Get(ctx, participantID)
	switch {
	case err == nil:
		standing.Score = score
		names, err := s.ledger.DisplayNames(ctx, nil, []uuid.UUID{participantID})
		if err != nil {
			return standingResult{}, fmt.Errorf("failed to load display name: %w", err)
		}
		standing.DisplayName = displayName(names, participantID)
	case errors.Is(err, rankcache.ErrMiss):
		entry, err := s.ledger.LoadParticipant(ctx, nil, participantID)
		if err != nil {
			if errors.Is(err, leaderboarddb.ErrNotFound) {
				return results.FailureResult[*Standing, error](ErrParticipantNotFound), nil
			}
			return standingResult{}, fmt.Errorf("failed to load participant: %w", err)
		}
		standing.Score = entry.Score
		standing.DisplayName = entry.Name
		if err := s.cache.Raise(ctx, participantID, entry.Score); err != nil {
			s.recordDesync(ctx, "Score", participantID, err)
		}
		s.logger.InfoContext(ctx, "Reconciled rank cache miss from ledger",
			attr.ExtractCorrelationID(ctx),
			attr.ParticipantID(participantID),
		)
	default:
		return standingResult{}, fmt.Errorf("failed to read cached score: %w", err)
	}

	rank, err := s.cache.Rank(ctx, participantID)
	if err != nil && !errors.Is(err, rankcache.ErrMiss) {
		return standingResult{}, fmt.Errorf("failed to read rank: %w", err)
	}
	standing.Rank = rank
	if standing.DisplayName == "" {
		standing.DisplayName = UnknownDisplayName
	}
	return results.SuccessResult[*Standing, error](standing), nil
}

// Leaderboard returns the top k participants. k <= 0 uses the configured default.
func (s *LeaderboardService) Leaderboard(ctx context.Context, k int) ([]RankedParticipant, error) {
	if k <= 0 {
		k = s.cfg.TopK
	}
	result, err := withTelemetry(s, ctx, "Leaderboard", strconv.Itoa(k), func(ctx context.Context) (results.OperationResult[[]RankedParticipant, error], error) {
		ranked, err := s.leaderboardLogic(ctx, k)
		if err != nil {
			return results.OperationResult[[]RankedParticipant, error]{}, err
		}
		return results.SuccessResult[[]RankedParticipant, error](ranked), nil
	})
	return unwrap(result, err)
}

func (s *LeaderboardService) leaderboardLogic(ctx context.Context, k int) ([]RankedParticipant, error) {
	visible, err := s.cache.TopK(ctx, k)
	if err != nil {
		return nil, fmt.Errorf("failed to read top entries: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(visible))
	for _, e := range visible {
		ids = append(ids, e.ParticipantID)
	}

	names, err := s.ledger.DisplayNames(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load display names: %w", err)
	}

	ranked := make([]RankedParticipant, 0, len(visible))
	for i, e := range visible {
		ranked = append(ranked, RankedParticipant{
			Rank:          int64(i + 1),
			ParticipantID: e.ParticipantID,
			DisplayName:   displayName(names, e.ParticipantID),
			Score:         e.Score,
		})
	}
	return ranked, nil
}

func displayName(names map[uuid.UUID]string, id uuid.UUID) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return UnknownDisplayName
}
