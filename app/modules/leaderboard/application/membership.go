package leaderboardservice

import (
	"context"

	"github.com/ChuloWay/gamification-system/internal/results"
	"github.com/google/uuid"
)

type emptyResult = results.OperationResult[struct{}, error]

// TrackParticipant projects a newly created participant into the rank cache.
func (s *LeaderboardService) TrackParticipant(ctx context.Context, participantID uuid.UUID, score int64) error {
	result, err := withTelemetry(s, ctx, "TrackParticipant", participantID.String(), func(ctx context.Context) (emptyResult, error) {
		if err := s.cache.Upsert(ctx, participantID, score); err != nil {
			s.recordDesync(ctx, "TrackParticipant", participantID, err)
		}
		s.trigger()
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	_, err = unwrap(result, err)
	return err
}

// RemoveParticipant drops a deleted participant from the ranking. The caller
// deletes the ledger row first. The cache keeps a removal mark, so projections
// of awards that committed before the delete and land afterwards are refused
// by every replica sharing it.
func (s *LeaderboardService) RemoveParticipant(ctx context.Context, participantID uuid.UUID) error {
	result, err := withTelemetry(s, ctx, "RemoveParticipant", participantID.String(), func(ctx context.Context) (emptyResult, error) {
		if err := s.cache.Remove(ctx, participantID); err != nil {
			s.recordDesync(ctx, "RemoveParticipant", participantID, err)
		}
		s.trigger()
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	_, err = unwrap(result, err)
	return err
}
