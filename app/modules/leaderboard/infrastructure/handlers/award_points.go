package leaderboardhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
)

// HandleAwardPointsRequested credits points from a bus request. Rejections
// are answered with a failure event; infrastructure errors are returned so
// the message is redelivered.
func (h *LeaderboardHandlers) HandleAwardPointsRequested(ctx context.Context, payload *AwardPointsRequestedPayloadV1) ([]Result, error) {
	h.logger.InfoContext(ctx, "Received AwardPointsRequested event",
		attr.ExtractCorrelationID(ctx),
		attr.ParticipantID(payload.ParticipantID),
		slog.Int64("points", payload.Points),
	)

	reason := leaderboardservice.Reason{Kind: leaderboardservice.ReasonFlat, Note: payload.Reason}
	if payload.AchievementID != nil {
		reason.Kind = leaderboardservice.ReasonAchievement
		reason.AchievementID = payload.AchievementID
	}

	result, err := h.service.AwardPoints(ctx, payload.ParticipantID, payload.Points, reason)
	if err != nil {
		if isRejection(err) {
			h.logger.WarnContext(ctx, "Award rejected",
				attr.ExtractCorrelationID(ctx),
				attr.ParticipantID(payload.ParticipantID),
				attr.Error(err),
			)
			return []Result{{
				Topic: PointsAwardFailedV1,
				Payload: &PointsAwardFailedPayloadV1{
					ParticipantID: payload.ParticipantID,
					Points:        payload.Points,
					AchievementID: payload.AchievementID,
					Reason:        err.Error(),
				},
			}}, nil
		}
		return nil, fmt.Errorf("failed to award points: %w", err)
	}

	return []Result{{
		Topic: PointsAwardedV1,
		Payload: &PointsAwardedPayloadV1{
			ParticipantID: result.ParticipantID,
			Points:        payload.Points,
			PreviousScore: result.PreviousScore,
			NewScore:      result.NewScore,
			NewBadges:     result.NewBadges,
		},
	}}, nil
}

// isRejection reports errors that redelivery cannot fix.
func isRejection(err error) bool {
	return errors.Is(err, leaderboardservice.ErrParticipantNotFound) ||
		errors.Is(err, leaderboardservice.ErrAlreadyGranted) ||
		errors.Is(err, leaderboardservice.ErrNegativeDelta) ||
		errors.Is(err, leaderboardservice.ErrInvalidReason)
}
