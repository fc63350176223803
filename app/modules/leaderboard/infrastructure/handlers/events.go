package leaderboardhandlers

import (
	"github.com/google/uuid"
)

// Topics consumed and produced by the leaderboard module.
const (
	// AwardPointsRequestedV1 asks for points to be credited to a participant.
	AwardPointsRequestedV1 = "gamification.points.award.requested.v1"
	// PointsAwardedV1 reports a committed award.
	PointsAwardedV1 = "gamification.points.awarded.v1"
	// PointsAwardFailedV1 reports an award rejected for a domain reason.
	PointsAwardFailedV1 = "gamification.points.award.failed.v1"
	// LeaderboardUpdatedV1 carries each published top-K snapshot.
	LeaderboardUpdatedV1 = "gamification.leaderboard.updated.v1"
)

// AwardPointsRequestedPayloadV1 is the inbound award request.
type AwardPointsRequestedPayloadV1 struct {
	ParticipantID uuid.UUID  `json:"participant_id"`
	Points        int64      `json:"points"`
	Reason        string     `json:"reason,omitempty"`
	AchievementID *uuid.UUID `json:"achievement_id,omitempty"`
}

// PointsAwardedPayloadV1 is emitted after the award committed.
type PointsAwardedPayloadV1 struct {
	ParticipantID uuid.UUID   `json:"participant_id"`
	Points        int64       `json:"points"`
	PreviousScore int64       `json:"previous_score"`
	NewScore      int64       `json:"new_score"`
	NewBadges     []uuid.UUID `json:"new_badges"`
}

// PointsAwardFailedPayloadV1 is emitted when the award was rejected.
type PointsAwardFailedPayloadV1 struct {
	ParticipantID uuid.UUID  `json:"participant_id"`
	Points        int64      `json:"points"`
	AchievementID *uuid.UUID `json:"achievement_id,omitempty"`
	Reason        string     `json:"reason"`
}

// Result is one outbound message produced by a handler.
type Result struct {
	Topic   string
	Payload any
}
