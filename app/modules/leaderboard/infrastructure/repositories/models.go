package leaderboarddb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ParticipantScore is the ledger's view of the participants table: identity,
// display name and the authoritative score.
type ParticipantScore struct {
	bun.BaseModel `bun:"table:participants,alias:p"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name"`
	Score     int64     `bun:"score,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// ParticipantBadge records a badge owned by a participant.
type ParticipantBadge struct {
	bun.BaseModel `bun:"table:participant_badges,alias:pb"`

	ParticipantID uuid.UUID `bun:"participant_id,pk,type:uuid"`
	BadgeID       uuid.UUID `bun:"badge_id,pk,type:uuid"`
	EarnedAt      time.Time `bun:"earned_at,notnull"`
}

// ParticipantAchievement records an achievement granted to a participant and
// the points it was worth at the time.
type ParticipantAchievement struct {
	bun.BaseModel `bun:"table:participant_achievements,alias:pa"`

	ParticipantID uuid.UUID `bun:"participant_id,pk,type:uuid"`
	AchievementID uuid.UUID `bun:"achievement_id,pk,type:uuid"`
	Points        int64     `bun:"points,notnull"`
	GrantedAt     time.Time `bun:"granted_at,notnull"`
}

// LedgerEntry is a participant's authoritative state.
type LedgerEntry struct {
	ID             uuid.UUID
	Name           string
	Score          int64
	UpdatedAt      time.Time
	BadgeIDs       []uuid.UUID
	AchievementIDs []uuid.UUID
}

// ScoreEntry is one row of the rebuild source.
type ScoreEntry struct {
	ParticipantID uuid.UUID `bun:"id"`
	Score         int64     `bun:"score"`
}
