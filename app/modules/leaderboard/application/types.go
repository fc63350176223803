package leaderboardservice

import (
	"time"

	"github.com/google/uuid"
)

// ReasonKind tags why points were awarded.
type ReasonKind string

const (
	ReasonFlat        ReasonKind = "flat"
	ReasonAchievement ReasonKind = "achievement"
)

// Reason describes an award. AchievementID is required for ReasonAchievement.
type Reason struct {
	Kind          ReasonKind `json:"kind"`
	AchievementID *uuid.UUID `json:"achievement_id,omitempty"`
	Note          string     `json:"note,omitempty"`
}

// AwardResult is the outcome of a committed award.
type AwardResult struct {
	ParticipantID uuid.UUID   `json:"participant_id"`
	PreviousScore int64       `json:"previous_score"`
	NewScore      int64       `json:"new_score"`
	NewBadges     []uuid.UUID `json:"new_badges"`
	Attempts      int         `json:"-"`
}

// Standing is a participant's score and 1-based rank.
type Standing struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	DisplayName   string    `json:"name"`
	Score         int64     `json:"score"`
	Rank          int64     `json:"rank"`
}

// RankedParticipant is one row of the leaderboard.
type RankedParticipant struct {
	Rank          int64     `json:"rank"`
	ParticipantID uuid.UUID `json:"participant_id"`
	DisplayName   string    `json:"name"`
	Score         int64     `json:"score"`
}

// UnknownDisplayName is shown for ranked ids whose name could not be found.
const UnknownDisplayName = "Unknown"

// Config tunes the coordinator.
type Config struct {
	MaxCASAttempts int
	TopK           int
	// TombstoneTTL bounds how long the rank cache keeps refusing writes for
	// a removed participant. Marks are cleared by the periodic rebuild.
	TombstoneTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxCASAttempts <= 0 {
		c.MaxCASAttempts = 8
	}
	if c.TopK <= 0 {
		c.TopK = 10
	}
	if c.TombstoneTTL <= 0 {
		c.TombstoneTTL = 10 * time.Minute
	}
	return c
}
