package achievementservice

import (
	"context"

	achievementdb "github.com/ChuloWay/gamification-system/app/modules/achievement/infrastructure/repositories"
	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	"github.com/google/uuid"
)

// Service manages the achievement catalog and grants.
type Service interface {
	CreateAchievement(ctx context.Context, input AchievementInput) (*achievementdb.Achievement, error)
	GetAchievement(ctx context.Context, id uuid.UUID) (*achievementdb.Achievement, error)
	ListAchievements(ctx context.Context) ([]achievementdb.Achievement, error)
	UpdateAchievement(ctx context.Context, id uuid.UUID, input DetailsInput) (*achievementdb.Achievement, error)
	DeleteAchievement(ctx context.Context, id uuid.UUID) error
	GrantAchievement(ctx context.Context, achievementID, participantID uuid.UUID) (*leaderboardservice.AwardResult, error)
}

// AchievementAwarder credits an achievement's points exactly once.
type AchievementAwarder interface {
	AwardAchievement(ctx context.Context, participantID, achievementID uuid.UUID, points int64) (*leaderboardservice.AwardResult, error)
}

// AchievementInput carries a new achievement.
type AchievementInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int64  `json:"points"`
}

// DetailsInput carries the editable fields. Points cannot change after creation.
type DetailsInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
