package achievementhandlers

import (
	"context"

	achievementservice "github.com/ChuloWay/gamification-system/app/modules/achievement/application"
	achievementdb "github.com/ChuloWay/gamification-system/app/modules/achievement/infrastructure/repositories"
	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	"github.com/google/uuid"
)

// ------------------------
// Fake Achievement Service
// ------------------------

type FakeService struct {
	CreateAchievementFunc func(ctx context.Context, input achievementservice.AchievementInput) (*achievementdb.Achievement, error)
	GetAchievementFunc    func(ctx context.Context, id uuid.UUID) (*achievementdb.Achievement, error)
	ListAchievementsFunc  func(ctx context.Context) ([]achievementdb.Achievement, error)
	UpdateAchievementFunc func(ctx context.Context, id uuid.UUID, input achievementservice.DetailsInput) (*achievementdb.Achievement, error)
	DeleteAchievementFunc func(ctx context.Context, id uuid.UUID) error
	GrantAchievementFunc  func(ctx context.Context, achievementID, participantID uuid.UUID) (*leaderboardservice.AwardResult, error)
}

func (f *FakeService) CreateAchievement(ctx context.Context, input achievementservice.AchievementInput) (*achievementdb.Achievement, error) {
	if f.CreateAchievementFunc != nil {
		return f.CreateAchievementFunc(ctx, input)
	}
	return nil, achievementservice.ErrInvalidInput
}

func (f *FakeService) GetAchievement(ctx context.Context, id uuid.UUID) (*achievementdb.Achievement, error) {
	if f.GetAchievementFunc != nil {
		return f.GetAchievementFunc(ctx, id)
	}
	return nil, achievementservice.ErrNotFound
}

func (f *FakeService) ListAchievements(ctx context.Context) ([]achievementdb.Achievement, error) {
	if f.ListAchievementsFunc != nil {
		return f.ListAchievementsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) UpdateAchievement(ctx context.Context, id uuid.UUID, input achievementservice.DetailsInput) (*achievementdb.Achievement, error) {
	if f.UpdateAchievementFunc != nil {
		return f.UpdateAchievementFunc(ctx, id, input)
	}
	return nil, achievementservice.ErrNotFound
}

func (f *FakeService) DeleteAchievement(ctx context.Context, id uuid.UUID) error {
	if f.DeleteAchievementFunc != nil {
		return f.DeleteAchievementFunc(ctx, id)
	}
	return achievementservice.ErrNotFound
}

func (f *FakeService) GrantAchievement(ctx context.Context, achievementID, participantID uuid.UUID) (*leaderboardservice.AwardResult, error) {
	if f.GrantAchievementFunc != nil {
		return f.GrantAchievementFunc(ctx, achievementID, participantID)
	}
	return nil, achievementservice.ErrNotFound
}

var _ achievementservice.Service = (*FakeService)(nil)
