package achievementservice

import (
	"context"

	achievementdb "github.com/ChuloWay/gamification-system/app/modules/achievement/infrastructure/repositories"
	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Achievement Repo
// ------------------------

type FakeAchievementRepo struct {
	trace []string

	CreateFunc        func(ctx context.Context, db bun.IDB, achievement *achievementdb.Achievement) error
	GetByIDFunc       func(ctx context.Context, db bun.IDB, id uuid.UUID) (*achievementdb.Achievement, error)
	ListFunc          func(ctx context.Context, db bun.IDB) ([]achievementdb.Achievement, error)
	UpdateDetailsFunc func(ctx context.Context, db bun.IDB, id uuid.UUID, name, description string) (*achievementdb.Achievement, error)
	DeleteFunc        func(ctx context.Context, db bun.IDB, id uuid.UUID) error
}

func NewFakeAchievementRepo() *FakeAchievementRepo {
	return &FakeAchievementRepo{trace: []string{}}
}

func (f *FakeAchievementRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeAchievementRepo) Create(ctx context.Context, db bun.IDB, achievement *achievementdb.Achievement) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, achievement)
	}
	return nil
}

func (f *FakeAchievementRepo) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*achievementdb.Achievement, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, achievementdb.ErrNotFound
}

func (f *FakeAchievementRepo) List(ctx context.Context, db bun.IDB) ([]achievementdb.Achievement, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeAchievementRepo) UpdateDetails(ctx context.Context, db bun.IDB, id uuid.UUID, name, description string) (*achievementdb.Achievement, error) {
	f.record("UpdateDetails")
	if f.UpdateDetailsFunc != nil {
		return f.UpdateDetailsFunc(ctx, db, id, name, description)
	}
	return nil, achievementdb.ErrNotFound
}

func (f *FakeAchievementRepo) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, id)
	}
	return achievementdb.ErrNotFound
}

func (f *FakeAchievementRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ achievementdb.Repository = (*FakeAchievementRepo)(nil)

// ------------------------
// Fake Achievement Awarder
// ------------------------

type FakeAwarder struct {
	calls int

	AwardAchievementFunc func(ctx context.Context, participantID, achievementID uuid.UUID, points int64) (*leaderboardservice.AwardResult, error)
}

func (f *FakeAwarder) AwardAchievement(ctx context.Context, participantID, achievementID uuid.UUID, points int64) (*leaderboardservice.AwardResult, error) {
	f.calls++
	if f.AwardAchievementFunc != nil {
		return f.AwardAchievementFunc(ctx, participantID, achievementID, points)
	}
	return &leaderboardservice.AwardResult{ParticipantID: participantID, NewScore: points}, nil
}

var _ AchievementAwarder = (*FakeAwarder)(nil)
