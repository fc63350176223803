package leaderboardhandlers

import (
	"context"
	"sync"

	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	"github.com/google/uuid"
)

// ------------------------
// Fake Leaderboard Service
// ------------------------

type FakeService struct {
	mu    sync.Mutex
	trace []string

	AwardPointsFunc       func(ctx context.Context, participantID uuid.UUID, delta int64, reason leaderboardservice.Reason) (*leaderboardservice.AwardResult, error)
	AwardAchievementFunc  func(ctx context.Context, participantID, achievementID uuid.UUID, points int64) (*leaderboardservice.AwardResult, error)
	TrackParticipantFunc  func(ctx context.Context, participantID uuid.UUID, score int64) error
	RemoveParticipantFunc func(ctx context.Context, participantID uuid.UUID) error
	ScoreFunc             func(ctx context.Context, participantID uuid.UUID) (*leaderboardservice.Standing, error)
	LeaderboardFunc       func(ctx context.Context, k int) ([]leaderboardservice.RankedParticipant, error)
	RebuildRankCacheFunc  func(ctx context.Context) (int, error)
	ReevaluateBadgesFunc  func(ctx context.Context, participantID *uuid.UUID) (int, error)
}

func NewFakeService() *FakeService {
	return &FakeService{trace: []string{}}
}

func (f *FakeService) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeService) AwardPoints(ctx context.Context, participantID uuid.UUID, delta int64, reason leaderboardservice.Reason) (*leaderboardservice.AwardResult, error) {
	f.record("AwardPoints")
	if f.AwardPointsFunc != nil {
		return f.AwardPointsFunc(ctx, participantID, delta, reason)
	}
	return nil, leaderboardservice.ErrParticipantNotFound
}

func (f *FakeService) AwardAchievement(ctx context.Context, participantID, achievementID uuid.UUID, points int64) (*leaderboardservice.AwardResult, error) {
	f.record("AwardAchievement")
	if f.AwardAchievementFunc != nil {
		return f.AwardAchievementFunc(ctx, participantID, achievementID, points)
	}
	return nil, leaderboardservice.ErrParticipantNotFound
}

func (f *FakeService) TrackParticipant(ctx context.Context, participantID uuid.UUID, score int64) error {
	f.record("TrackParticipant")
	if f.TrackParticipantFunc != nil {
		return f.TrackParticipantFunc(ctx, participantID, score)
	}
	return nil
}

func (f *FakeService) RemoveParticipant(ctx context.Context, participantID uuid.UUID) error {
	f.record("RemoveParticipant")
	if f.RemoveParticipantFunc != nil {
		return f.RemoveParticipantFunc(ctx, participantID)
	}
	return nil
}

func (f *FakeService) Score(ctx context.Context, participantID uuid.UUID) (*leaderboardservice.Standing, error) {
	f.record("Score")
	if f.ScoreFunc != nil {
		return f.ScoreFunc(ctx, participantID)
	}
	return nil, leaderboardservice.ErrParticipantNotFound
}

func (f *FakeService) Leaderboard(ctx context.Context, k int) ([]leaderboardservice.RankedParticipant, error) {
	f.record("Leaderboard")
	if f.LeaderboardFunc != nil {
		return f.LeaderboardFunc(ctx, k)
	}
	return nil, nil
}

func (f *FakeService) RebuildRankCache(ctx context.Context) (int, error) {
	f.record("RebuildRankCache")
	if f.RebuildRankCacheFunc != nil {
		return f.RebuildRankCacheFunc(ctx)
	}
	return 0, nil
}

func (f *FakeService) ReevaluateBadges(ctx context.Context, participantID *uuid.UUID) (int, error) {
	f.record("ReevaluateBadges")
	if f.ReevaluateBadgesFunc != nil {
		return f.ReevaluateBadgesFunc(ctx, participantID)
	}
	return 0, nil
}

var _ leaderboardservice.Service = (*FakeService)(nil)

// ------------------------
// Fake Reconcile Scheduler
// ------------------------

type FakeScheduler struct {
	calls int
	err   error
}

func (f *FakeScheduler) EnqueueReconcile(context.Context) error {
	f.calls++
	return f.err
}

var _ ReconcileScheduler = (*FakeScheduler)(nil)
