package achievementservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	achievementdb "github.com/ChuloWay/gamification-system/app/modules/achievement/infrastructure/repositories"
	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	"github.com/ChuloWay/gamification-system/internal/observability/metrics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestService(repo *FakeAchievementRepo, awarder *FakeAwarder) *AchievementService {
	return NewAchievementService(
		repo,
		awarder,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
	)
}

func TestCreateAchievement(t *testing.T) {
	tests := []struct {
		name      string
		input     AchievementInput
		repoErr   error
		wantErr   error
		wantTrace []string
	}{
		{
			name:      "valid achievement",
			input:     AchievementInput{Name: " First Quiz ", Points: 50},
			wantTrace: []string{"Create"},
		},
		{
			name:      "zero points is allowed",
			input:     AchievementInput{Name: "Welcome"},
			wantTrace: []string{"Create"},
		},
		{
			name:      "missing name",
			input:     AchievementInput{Points: 10},
			wantErr:   ErrInvalidInput,
			wantTrace: []string{},
		},
		{
			name:      "negative points",
			input:     AchievementInput{Name: "Penalty", Points: -1},
			wantErr:   ErrInvalidInput,
			wantTrace: []string{},
		},
		{
			name:      "repository failure",
			input:     AchievementInput{Name: "Quiz", Points: 10},
			repoErr:   errors.New("connection reset"),
			wantTrace: []string{"Create"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeAchievementRepo()
			repo.CreateFunc = func(context.Context, bun.IDB, *achievementdb.Achievement) error { return tt.repoErr }
			svc := newTestService(repo, &FakeAwarder{})

			got, err := svc.CreateAchievement(context.Background(), tt.input)
			assert.Equal(t, tt.wantTrace, repo.Trace())
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.repoErr != nil:
				assert.ErrorContains(t, err, "CreateAchievement")
			default:
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, got.ID)
				assert.Equal(t, tt.input.Points, got.Points)
				assert.Equal(t, strings.TrimSpace(tt.input.Name), got.Name)
			}
		})
	}
}

func TestUpdateAchievement(t *testing.T) {
	id := uuid.New()
	repo := NewFakeAchievementRepo()
	repo.UpdateDetailsFunc = func(_ context.Context, _ bun.IDB, gotID uuid.UUID, name, description string) (*achievementdb.Achievement, error) {
		return &achievementdb.Achievement{ID: gotID, Name: name, Description: description, Points: 50}, nil
	}
	svc := newTestService(repo, &FakeAwarder{})

	got, err := svc.UpdateAchievement(context.Background(), id, DetailsInput{Name: "Renamed", Description: "new"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, int64(50), got.Points)

	_, err = svc.UpdateAchievement(context.Background(), id, DetailsInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGrantAchievement(t *testing.T) {
	achievementID := uuid.New()
	participantID := uuid.New()
	quiz := &achievementdb.Achievement{ID: achievementID, Name: "Quiz", Points: 75}

	tests := []struct {
		name       string
		found      bool
		awardErr   error
		wantErr    error
		wantCalls  int
		wantPoints int64
	}{
		{name: "grants the catalog points", found: true, wantCalls: 1, wantPoints: 75},
		{name: "unknown achievement", wantErr: ErrNotFound},
		{name: "already granted", found: true, awardErr: leaderboardservice.ErrAlreadyGranted, wantErr: leaderboardservice.ErrAlreadyGranted, wantCalls: 1},
		{name: "unknown participant", found: true, awardErr: leaderboardservice.ErrParticipantNotFound, wantErr: leaderboardservice.ErrParticipantNotFound, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeAchievementRepo()
			if tt.found {
				repo.GetByIDFunc = func(context.Context, bun.IDB, uuid.UUID) (*achievementdb.Achievement, error) {
					return quiz, nil
				}
			}
			var gotPoints int64
			awarder := &FakeAwarder{AwardAchievementFunc: func(_ context.Context, pid, aid uuid.UUID, points int64) (*leaderboardservice.AwardResult, error) {
				gotPoints = points
				if tt.awardErr != nil {
					return nil, tt.awardErr
				}
				return &leaderboardservice.AwardResult{ParticipantID: pid, NewScore: points}, nil
			}}
			svc := newTestService(repo, awarder)

			result, err := svc.GrantAchievement(context.Background(), achievementID, participantID)
			assert.Equal(t, tt.wantCalls, awarder.calls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPoints, gotPoints)
			assert.Equal(t, participantID, result.ParticipantID)
		})
	}
}

func TestDeleteAchievement(t *testing.T) {
	repo := NewFakeAchievementRepo()
	svc := newTestService(repo, &FakeAwarder{})

	assert.ErrorIs(t, svc.DeleteAchievement(context.Background(), uuid.New()), ErrNotFound)
	assert.Equal(t, []string{"Delete"}, repo.Trace())
}
