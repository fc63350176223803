package leaderboardqueue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Reconciler is the part of the leaderboard service the workers drive.
type Reconciler interface {
	RebuildRankCache(ctx context.Context) (int, error)
	ReevaluateBadges(ctx context.Context, participantID *uuid.UUID) (int, error)
}

// ReconcileLeaderboardWorker rebuilds the rank cache and then sweeps every
// participant for missing badges.
type ReconcileLeaderboardWorker struct {
	river.WorkerDefaults[ReconcileLeaderboardJob]
	reconciler Reconciler
	logger     *slog.Logger
}

func NewReconcileLeaderboardWorker(reconciler Reconciler, logger *slog.Logger) *ReconcileLeaderboardWorker {
	return &ReconcileLeaderboardWorker{reconciler: reconciler, logger: logger}
}

func (w *ReconcileLeaderboardWorker) Timeout(*river.Job[ReconcileLeaderboardJob]) time.Duration {
	return 2 * time.Minute
}

func (w *ReconcileLeaderboardWorker) Work(ctx context.Context, job *river.Job[ReconcileLeaderboardJob]) error {
	n, err := w.reconciler.RebuildRankCache(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Rank cache rebuild failed",
			slog.Int64("job_id", job.ID),
			slog.Int("attempt", job.Attempt),
			attr.Error(err),
		)
		return err
	}
	w.logger.InfoContext(ctx, "Rank cache rebuilt", slog.Int64("job_id", job.ID), slog.Int("entries", n))

	granted, err := w.reconciler.ReevaluateBadges(ctx, nil)
	if err != nil {
		w.logger.ErrorContext(ctx, "Badge sweep failed", slog.Int64("job_id", job.ID), attr.Error(err))
		return err
	}
	if granted > 0 {
		w.logger.InfoContext(ctx, "Badge sweep granted missing badges", slog.Int64("job_id", job.ID), slog.Int("granted", granted))
	}
	return nil
}

// ReevaluateBadgesWorker runs ReevaluateBadgesJob.
type ReevaluateBadgesWorker struct {
	river.WorkerDefaults[ReevaluateBadgesJob]
	reconciler Reconciler
	logger     *slog.Logger
}

func NewReevaluateBadgesWorker(reconciler Reconciler, logger *slog.Logger) *ReevaluateBadgesWorker {
	return &ReevaluateBadgesWorker{reconciler: reconciler, logger: logger}
}

func (w *ReevaluateBadgesWorker) Work(ctx context.Context, job *river.Job[ReevaluateBadgesJob]) error {
	logger := w.logger.With(slog.Int64("job_id", job.ID))
	if job.Args.ParticipantID != nil {
		logger = logger.With(attr.ParticipantID(*job.Args.ParticipantID))
	}

	granted, err := w.reconciler.ReevaluateBadges(ctx, job.Args.ParticipantID)
	if err != nil {
		// A removed participant will never have badges to grant.
		if errors.Is(err, leaderboardservice.ErrParticipantNotFound) {
			logger.WarnContext(ctx, "Badge reevaluation cancelled", attr.Error(err))
			return river.JobCancel(err)
		}
		logger.ErrorContext(ctx, "Badge reevaluation failed", slog.Int("attempt", job.Attempt), attr.Error(err))
		return err
	}
	logger.InfoContext(ctx, "Badge reevaluation completed", slog.Int("granted", granted))
	return nil
}
