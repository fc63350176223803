package leaderboardqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	leaderboardhandlers "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/handlers"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/ChuloWay/gamification-system/internal/observability/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// QueueService schedules leaderboard maintenance jobs.
type QueueService interface {
	EnqueueReconcile(ctx context.Context) error
	EnqueueBadgeReevaluation(ctx context.Context, participantID uuid.UUID) error
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var (
	_ QueueService                           = (*Service)(nil)
	_ leaderboardservice.BadgeRetryScheduler = (*Service)(nil)
	_ leaderboardhandlers.ReconcileScheduler = (*Service)(nil)
)

// Config tunes the queue.
type Config struct {
	MaxWorkers int
	// ReconcileInterval schedules a periodic rank cache rebuild. Zero disables it.
	ReconcileInterval time.Duration
}

// Service runs leaderboard jobs on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics metrics.OperationMetrics
}

// NewService creates a River client on its own pgx pool and registers the
// leaderboard workers.
func NewService(ctx context.Context, dsn string, reconciler Reconciler, logger *slog.Logger, metrics metrics.OperationMetrics, cfg Config) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctxLogger := logger.With(
		slog.String("component", "river_queue"),
		slog.String("queue", QueueName),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	// River requires pgx, not database/sql
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewReconcileLeaderboardWorker(reconciler, ctxLogger))
	river.AddWorker(workers, NewReevaluateBadgesWorker(reconciler, ctxLogger))

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: maxWorkers},
		},
		Workers:      workers,
		PeriodicJobs: periodicJobs(cfg.ReconcileInterval),
		Logger:       ctxLogger,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))
	ctxLogger.Info("Leaderboard queue service initialized")

	return &Service{
		client:  client,
		pool:    pool,
		logger:  ctxLogger,
		metrics: metrics,
	}, nil
}

func periodicJobs(interval time.Duration) []*river.PeriodicJob {
	if interval <= 0 {
		return nil
	}
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(interval),
			func() (river.JobArgs, *river.InsertOpts) {
				return ReconcileLeaderboardJob{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}
}

// Start starts working jobs.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting leaderboard queue service")
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	return nil
}

// Stop waits for running jobs and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping leaderboard queue service")
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	return nil
}

// EnqueueReconcile schedules a rank cache rebuild unless one is pending.
func (s *Service) EnqueueReconcile(ctx context.Context) error {
	return s.insert(ctx, "enqueue_reconcile", ReconcileLeaderboardJob{})
}

// EnqueueBadgeReevaluation schedules a badge pass for one participant.
func (s *Service) EnqueueBadgeReevaluation(ctx context.Context, participantID uuid.UUID) error {
	return s.insert(ctx, "enqueue_badge_reevaluation", ReevaluateBadgesJob{ParticipantID: &participantID})
}

func (s *Service) insert(ctx context.Context, operation string, args river.JobArgs) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, "river")

	result, err := s.client.Insert(ctx, args, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert job",
			attr.ExtractCorrelationID(ctx),
			slog.String("kind", args.Kind()),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, operation, "river")
		return fmt.Errorf("failed to insert %s job: %w", args.Kind(), err)
	}

	s.metrics.RecordOperationSuccess(ctx, operation, "river")
	s.metrics.RecordOperationDuration(ctx, operation, "river", time.Since(start))
	s.logger.InfoContext(ctx, "Job enqueued",
		attr.ExtractCorrelationID(ctx),
		slog.String("kind", args.Kind()),
		slog.Int64("job_id", result.Job.ID),
		slog.Bool("duplicate", result.UniqueSkippedAsDuplicate),
	)
	return nil
}

// HealthCheck pings the queue's database pool.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
