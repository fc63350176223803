package leaderboardservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/rankcache"
	leaderboarddb "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/repositories"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/ChuloWay/gamification-system/internal/observability/metrics"
	"github.com/ChuloWay/gamification-system/internal/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "LeaderboardService"

// LeaderboardService coordinates score writes across the ledger, the rank
// cache, badge evaluation and broadcast.
type LeaderboardService struct {
	ledger  leaderboarddb.Repository
	cache   rankcache.Cache
	catalog BadgeCatalog
	logger  *slog.Logger
	metrics metrics.LeaderboardMetrics
	tracer  trace.Tracer
	db      *bun.DB
	cfg     Config

	notifier Notifier
	retries  BadgeRetryScheduler
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(
	ledger leaderboarddb.Repository,
	cache rankcache.Cache,
	catalog BadgeCatalog,
	logger *slog.Logger,
	metrics metrics.LeaderboardMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	cfg Config,
) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardService{
		ledger:  ledger,
		cache:   cache,
		catalog: catalog,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		cfg:     cfg.withDefaults(),
	}
}

// SetNotifier sets the broadcaster told about ranking changes.
// It must be called before the service handles traffic.
func (s *LeaderboardService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetBadgeRetryScheduler sets the queue used when badge writes fail.
// It must be called before the service handles traffic.
func (s *LeaderboardService) SetBadgeRetryScheduler(r BadgeRetryScheduler) {
	s.retries = r
}

func (s *LeaderboardService) trigger() {
	if s.notifier != nil {
		s.notifier.Trigger()
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *LeaderboardService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), slog.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				slog.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("failure_payload", *result.Failure),
		)
	} else {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *LeaderboardService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// unwrap converts an operation result into the (value, error) pair returned to callers.
func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	return *result.Success, nil
}
