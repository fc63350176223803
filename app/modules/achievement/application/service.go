package achievementservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	achievementdb "github.com/ChuloWay/gamification-system/app/modules/achievement/infrastructure/repositories"
	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/ChuloWay/gamification-system/internal/observability/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "AchievementService"

// AchievementService implements the Service interface.
type AchievementService struct {
	repo    achievementdb.Repository
	awarder AchievementAwarder
	logger  *slog.Logger
	metrics metrics.OperationMetrics
	tracer  trace.Tracer
}

// NewAchievementService creates a new AchievementService.
func NewAchievementService(
	repo achievementdb.Repository,
	awarder AchievementAwarder,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
) *AchievementService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AchievementService{
		repo:    repo,
		awarder: awarder,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

// observe opens a span and records the attempt. The returned func records
// the outcome; domain errors count as successful operations.
func (s *AchievementService) observe(ctx context.Context, operation, identifier string) (context.Context, func(err *error)) {
	ctx, span := s.tracer.Start(ctx, operation, trace.WithAttributes(attribute.String("identifier", identifier)))
	s.metrics.RecordOperationAttempt(ctx, operation, serviceName)
	start := time.Now()

	return ctx, func(errp *error) {
		defer span.End()
		s.metrics.RecordOperationDuration(ctx, operation, serviceName, time.Since(start))

		err := *errp
		if err == nil || isDomainError(err) {
			s.metrics.RecordOperationSuccess(ctx, operation, serviceName)
			return
		}
		*errp = fmt.Errorf("%s: %w", operation, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			slog.String("operation", operation),
			slog.String("identifier", identifier),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, operation, serviceName)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, leaderboardservice.ErrParticipantNotFound) ||
		errors.Is(err, leaderboardservice.ErrAlreadyGranted)
}

func validateDetails(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return nil
}

// CreateAchievement validates and stores a new achievement.
func (s *AchievementService) CreateAchievement(ctx context.Context, input AchievementInput) (_ *achievementdb.Achievement, err error) {
	ctx, done := s.observe(ctx, "CreateAchievement", input.Name)
	defer done(&err)

	if err := validateDetails(input.Name); err != nil {
		return nil, err
	}
	if input.Points < 0 {
		return nil, fmt.Errorf("%w: points must not be negative", ErrInvalidInput)
	}

	achievement := &achievementdb.Achievement{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Points:      input.Points,
	}
	if err := s.repo.Create(ctx, nil, achievement); err != nil {
		return nil, err
	}
	return achievement, nil
}

// GetAchievement returns one achievement.
func (s *AchievementService) GetAchievement(ctx context.Context, id uuid.UUID) (_ *achievementdb.Achievement, err error) {
	ctx, done := s.observe(ctx, "GetAchievement", id.String())
	defer done(&err)

	return s.repo.GetByID(ctx, nil, id)
}

// ListAchievements returns the catalog.
func (s *AchievementService) ListAchievements(ctx context.Context) (_ []achievementdb.Achievement, err error) {
	ctx, done := s.observe(ctx, "ListAchievements", "catalog")
	defer done(&err)

	return s.repo.List(ctx, nil)
}

// UpdateAchievement changes the name and description.
func (s *AchievementService) UpdateAchievement(ctx context.Context, id uuid.UUID, input DetailsInput) (_ *achievementdb.Achievement, err error) {
	ctx, done := s.observe(ctx, "UpdateAchievement", id.String())
	defer done(&err)

	if err := validateDetails(input.Name); err != nil {
		return nil, err
	}
	return s.repo.UpdateDetails(ctx, nil, id, strings.TrimSpace(input.Name), input.Description)
}

// DeleteAchievement removes the catalog entry. Past grants keep their points.
func (s *AchievementService) DeleteAchievement(ctx context.Context, id uuid.UUID) (err error) {
	ctx, done := s.observe(ctx, "DeleteAchievement", id.String())
	defer done(&err)

	return s.repo.Delete(ctx, nil, id)
}

// GrantAchievement awards the achievement's points to the participant. A
// second grant of the same achievement fails with ErrAlreadyGranted.
func (s *AchievementService) GrantAchievement(ctx context.Context, achievementID, participantID uuid.UUID) (_ *leaderboardservice.AwardResult, err error) {
	ctx, done := s.observe(ctx, "GrantAchievement", achievementID.String())
	defer done(&err)

	achievement, err := s.repo.GetByID(ctx, nil, achievementID)
	if err != nil {
		return nil, err
	}

	result, err := s.awarder.AwardAchievement(ctx, participantID, achievement.ID, achievement.Points)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Achievement granted",
		attr.ExtractCorrelationID(ctx),
		attr.ParticipantID(participantID),
		slog.String("achievement_id", achievement.ID.String()),
		slog.Int64("new_score", result.NewScore),
	)
	return result, nil
}

var _ Service = (*AchievementService)(nil)
