package leaderboardhandlers

import (
	"log/slog"

	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	"go.opentelemetry.io/otel/trace"
)

// LeaderboardHandlers handles leaderboard events.
type LeaderboardHandlers struct {
	service leaderboardservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewLeaderboardHandlers creates a new instance of LeaderboardHandlers.
func NewLeaderboardHandlers(service leaderboardservice.Service, logger *slog.Logger, tracer trace.Tracer) *LeaderboardHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

var _ Handlers = (*LeaderboardHandlers)(nil)
