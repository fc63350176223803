package participant

import (
	"context"
	"net/http"

	authjwt "github.com/ChuloWay/gamification-system/app/modules/auth/infrastructure/jwt"
	participantservice "github.com/ChuloWay/gamification-system/app/modules/participant/application"
	participanthandlers "github.com/ChuloWay/gamification-system/app/modules/participant/infrastructure/handlers"
	participantdb "github.com/ChuloWay/gamification-system/app/modules/participant/infrastructure/repositories"
	"github.com/ChuloWay/gamification-system/config"
	"github.com/ChuloWay/gamification-system/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Leaderboard is what the participant module needs from the score engine.
type Leaderboard interface {
	participantservice.RankTracker
	participanthandlers.PointsAwarder
}

// Module represents the participant accounts module.
type Module struct {
	Service  *participantservice.ParticipantService
	Handlers *participanthandlers.ParticipantHandlers
}

// NewModule wires the participant repository, service and HTTP routes.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	leaderboard Leaderboard,
	tokens authjwt.Provider,
	httpRouter chi.Router,
	requireAuth func(http.Handler) http.Handler,
) *Module {
	obs.Logger.InfoContext(ctx, "Initializing participant module")

	service := participantservice.NewParticipantService(
		participantdb.NewRepository(db),
		leaderboard,
		tokens,
		obs.Logger,
		obs.Metrics,
		obs.Tracer,
		db,
		participantservice.Config{TokenTTL: cfg.JWT.DefaultTTL},
	)
	handlers := participanthandlers.NewParticipantHandlers(service, leaderboard, obs.Logger, obs.Tracer)

	if httpRouter != nil {
		participanthandlers.Routes(httpRouter, handlers, requireAuth)
	}

	return &Module{Service: service, Handlers: handlers}
}
