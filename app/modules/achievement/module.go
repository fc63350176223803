package achievement

import (
	"context"
	"net/http"

	achievementservice "github.com/ChuloWay/gamification-system/app/modules/achievement/application"
	achievementhandlers "github.com/ChuloWay/gamification-system/app/modules/achievement/infrastructure/handlers"
	achievementdb "github.com/ChuloWay/gamification-system/app/modules/achievement/infrastructure/repositories"
	"github.com/ChuloWay/gamification-system/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the achievement catalog module.
type Module struct {
	Service *achievementservice.AchievementService
}

// NewModule wires the achievement repository, service and HTTP routes.
func NewModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	awarder achievementservice.AchievementAwarder,
	httpRouter chi.Router,
	requireAuth func(http.Handler) http.Handler,
) *Module {
	obs.Logger.InfoContext(ctx, "Initializing achievement module")

	service := achievementservice.NewAchievementService(
		achievementdb.NewRepository(db),
		awarder,
		obs.Logger,
		obs.Metrics,
		obs.Tracer,
	)

	if httpRouter != nil {
		achievementhandlers.Routes(httpRouter, achievementhandlers.NewAchievementHandlers(service, obs.Logger, obs.Tracer), requireAuth)
	}

	return &Module{Service: service}
}
