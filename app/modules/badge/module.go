package badge

import (
	"context"
	"net/http"

	badgeservice "github.com/ChuloWay/gamification-system/app/modules/badge/application"
	badgehandlers "github.com/ChuloWay/gamification-system/app/modules/badge/infrastructure/handlers"
	badgedb "github.com/ChuloWay/gamification-system/app/modules/badge/infrastructure/repositories"
	"github.com/ChuloWay/gamification-system/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the badge catalog module.
type Module struct {
	Service  *badgeservice.BadgeService
	Handlers *badgehandlers.BadgeHandlers
}

// NewModule wires the badge repository, service and HTTP routes.
func NewModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	httpRouter chi.Router,
	requireAuth func(http.Handler) http.Handler,
) *Module {
	obs.Logger.InfoContext(ctx, "Initializing badge module")

	service := badgeservice.NewBadgeService(badgedb.NewRepository(db), obs.Logger, obs.Metrics, obs.Tracer, db)
	handlers := badgehandlers.NewBadgeHandlers(service, obs.Logger, obs.Tracer)

	if httpRouter != nil {
		badgehandlers.Routes(httpRouter, handlers, requireAuth)
	}

	return &Module{Service: service, Handlers: handlers}
}
