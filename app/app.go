// Package app wires every module into one process: storage, rank cache,
// event bus, job queue and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ChuloWay/gamification-system/app/modules/achievement"
	authhandlers "github.com/ChuloWay/gamification-system/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/ChuloWay/gamification-system/app/modules/auth/infrastructure/jwt"
	"github.com/ChuloWay/gamification-system/app/modules/badge"
	"github.com/ChuloWay/gamification-system/app/modules/leaderboard"
	"github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/rankcache"
	"github.com/ChuloWay/gamification-system/app/modules/participant"
	"github.com/ChuloWay/gamification-system/config"
	"github.com/ChuloWay/gamification-system/internal/db/bundb"
	"github.com/ChuloWay/gamification-system/internal/eventbus"
	"github.com/ChuloWay/gamification-system/internal/httpjson"
	"github.com/ChuloWay/gamification-system/internal/observability"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// App holds the process-wide collaborators.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	Router        *chi.Mux
	Server        *http.Server

	BadgeModule       *badge.Module
	LeaderboardModule *leaderboard.Module
	ParticipantModule *participant.Module
	AchievementModule *achievement.Module

	cache rankcache.Cache
	redis *redis.Client
	bus   *eventbus.Bus
	wg    sync.WaitGroup
	errCh chan error
}

// New connects to the backing services and builds every module.
func New(ctx context.Context, cfg *config.Config, obs *observability.Observability) (*App, error) {
	logger := obs.Logger

	db, err := bundb.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		errCh:         make(chan error, 1),
	}

	if err := app.initCache(ctx); err != nil {
		_ = app.closeResources()
		return nil, err
	}

	if cfg.NATS.URL != "" {
		bus, err := eventbus.Connect(cfg.NATS.URL, logger)
		if err != nil {
			_ = app.closeResources()
			return nil, fmt.Errorf("failed to connect event bus: %w", err)
		}
		app.bus = bus
	} else {
		logger.InfoContext(ctx, "NATS URL not set, event bus disabled")
	}

	tokens := authjwt.NewProvider(cfg.JWT.Secret)
	requireAuth := authhandlers.AuthMiddleware(tokens)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		authhandlers.CORSMiddleware(cfg.HTTP.AllowedOrigins),
		authhandlers.RateLimitMiddleware(authhandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)),
	)
	router.Get("/healthz", app.handleHealth)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))
	app.Router = router

	app.BadgeModule = badge.NewModule(ctx, obs, db, router, requireAuth)

	app.LeaderboardModule, err = leaderboard.NewLeaderboardModule(ctx, cfg, obs, leaderboard.Deps{
		DB:          db,
		Cache:       app.cache,
		Catalog:     app.BadgeModule.Service,
		Bus:         app.bus,
		HTTPRouter:  router,
		RequireAuth: requireAuth,
	})
	if err != nil {
		_ = app.closeResources()
		return nil, fmt.Errorf("failed to initialize leaderboard module: %w", err)
	}

	app.ParticipantModule = participant.NewModule(ctx, cfg, obs, db, app.LeaderboardModule.Service, tokens, router, requireAuth)
	app.AchievementModule = achievement.NewModule(ctx, obs, db, app.LeaderboardModule.Service, router, requireAuth)

	app.Server = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.InfoContext(ctx, "Application initialized",
		slog.String("http_address", cfg.HTTP.Address),
		slog.Bool("event_bus", app.bus != nil),
		slog.Bool("queue", app.LeaderboardModule.Queue != nil),
	)
	return app, nil
}

// initCache picks the Redis rank cache when an address is configured and the
// in-process index otherwise.
func (app *App) initCache(ctx context.Context) error {
	redisCfg := app.Config.Redis
	if redisCfg.Address == "" {
		app.cache = rankcache.NewMemory()
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Address,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.redis = client
	app.cache = rankcache.NewRedis(client, redisCfg.Key)
	return nil
}

// Start seeds the rank cache from the ledger, then starts the leaderboard
// module and the HTTP server. It returns once everything is running.
func (app *App) Start(ctx context.Context) error {
	logger := app.Observability.Logger

	entries, err := app.LeaderboardModule.Service.RebuildRankCache(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed rank cache: %w", err)
	}
	logger.InfoContext(ctx, "Rank cache seeded", slog.Int("entries", entries))

	app.wg.Add(1)
	go app.LeaderboardModule.Run(ctx, &app.wg)

	go func() {
		logger.Info("HTTP server listening", slog.String("address", app.Server.Addr))
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", attr.Error(err))
			app.errCh <- err
		}
	}()
	return nil
}

// Errors reports fatal failures of background servers.
func (app *App) Errors() <-chan error {
	return app.errCh
}

// Stop drains HTTP traffic, stops the modules and closes the connections.
func (app *App) Stop(ctx context.Context) error {
	logger := app.Observability.Logger
	logger.Info("Stopping application")

	var errs []error
	if err := app.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down HTTP server: %w", err))
	}

	if err := app.LeaderboardModule.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close leaderboard module: %w", err))
	}

	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("timed out waiting for modules: %w", ctx.Err()))
	}

	errs = append(errs, app.closeResources())
	return errors.Join(errs...)
}

func (app *App) closeResources() error {
	var errs []error
	if app.bus != nil {
		if err := app.bus.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: map[string]string{"database": "ok"}}
	if err := app.DB.PingContext(ctx); err != nil {
		resp.Status = "degraded"
		resp.Checks["database"] = err.Error()
	}
	if app.LeaderboardModule != nil && app.LeaderboardModule.Queue != nil {
		resp.Checks["queue"] = "ok"
		if err := app.LeaderboardModule.Queue.HealthCheck(ctx); err != nil {
			resp.Status = "degraded"
			resp.Checks["queue"] = err.Error()
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	httpjson.Write(w, status, resp)
}
