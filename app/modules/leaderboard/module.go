package leaderboard

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	"github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/fanout"
	leaderboardhandlers "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/handlers"
	leaderboardpublisher "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/publisher"
	leaderboardqueue "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/queue"
	"github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/rankcache"
	leaderboarddb "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/repositories"
	leaderboardrouter "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/router"
	leaderboardws "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/websocket"
	"github.com/ChuloWay/gamification-system/config"
	"github.com/ChuloWay/gamification-system/internal/eventbus"
	"github.com/ChuloWay/gamification-system/internal/observability"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/ChuloWay/gamification-system/internal/observability/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the leaderboard module.
type Module struct {
	Service     *leaderboardservice.LeaderboardService
	Broadcaster *fanout.Broadcaster
	Queue       *leaderboardqueue.Service
	Router      *leaderboardrouter.LeaderboardRouter

	bus           *eventbus.Bus
	messageRouter *message.Router
	observability *observability.Observability

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	closed     bool
}

// Deps are the collaborators the leaderboard module is built from. Bus is
// optional; without it the module serves HTTP and websocket traffic only.
type Deps struct {
	DB          *bun.DB
	Cache       rankcache.Cache
	Catalog     leaderboardservice.BadgeCatalog
	Bus         *eventbus.Bus
	HTTPRouter  chi.Router
	RequireAuth func(http.Handler) http.Handler
}

// NewLeaderboardModule creates a new instance of the Leaderboard module.
func NewLeaderboardModule(ctx context.Context, cfg *config.Config, obs *observability.Observability, deps Deps) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing leaderboard module")

	leaderboardMetrics := metrics.NewLeaderboardMetrics(obs.Registry, cfg.Observability.MetricsNamespace, obs.Metrics)
	fanoutMetrics := metrics.NewFanoutMetrics(obs.Registry, cfg.Observability.MetricsNamespace)

	service := leaderboardservice.NewLeaderboardService(
		leaderboarddb.NewRepository(deps.DB),
		deps.Cache,
		deps.Catalog,
		logger,
		leaderboardMetrics,
		obs.Tracer,
		deps.DB,
		leaderboardservice.Config{
			MaxCASAttempts: cfg.Leaderboard.MaxCASAttempts,
			TopK:           cfg.Leaderboard.TopK,
		},
	)

	broadcaster := fanout.NewBroadcaster(
		SnapshotSource(service, cfg.Leaderboard.TopK),
		logger,
		fanoutMetrics,
		fanout.WithQueueSize(cfg.Leaderboard.ObserverQueueSize),
		fanout.WithCoalesceWindow(cfg.Leaderboard.CoalesceWindow),
	)
	service.SetNotifier(broadcaster)

	module := &Module{
		Service:       service,
		Broadcaster:   broadcaster,
		bus:           deps.Bus,
		observability: obs,
	}

	var scheduler leaderboardhandlers.ReconcileScheduler
	if cfg.Queue.Enabled {
		queue, err := leaderboardqueue.NewService(ctx, cfg.Postgres.DSN, service, logger, obs.Metrics, leaderboardqueue.Config{
			MaxWorkers:        cfg.Queue.MaxWorkers,
			ReconcileInterval: cfg.Leaderboard.ReconcileInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create leaderboard queue: %w", err)
		}
		service.SetBadgeRetryScheduler(queue)
		module.Queue = queue
		scheduler = queue
	}

	if deps.HTTPRouter != nil {
		httpHandlers := leaderboardhandlers.NewLeaderboardHTTPHandlers(service, scheduler, logger, obs.Tracer)
		leaderboardhandlers.Routes(deps.HTTPRouter, httpHandlers, deps.RequireAuth)
		leaderboardws.Routes(deps.HTTPRouter, leaderboardws.NewHandler(broadcaster, logger, cfg.HTTP.AllowedOrigins))
	}

	if deps.Bus != nil {
		messageRouter, err := message.NewRouter(message.RouterConfig{}, deps.Bus.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create message router: %w", err)
		}
		router := leaderboardrouter.NewLeaderboardRouter(logger, messageRouter, deps.Bus.Subscriber, deps.Bus.Publisher, obs.Tracer, obs.Registry)
		handlers := leaderboardhandlers.NewLeaderboardHandlers(service, logger, obs.Tracer)
		if err := router.Configure(ctx, handlers); err != nil {
			return nil, fmt.Errorf("failed to configure leaderboard router: %w", err)
		}
		module.Router = router
		module.messageRouter = messageRouter
	}

	return module, nil
}

// SnapshotSource builds broadcaster snapshots from the leaderboard query.
func SnapshotSource(service leaderboardservice.Service, k int) fanout.SnapshotSource {
	return func(ctx context.Context) ([]fanout.Entry, error) {
		board, err := service.Leaderboard(ctx, k)
		if err != nil {
			return nil, err
		}
		entries := make([]fanout.Entry, len(board))
		for i, row := range board {
			entries[i] = fanout.Entry{
				ParticipantID: row.ParticipantID,
				DisplayName:   row.DisplayName,
				Score:         row.Score,
			}
		}
		return entries, nil
	}
}

// Run starts the queue, the bus router and the broadcaster, and blocks until
// ctx is cancelled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting leaderboard module")

	if wg != nil {
		defer wg.Done()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		logger.InfoContext(ctx, "Leaderboard module closed before start")
		return
	}
	m.cancelFunc = cancel
	m.mu.Unlock()

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Leaderboard queue failed to start", attr.Error(err))
		}
	}

	if m.messageRouter != nil {
		go func() {
			if err := m.messageRouter.Run(ctx); err != nil {
				logger.ErrorContext(ctx, "Leaderboard message router stopped", attr.Error(err))
			}
		}()

		sink := leaderboardpublisher.NewSink(m.bus.Publisher, logger)
		if err := m.Broadcaster.Connect(ctx, leaderboardpublisher.ObserverID, sink); err != nil {
			logger.ErrorContext(ctx, "Failed to connect bus observer", attr.Error(err))
		}
	}

	if err := m.Broadcaster.Run(ctx); err != nil {
		logger.ErrorContext(ctx, "Leaderboard broadcaster stopped", attr.Error(err))
	}
	logger.Info("Leaderboard module goroutine stopped")
}

// Close stops the leaderboard module and cleans up resources.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping leaderboard module")

	m.mu.Lock()
	m.closed = true
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.mu.Unlock()

	if m.Router != nil {
		if err := m.Router.Close(); err != nil {
			logger.Error("Failed to close leaderboard router", attr.Error(err))
		}
	}

	if m.Queue != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.Queue.Stop(stopCtx); err != nil {
			return err
		}
	}

	logger.Info("Leaderboard module stopped")
	return nil
}
