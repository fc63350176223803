package leaderboardhandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	"github.com/ChuloWay/gamification-system/internal/httpjson"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const maxLeaderboardLimit = 100

// LeaderboardHTTPHandlers serves rank queries over HTTP.
type LeaderboardHTTPHandlers struct {
	service   leaderboardservice.Service
	scheduler ReconcileScheduler
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewLeaderboardHTTPHandlers creates the HTTP handlers. A nil scheduler makes
// reconcile requests rebuild the cache inline.
func NewLeaderboardHTTPHandlers(service leaderboardservice.Service, scheduler ReconcileScheduler, logger *slog.Logger, tracer trace.Tracer) *LeaderboardHTTPHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardHTTPHandlers{service: service, scheduler: scheduler, logger: logger, tracer: tracer}
}

// Routes mounts the leaderboard endpoints.
func Routes(r chi.Router, h HTTPHandlers, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/leaderboard", func(r chi.Router) {
		r.Get("/", h.HandleLeaderboard)
		r.Get("/participants/{id}", h.HandleStanding)

		r.With(requireAuth).Post("/reconcile", h.HandleReconcile)
	})
}

func (h *LeaderboardHTTPHandlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "LeaderboardHandlers.HandleLeaderboard")
	defer span.End()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLeaderboardLimit {
			httpjson.Error(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	board, err := h.service.Leaderboard(ctx, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, board)
}

func (h *LeaderboardHTTPHandlers) HandleStanding(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "LeaderboardHandlers.HandleStanding")
	defer span.End()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid participant id")
		return
	}

	standing, err := h.service.Score(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, standing)
}

func (h *LeaderboardHTTPHandlers) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "LeaderboardHandlers.HandleReconcile")
	defer span.End()

	if h.scheduler != nil {
		if err := h.scheduler.EnqueueReconcile(ctx); err != nil {
			h.writeError(w, r, err)
			return
		}
		httpjson.Write(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
		return
	}

	n, err := h.service.RebuildRankCache(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]int{"entries": n})
}

func (h *LeaderboardHTTPHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, leaderboardservice.ErrParticipantNotFound):
		httpjson.Error(w, http.StatusNotFound, leaderboardservice.ErrParticipantNotFound.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Leaderboard request failed", attr.ExtractCorrelationID(r.Context()), attr.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

var _ HTTPHandlers = (*LeaderboardHTTPHandlers)(nil)
