package achievementhandlers

import (
	"errors"
	"log/slog"
	"net/http"

	achievementservice "github.com/ChuloWay/gamification-system/app/modules/achievement/application"
	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	"github.com/ChuloWay/gamification-system/internal/httpjson"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Handlers serves the achievement catalog over HTTP.
type Handlers interface {
	HandleList(w http.ResponseWriter, r *http.Request)
	HandleGet(w http.ResponseWriter, r *http.Request)
	HandleCreate(w http.ResponseWriter, r *http.Request)
	HandleUpdate(w http.ResponseWriter, r *http.Request)
	HandleDelete(w http.ResponseWriter, r *http.Request)
	HandleGrant(w http.ResponseWriter, r *http.Request)
}

// AchievementHandlers implements the Handlers interface.
type AchievementHandlers struct {
	service achievementservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewAchievementHandlers creates a new AchievementHandlers instance.
func NewAchievementHandlers(service achievementservice.Service, logger *slog.Logger, tracer trace.Tracer) *AchievementHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AchievementHandlers{service: service, logger: logger, tracer: tracer}
}

// Routes mounts the achievement endpoints. Reads are public.
func Routes(r chi.Router, h Handlers, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/achievements", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{id}", h.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.HandleCreate)
			r.Put("/{id}", h.HandleUpdate)
			r.Delete("/{id}", h.HandleDelete)
			r.Post("/{id}/grant", h.HandleGrant)
		})
	})
}

type grantRequest struct {
	ParticipantID uuid.UUID `json:"participant_id"`
}

func (h *AchievementHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AchievementHandlers.HandleList")
	defer span.End()

	achievements, err := h.service.ListAchievements(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, achievements)
}

func (h *AchievementHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AchievementHandlers.HandleGet")
	defer span.End()

	id, ok := achievementID(w, r)
	if !ok {
		return
	}

	achievement, err := h.service.GetAchievement(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, achievement)
}

func (h *AchievementHandlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AchievementHandlers.HandleCreate")
	defer span.End()

	var input achievementservice.AchievementInput
	if err := httpjson.Decode(r, &input); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	achievement, err := h.service.CreateAchievement(ctx, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, achievement)
}

func (h *AchievementHandlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AchievementHandlers.HandleUpdate")
	defer span.End()

	id, ok := achievementID(w, r)
	if !ok {
		return
	}

	var input achievementservice.DetailsInput
	if err := httpjson.Decode(r, &input); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	achievement, err := h.service.UpdateAchievement(ctx, id, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, achievement)
}

func (h *AchievementHandlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AchievementHandlers.HandleDelete")
	defer span.End()

	id, ok := achievementID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteAchievement(ctx, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AchievementHandlers) HandleGrant(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AchievementHandlers.HandleGrant")
	defer span.End()

	id, ok := achievementID(w, r)
	if !ok {
		return
	}

	var req grantRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ParticipantID == uuid.Nil {
		httpjson.Error(w, http.StatusBadRequest, "participant_id is required")
		return
	}

	result, err := h.service.GrantAchievement(ctx, id, req.ParticipantID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, result)
}

func achievementID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid achievement id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *AchievementHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, achievementservice.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "achievement not found")
	case errors.Is(err, leaderboardservice.ErrParticipantNotFound):
		httpjson.Error(w, http.StatusNotFound, "participant not found")
	case errors.Is(err, leaderboardservice.ErrAlreadyGranted):
		httpjson.Error(w, http.StatusConflict, "achievement already granted")
	case errors.Is(err, leaderboardservice.ErrConflict):
		httpjson.Error(w, http.StatusConflict, "score update conflict, retry the request")
	case errors.Is(err, achievementservice.ErrInvalidInput):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Achievement request failed", attr.ExtractCorrelationID(r.Context()), attr.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

var _ Handlers = (*AchievementHandlers)(nil)
