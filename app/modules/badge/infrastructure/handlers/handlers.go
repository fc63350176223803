package badgehandlers

import (
	"errors"
	"log/slog"
	"net/http"

	badgeservice "github.com/ChuloWay/gamification-system/app/modules/badge/application"
	badgedomain "github.com/ChuloWay/gamification-system/app/modules/badge/domain"
	badgedb "github.com/ChuloWay/gamification-system/app/modules/badge/infrastructure/repositories"
	"github.com/ChuloWay/gamification-system/internal/httpjson"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Handlers serves the badge catalog over HTTP.
type Handlers interface {
	HandleList(w http.ResponseWriter, r *http.Request)
	HandleGet(w http.ResponseWriter, r *http.Request)
	HandleCreate(w http.ResponseWriter, r *http.Request)
	HandleUpdate(w http.ResponseWriter, r *http.Request)
	HandleDelete(w http.ResponseWriter, r *http.Request)
}

// BadgeHandlers implements the Handlers interface.
type BadgeHandlers struct {
	service badgeservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewBadgeHandlers creates a new BadgeHandlers instance.
func NewBadgeHandlers(service badgeservice.Service, logger *slog.Logger, tracer trace.Tracer) *BadgeHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgeHandlers{service: service, logger: logger, tracer: tracer}
}

// Routes mounts the badge endpoints. Reads are public, writes pass through requireAuth.
func Routes(r chi.Router, h Handlers, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/badges", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{id}", h.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.HandleCreate)
			r.Put("/{id}", h.HandleUpdate)
			r.Delete("/{id}", h.HandleDelete)
		})
	})
}

func (h *BadgeHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "BadgeHandlers.HandleList")
	defer span.End()

	badges, err := h.service.ListBadges(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, badges)
}

func (h *BadgeHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "BadgeHandlers.HandleGet")
	defer span.End()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid badge id")
		return
	}

	badge, err := h.service.GetBadge(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, badge)
}

func (h *BadgeHandlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "BadgeHandlers.HandleCreate")
	defer span.End()

	var input badgeservice.BadgeInput
	if err := httpjson.Decode(r, &input); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	badge, err := h.service.CreateBadge(ctx, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, badge)
}

func (h *BadgeHandlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "BadgeHandlers.HandleUpdate")
	defer span.End()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid badge id")
		return
	}

	var input badgeservice.BadgeInput
	if err := httpjson.Decode(r, &input); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	badge, err := h.service.UpdateBadge(ctx, id, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, badge)
}

func (h *BadgeHandlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "BadgeHandlers.HandleDelete")
	defer span.End()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid badge id")
		return
	}

	if err := h.service.DeleteBadge(ctx, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BadgeHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, badgedb.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, badgedb.ErrNotFound.Error())
	case errors.Is(err, badgedomain.ErrInvalidName):
		httpjson.Error(w, http.StatusBadRequest, badgedomain.ErrInvalidName.Error())
	case errors.Is(err, badgedomain.ErrInvalidRange):
		httpjson.Error(w, http.StatusBadRequest, badgedomain.ErrInvalidRange.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Badge request failed", attr.ExtractCorrelationID(r.Context()), attr.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
