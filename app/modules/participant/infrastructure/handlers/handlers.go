package participanthandlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	participantservice "github.com/ChuloWay/gamification-system/app/modules/participant/application"
	"github.com/ChuloWay/gamification-system/internal/httpjson"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Handlers serves participant accounts over HTTP.
type Handlers interface {
	HandleRegister(w http.ResponseWriter, r *http.Request)
	HandleLogin(w http.ResponseWriter, r *http.Request)
	HandleList(w http.ResponseWriter, r *http.Request)
	HandleGet(w http.ResponseWriter, r *http.Request)
	HandleDelete(w http.ResponseWriter, r *http.Request)
	HandleAwardPoints(w http.ResponseWriter, r *http.Request)
}

// PointsAwarder credits points to a participant.
type PointsAwarder interface {
	AwardPoints(ctx context.Context, participantID uuid.UUID, delta int64, reason leaderboardservice.Reason) (*leaderboardservice.AwardResult, error)
}

// ParticipantHandlers implements the Handlers interface.
type ParticipantHandlers struct {
	service participantservice.Service
	points  PointsAwarder
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewParticipantHandlers creates a new ParticipantHandlers instance.
func NewParticipantHandlers(service participantservice.Service, points PointsAwarder, logger *slog.Logger, tracer trace.Tracer) *ParticipantHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParticipantHandlers{service: service, points: points, logger: logger, tracer: tracer}
}

// Routes mounts the participant endpoints. Registration and login are public.
func Routes(r chi.Router, h Handlers, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/participants", func(r chi.Router) {
		r.Post("/", h.HandleRegister)
		r.Post("/login", h.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.HandleList)
			r.Get("/{id}", h.HandleGet)
			r.Delete("/{id}", h.HandleDelete)
			r.Post("/{id}/points", h.HandleAwardPoints)
		})
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type awardPointsRequest struct {
	Points int64  `json:"points"`
	Note   string `json:"note"`
}

func (h *ParticipantHandlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ParticipantHandlers.HandleRegister")
	defer span.End()

	var input participantservice.RegisterInput
	if err := httpjson.Decode(r, &input); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Register(ctx, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, resp)
}

func (h *ParticipantHandlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ParticipantHandlers.HandleLogin")
	defer span.End()

	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, resp)
}

func (h *ParticipantHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ParticipantHandlers.HandleList")
	defer span.End()

	participants, err := h.service.ListParticipants(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, participants)
}

func (h *ParticipantHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ParticipantHandlers.HandleGet")
	defer span.End()

	id, ok := participantID(w, r)
	if !ok {
		return
	}

	participant, err := h.service.GetParticipant(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, participant)
}

func (h *ParticipantHandlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ParticipantHandlers.HandleDelete")
	defer span.End()

	id, ok := participantID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteParticipant(ctx, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ParticipantHandlers) HandleAwardPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ParticipantHandlers.HandleAwardPoints")
	defer span.End()

	id, ok := participantID(w, r)
	if !ok {
		return
	}

	var req awardPointsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.points.AwardPoints(ctx, id, req.Points, leaderboardservice.Reason{
		Kind: leaderboardservice.ReasonFlat,
		Note: req.Note,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, result)
}

func participantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid participant id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ParticipantHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, participantservice.ErrNotFound),
		errors.Is(err, leaderboardservice.ErrParticipantNotFound):
		httpjson.Error(w, http.StatusNotFound, "participant not found")
	case errors.Is(err, participantservice.ErrEmailTaken):
		httpjson.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, leaderboardservice.ErrConflict):
		httpjson.Error(w, http.StatusConflict, "score update conflict, retry the request")
	case errors.Is(err, participantservice.ErrInvalidInput),
		errors.Is(err, leaderboardservice.ErrNegativeDelta),
		errors.Is(err, leaderboardservice.ErrInvalidReason):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, participantservice.ErrInvalidCredentials):
		httpjson.Error(w, http.StatusUnauthorized, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Participant request failed", attr.ExtractCorrelationID(r.Context()), attr.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

var _ Handlers = (*ParticipantHandlers)(nil)
