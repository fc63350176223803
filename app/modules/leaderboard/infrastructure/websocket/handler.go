// Package leaderboardws serves live leaderboard updates over websockets.
package leaderboardws

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/fanout"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Broadcaster is the part of the fan-out the handler needs.
type Broadcaster interface {
	Connect(ctx context.Context, id string, sink fanout.Sink) error
	Disconnect(id string)
}

// Handler upgrades requests and registers each connection as an observer.
type Handler struct {
	broadcaster Broadcaster
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

// NewHandler creates a Handler. An empty origin list, or one containing "*",
// accepts any origin.
func NewHandler(broadcaster Broadcaster, logger *slog.Logger, allowedOrigins []string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		broadcaster: broadcaster,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

// Routes mounts the websocket endpoint.
func Routes(r chi.Router, h *Handler) {
	r.Get("/ws/leaderboard", h.ServeHTTP)
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// ServeHTTP runs one observer connection until the client goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.WarnContext(r.Context(), "Websocket upgrade failed", attr.Error(err))
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	sink := NewSink(conn)
	if err := h.broadcaster.Connect(r.Context(), id, sink); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to register websocket observer", slog.String("observer_id", id), attr.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "unavailable"),
			time.Now().Add(writeWait))
		return
	}
	defer h.broadcaster.Disconnect(id)

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(sink, done)

	h.readLoop(conn)
}

// readLoop discards client messages and returns when the connection closes.
func (h *Handler) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Websocket closed unexpectedly", attr.Error(err))
			}
			return
		}
	}
}

func (h *Handler) keepAlive(sink *Sink, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := sink.ping(); err != nil {
				return
			}
		}
	}
}
