package leaderboardws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/fanout"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	// UpdateEvent names the message carrying a leaderboard snapshot.
	UpdateEvent = "leaderboardUpdate"
)

var errSinkClosed = errors.New("websocket sink closed")

// Envelope is the JSON frame written to clients.
type Envelope struct {
	Event string        `json:"event"`
	Data  fanout.Update `json:"data"`
}

// Sink writes fan-out updates to one websocket connection.
type Sink struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewSink wraps an upgraded connection.
func NewSink(conn *websocket.Conn) *Sink {
	return &Sink{conn: conn}
}

// Send writes the update as a leaderboardUpdate event guarded by the write
// mutex and deadline.
func (s *Sink) Send(_ context.Context, update fanout.Update) error {
	if s == nil || s.conn == nil {
		return errSinkClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(Envelope{Event: UpdateEvent, Data: update})
}

// ping sends a keepalive control frame.
func (s *Sink) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

var _ fanout.Sink = (*Sink)(nil)
