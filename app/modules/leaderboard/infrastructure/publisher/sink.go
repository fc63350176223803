// Package leaderboardpublisher mirrors leaderboard snapshots onto the message bus.
package leaderboardpublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/fanout"
	leaderboardhandlers "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/handlers"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// ObserverID is the id the bus sink registers under.
const ObserverID = "bus"

// Sink publishes every update it receives to LeaderboardUpdatedV1. Publish
// failures are logged and swallowed so the broadcaster keeps the sink
// connected; the next snapshot supersedes a lost one.
type Sink struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewSink creates a Sink on publisher.
func NewSink(publisher message.Publisher, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{publisher: publisher, logger: logger}
}

func (s *Sink) Send(ctx context.Context, update fanout.Update) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal leaderboard update: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if id := attr.CorrelationID(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}
	msg.Metadata.Set("version", fmt.Sprintf("%d", update.Version))

	if err := s.publisher.Publish(leaderboardhandlers.LeaderboardUpdatedV1, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish leaderboard update",
			slog.Uint64("version", update.Version),
			attr.Error(err),
		)
	}
	return nil
}

var _ fanout.Sink = (*Sink)(nil)
