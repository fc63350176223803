package leaderboardrouter

import (
	"context"

	leaderboardhandlers "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/handlers"
)

// Router wires leaderboard handlers onto the message bus.
type Router interface {
	Configure(ctx context.Context, handlers leaderboardhandlers.Handlers) error
	Close() error
}
