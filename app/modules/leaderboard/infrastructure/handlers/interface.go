package leaderboardhandlers

import (
	"context"
	"net/http"
)

// Handlers defines the leaderboard event handlers.
type Handlers interface {
	HandleAwardPointsRequested(ctx context.Context, payload *AwardPointsRequestedPayloadV1) ([]Result, error)
}

// HTTPHandlers defines the leaderboard HTTP endpoints.
type HTTPHandlers interface {
	HandleLeaderboard(w http.ResponseWriter, r *http.Request)
	HandleStanding(w http.ResponseWriter, r *http.Request)
	HandleReconcile(w http.ResponseWriter, r *http.Request)
}

// ReconcileScheduler queues a rank cache rebuild.
type ReconcileScheduler interface {
	EnqueueReconcile(ctx context.Context) error
}
