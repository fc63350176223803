package metrics

import (
	"context"
	"time"
)

// Noop satisfies every metrics interface and records nothing.
type Noop struct{}

var (
	_ OperationMetrics   = Noop{}
	_ LeaderboardMetrics = Noop{}
	_ FanoutMetrics      = Noop{}
)

// NewNoop returns a recorder that discards everything.
func NewNoop() Noop { return Noop{} }

func (Noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (Noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (Noop) RecordOperationFailure(context.Context, string, string)                 {}
func (Noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (Noop) RecordCASRetry(context.Context)                                         {}
func (Noop) RecordCacheDesync(context.Context, string)                              {}
func (Noop) RecordBadgePersistFailure(context.Context)                              {}
func (Noop) RecordBadgesGranted(context.Context, int)                               {}
func (Noop) RecordPublish(context.Context, int)                                     {}
func (Noop) RecordDrop(context.Context)                                             {}
func (Noop) RecordSendFailure(context.Context)                                      {}
func (Noop) SetObservers(int)                                                       {}
