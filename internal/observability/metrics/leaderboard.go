package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LeaderboardMetrics records score engine specific signals on top of the
// generic operation metrics.
type LeaderboardMetrics interface {
	OperationMetrics
	RecordCASRetry(ctx context.Context)
	RecordCacheDesync(ctx context.Context, operation string)
	RecordBadgePersistFailure(ctx context.Context)
	RecordBadgesGranted(ctx context.Context, count int)
}

// FanoutMetrics records broadcast delivery.
type FanoutMetrics interface {
	RecordPublish(ctx context.Context, observers int)
	RecordDrop(ctx context.Context)
	RecordSendFailure(ctx context.Context)
	SetObservers(count int)
}

type prometheusLeaderboardMetrics struct {
	OperationMetrics
	casRetries    prometheus.Counter
	cacheDesyncs  *prometheus.CounterVec
	badgeFailures prometheus.Counter
	badgesGranted prometheus.Counter
}

// NewLeaderboardMetrics registers the score engine instruments on reg.
// ops is shared with the other services so the operation series stay in one family.
func NewLeaderboardMetrics(reg prometheus.Registerer, namespace string, ops OperationMetrics) LeaderboardMetrics {
	factory := promauto.With(reg)
	return &prometheusLeaderboardMetrics{
		OperationMetrics: ops,
		casRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_cas_retries_total",
			Help:      "Compare-and-swap conflicts that triggered a retry of an award.",
		}),
		cacheDesyncs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_cache_desync_total",
			Help:      "Rank cache writes that failed after the ledger committed.",
		}, []string{"operation"}),
		badgeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "badge_persist_failures_total",
			Help:      "Badge grants that were eligible but failed to persist.",
		}),
		badgesGranted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "badges_granted_total",
			Help:      "Badges granted to participants.",
		}),
	}
}

func (m *prometheusLeaderboardMetrics) RecordCASRetry(context.Context) { m.casRetries.Inc() }

func (m *prometheusLeaderboardMetrics) RecordCacheDesync(_ context.Context, operation string) {
	m.cacheDesyncs.WithLabelValues(operation).Inc()
}

func (m *prometheusLeaderboardMetrics) RecordBadgePersistFailure(context.Context) { m.badgeFailures.Inc() }

func (m *prometheusLeaderboardMetrics) RecordBadgesGranted(_ context.Context, count int) {
	m.badgesGranted.Add(float64(count))
}

type prometheusFanoutMetrics struct {
	publishes  prometheus.Counter
	deliveries prometheus.Counter
	drops      prometheus.Counter
	failures   prometheus.Counter
	observers  prometheus.Gauge
}

// NewFanoutMetrics registers broadcast instruments on reg.
func NewFanoutMetrics(reg prometheus.Registerer, namespace string) FanoutMetrics {
	factory := promauto.With(reg)
	return &prometheusFanoutMetrics{
		publishes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_publishes_total",
			Help:      "Leaderboard snapshots published to observers.",
		}),
		deliveries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_enqueued_total",
			Help:      "Snapshots enqueued to individual observers.",
		}),
		drops: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_dropped_total",
			Help:      "Pending snapshots dropped because an observer queue was full.",
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_send_failures_total",
			Help:      "Observer sends that failed and disconnected the observer.",
		}),
		observers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fanout_observers",
			Help:      "Currently connected observers.",
		}),
	}
}

func (m *prometheusFanoutMetrics) RecordPublish(_ context.Context, observers int) {
	m.publishes.Inc()
	m.deliveries.Add(float64(observers))
}

func (m *prometheusFanoutMetrics) RecordDrop(context.Context)        { m.drops.Inc() }
func (m *prometheusFanoutMetrics) RecordSendFailure(context.Context) { m.failures.Inc() }
func (m *prometheusFanoutMetrics) SetObservers(count int)            { m.observers.Set(float64(count)) }
