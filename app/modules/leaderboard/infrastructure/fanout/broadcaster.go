// Package fanout pushes leaderboard snapshots to connected observers.
//
// A single Run loop turns bursts of Trigger calls into one snapshot. Each
// observer has its own bounded queue and writer goroutine, so a slow
// observer only loses its own stale updates and never delays the others.
package fanout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/ChuloWay/gamification-system/internal/observability/metrics"
	"github.com/google/uuid"
)

var (
	// ErrClosed is returned by Connect after Run has stopped.
	ErrClosed = errors.New("broadcaster closed")

	// ErrDuplicateObserver is returned when an observer id is already connected.
	ErrDuplicateObserver = errors.New("observer already connected")
)

// Entry is one ranked row of an update.
type Entry struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	DisplayName   string    `json:"name"`
	Score         int64     `json:"score"`
}

// Update is a versioned top-K snapshot. Versions increase with every publish.
type Update struct {
	Version     uint64    `json:"version"`
	Entries     []Entry   `json:"entries"`
	PublishedAt time.Time `json:"published_at"`
}

// SnapshotSource builds the current top-K view.
type SnapshotSource func(ctx context.Context) ([]Entry, error)

// Sink delivers updates to one observer.
type Sink interface {
	Send(ctx context.Context, update Update) error
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithQueueSize bounds each observer's pending updates.
func WithQueueSize(n int) Option {
	return func(b *Broadcaster) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// WithCoalesceWindow sets how long Run waits after a trigger before building
// a snapshot. Triggers arriving inside the window share that snapshot.
func WithCoalesceWindow(d time.Duration) Option {
	return func(b *Broadcaster) {
		if d >= 0 {
			b.window = d
		}
	}
}

// Broadcaster fans leaderboard snapshots out to observers.
type Broadcaster struct {
	source    SnapshotSource
	logger    *slog.Logger
	metrics   metrics.FanoutMetrics
	queueSize int
	window    time.Duration

	trigger chan struct{}

	mu        sync.Mutex
	version   uint64
	latest    *Update
	observers map[string]*observer
	closed    bool
}

// NewBroadcaster creates a Broadcaster reading snapshots from source.
func NewBroadcaster(source SnapshotSource, logger *slog.Logger, metrics metrics.FanoutMetrics, opts ...Option) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Broadcaster{
		source:    source,
		logger:    logger,
		metrics:   metrics,
		queueSize: 16,
		window:    50 * time.Millisecond,
		trigger:   make(chan struct{}, 1),
		observers: make(map[string]*observer),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Trigger asks for a new snapshot. It never blocks; pending triggers collapse.
func (b *Broadcaster) Trigger() {
	select {
	case b.trigger <- struct{}{}:
	default:
	}
}

// Run publishes a snapshot for every coalesced trigger until ctx is done,
// then disconnects every observer.
func (b *Broadcaster) Run(ctx context.Context) error {
	defer b.closeAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.trigger:
		}

		if b.window > 0 {
			timer := time.NewTimer(b.window)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}

		// The snapshot below covers any trigger that arrived during the window.
		select {
		case <-b.trigger:
		default:
		}

		if _, err := b.refresh(ctx); err != nil {
			b.logger.WarnContext(ctx, "Failed to build leaderboard snapshot", attr.Error(err))
		}
	}
}

// refresh builds a snapshot from the source and publishes it.
func (b *Broadcaster) refresh(ctx context.Context) (Update, error) {
	entries, err := b.source(ctx)
	if err != nil {
		return Update{}, err
	}
	return b.Publish(ctx, Update{Entries: entries}), nil
}

// Publish stamps the update with the next version, stores it as the latest
// snapshot and enqueues it to every observer without blocking.
func (b *Broadcaster) Publish(ctx context.Context, update Update) Update {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.version++
	update.Version = b.version
	if update.PublishedAt.IsZero() {
		update.PublishedAt = time.Now().UTC()
	}
	b.latest = &update

	for _, o := range b.observers {
		if o.enqueue(update) {
			b.recordDrop(ctx, o.id)
		}
	}
	if b.metrics != nil {
		b.metrics.RecordPublish(ctx, len(b.observers))
	}
	return update
}

// Latest returns the most recently published update.
func (b *Broadcaster) Latest() (Update, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.latest == nil {
		return Update{}, false
	}
	return *b.latest, true
}

// Observers returns the number of connected observers.
func (b *Broadcaster) Observers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.observers)
}

// Connect registers an observer and starts its writer. The observer
// immediately receives the latest snapshot, built fresh if none exists yet.
func (b *Broadcaster) Connect(ctx context.Context, id string, sink Sink) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if _, ok := b.observers[id]; ok {
		b.mu.Unlock()
		return ErrDuplicateObserver
	}

	o := newObserver(ctx, id, sink, b.queueSize)
	b.observers[id] = o
	latest := b.latest
	if latest != nil {
		o.enqueue(*latest)
	}
	count := len(b.observers)
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.SetObservers(count)
	}
	b.logger.InfoContext(ctx, "Observer connected", slog.String("observer_id", id), slog.Int("observers", count))

	go b.runObserver(o)

	if latest == nil {
		if _, err := b.refresh(ctx); err != nil {
			b.logger.WarnContext(ctx, "Failed to build initial snapshot", slog.String("observer_id", id), attr.Error(err))
		}
	}
	return nil
}

// Disconnect unregisters the observer and waits for its writer to stop.
// Unknown ids are ignored.
func (b *Broadcaster) Disconnect(id string) {
	if o := b.detach(id); o != nil {
		<-o.stopped
	}
}

func (b *Broadcaster) detach(id string) *observer {
	b.mu.Lock()
	o, ok := b.observers[id]
	if ok {
		delete(b.observers, id)
	}
	count := len(b.observers)
	b.mu.Unlock()

	if !ok {
		return nil
	}
	o.cancel()
	if b.metrics != nil {
		b.metrics.SetObservers(count)
	}
	b.logger.Info("Observer disconnected", slog.String("observer_id", id), slog.Int("observers", count))
	return o
}

func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	b.closed = true
	ids := make([]string, 0, len(b.observers))
	for id := range b.observers {
		ids = append(ids, id)
	}
	b.mu.Unlock()

	for _, id := range ids {
		b.Disconnect(id)
	}
}

// runObserver delivers queued updates in order until the observer is
// cancelled or its sink fails.
func (b *Broadcaster) runObserver(o *observer) {
	defer close(o.stopped)

	for {
		select {
		case <-o.ctx.Done():
			return
		case update := <-o.queue:
			if update.Version <= o.lastSent {
				continue
			}
			if err := o.sink.Send(o.ctx, update); err != nil {
				if o.ctx.Err() != nil {
					return
				}
				b.logger.Warn("Observer send failed, disconnecting",
					slog.String("observer_id", o.id),
					attr.Error(err),
				)
				if b.metrics != nil {
					b.metrics.RecordSendFailure(o.ctx)
				}
				b.detach(o.id)
				return
			}
			o.lastSent = update.Version
		}
	}
}

func (b *Broadcaster) recordDrop(ctx context.Context, id string) {
	b.logger.DebugContext(ctx, "Dropped stale update for slow observer", slog.String("observer_id", id))
	if b.metrics != nil {
		b.metrics.RecordDrop(ctx)
	}
}
