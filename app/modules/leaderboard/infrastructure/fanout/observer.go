package fanout

import "context"

type observer struct {
	id       string
	sink     Sink
	queue    chan Update
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  chan struct{}
	lastSent uint64
}

func newObserver(ctx context.Context, id string, sink Sink, size int) *observer {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	return &observer{
		id:      id,
		sink:    sink,
		queue:   make(chan Update, size),
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// enqueue adds the update, evicting the oldest pending one when the queue is
// full. It reports whether an update was dropped. Callers hold the
// broadcaster lock, so there is a single producer per queue.
func (o *observer) enqueue(update Update) (dropped bool) {
	for {
		select {
		case o.queue <- update:
			return dropped
		default:
		}
		select {
		case <-o.queue:
			dropped = true
		default:
		}
	}
}
