package fanout

import (
	"context"
	"sync"
)

// FakeSink records delivered updates. SendFunc, when set, runs before the
// update is recorded and may fail the send.
type FakeSink struct {
	mu       sync.Mutex
	received []Update

	SendFunc func(ctx context.Context, update Update) error
}

func (f *FakeSink) Send(ctx context.Context, update Update) error {
	if f.SendFunc != nil {
		if err := f.SendFunc(ctx, update); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, update)
	return nil
}

func (f *FakeSink) Versions() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint64, 0, len(f.received))
	for _, u := range f.received {
		out = append(out, u.Version)
	}
	return out
}

func (f *FakeSink) Last() (Update, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.received) == 0 {
		return Update{}, false
	}
	return f.received[len(f.received)-1], true
}

var _ Sink = (*FakeSink)(nil)
