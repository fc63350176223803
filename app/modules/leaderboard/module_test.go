package leaderboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	leaderboardservice "github.com/ChuloWay/gamification-system/app/modules/leaderboard/application"
	"github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/fanout"
	"github.com/ChuloWay/gamification-system/internal/observability"
	"github.com/ChuloWay/gamification-system/internal/observability/metrics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoard struct {
	leaderboardservice.Service

	gotK  int
	board []leaderboardservice.RankedParticipant
	err   error
}

func (f *fakeBoard) Leaderboard(_ context.Context, k int) ([]leaderboardservice.RankedParticipant, error) {
	f.gotK = k
	return f.board, f.err
}

func TestSnapshotSource(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	t.Run("maps ranked rows to entries", func(t *testing.T) {
		svc := &fakeBoard{board: []leaderboardservice.RankedParticipant{
			{Rank: 1, ParticipantID: a, DisplayName: "Ada", Score: 90},
			{Rank: 2, ParticipantID: b, DisplayName: leaderboardservice.UnknownDisplayName, Score: 40},
		}}

		entries, err := SnapshotSource(svc, 5)(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 5, svc.gotK)
		assert.Equal(t, []fanout.Entry{
			{ParticipantID: a, DisplayName: "Ada", Score: 90},
			{ParticipantID: b, DisplayName: leaderboardservice.UnknownDisplayName, Score: 40},
		}, entries)
	})

	t.Run("query failure is returned", func(t *testing.T) {
		svc := &fakeBoard{err: errors.New("cache offline")}

		_, err := SnapshotSource(svc, 5)(context.Background())
		assert.Error(t, err)
	})
}

func newRunnableModule() *Module {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	source := func(context.Context) ([]fanout.Entry, error) { return nil, nil }
	return &Module{
		Broadcaster:   fanout.NewBroadcaster(source, logger, metrics.NewNoop()),
		observability: &observability.Observability{Logger: logger},
	}
}

func waitGroupDone(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}

func TestModule_RunAndClose(t *testing.T) {
	t.Run("close stops a running module", func(t *testing.T) {
		m := newRunnableModule()
		var wg sync.WaitGroup
		wg.Add(1)
		go m.Run(context.Background(), &wg)

		assert.Eventually(t, func() bool {
			m.mu.Lock()
			defer m.mu.Unlock()
			return m.cancelFunc != nil
		}, time.Second, 5*time.Millisecond)

		require.NoError(t, m.Close())
		waitGroupDone(t, &wg)
	})

	t.Run("close racing start leaves nothing running", func(t *testing.T) {
		m := newRunnableModule()
		var wg sync.WaitGroup
		wg.Add(1)
		go m.Run(context.Background(), &wg)
		require.NoError(t, m.Close())

		waitGroupDone(t, &wg)
	})

	t.Run("close before run", func(t *testing.T) {
		m := newRunnableModule()
		require.NoError(t, m.Close())

		var wg sync.WaitGroup
		wg.Add(1)
		m.Run(context.Background(), &wg)
		waitGroupDone(t, &wg)
	})
}
