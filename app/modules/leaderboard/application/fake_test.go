package leaderboardservice

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	badgedomain "github.com/ChuloWay/gamification-system/app/modules/badge/domain"
	"github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/rankcache"
	leaderboarddb "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Ledger
// ------------------------

type fakeParticipant struct {
	name         string
	score        int64
	badges       []uuid.UUID
	achievements []uuid.UUID
}

// FakeLedger keeps participants in memory with real compare-and-swap
// semantics. XxxFunc fields override individual methods.
type FakeLedger struct {
	mu           sync.Mutex
	trace        []string
	participants map[uuid.UUID]*fakeParticipant
	order        []uuid.UUID

	LoadParticipantFunc     func(ctx context.Context, db bun.IDB, id uuid.UUID) (*leaderboarddb.LedgerEntry, error)
	CompareAndSwapScoreFunc func(ctx context.Context, db bun.IDB, id uuid.UUID, expected, next int64) error
	AddBadgeFunc            func(ctx context.Context, db bun.IDB, participantID, badgeID uuid.UUID) (bool, error)
	AddAchievementFunc      func(ctx context.Context, db bun.IDB, participantID, achievementID uuid.UUID, points int64) error
	ListScoresFunc          func(ctx context.Context, db bun.IDB) ([]leaderboarddb.ScoreEntry, error)
	DisplayNamesFunc        func(ctx context.Context, db bun.IDB, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{
		trace:        []string{},
		participants: map[uuid.UUID]*fakeParticipant{},
	}
}

func (f *FakeLedger) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// Put adds or replaces a participant.
func (f *FakeLedger) Put(id uuid.UUID, name string, score int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.participants[id]; !ok {
		f.order = append(f.order, id)
	}
	f.participants[id] = &fakeParticipant{name: name, score: score}
}

// Delete removes a participant, like the cascade on the real table.
func (f *FakeLedger) Delete(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.participants, id)
	f.order = slices.DeleteFunc(f.order, func(o uuid.UUID) bool { return o == id })
}

func (f *FakeLedger) ScoreOf(id uuid.UUID) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.participants[id]; ok {
		return p.score
	}
	return -1
}

func (f *FakeLedger) BadgesOf(id uuid.UUID) []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.participants[id]; ok {
		return slices.Clone(p.badges)
	}
	return nil
}

func (f *FakeLedger) LoadParticipant(ctx context.Context, db bun.IDB, id uuid.UUID) (*leaderboarddb.LedgerEntry, error) {
	f.record("LoadParticipant")
	if f.LoadParticipantFunc != nil {
		return f.LoadParticipantFunc(ctx, db, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok {
		return nil, leaderboarddb.ErrNotFound
	}
	return &leaderboarddb.LedgerEntry{
		ID:             id,
		Name:           p.name,
		Score:          p.score,
		BadgeIDs:       slices.Clone(p.badges),
		AchievementIDs: slices.Clone(p.achievements),
	}, nil
}

func (f *FakeLedger) CompareAndSwapScore(ctx context.Context, db bun.IDB, id uuid.UUID, expected, next int64) error {
	f.record("CompareAndSwapScore")
	if f.CompareAndSwapScoreFunc != nil {
		return f.CompareAndSwapScoreFunc(ctx, db, id, expected, next)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok || p.score != expected {
		return leaderboarddb.ErrScoreConflict
	}
	p.score = next
	return nil
}

func (f *FakeLedger) AddBadge(ctx context.Context, db bun.IDB, participantID, badgeID uuid.UUID) (bool, error) {
	f.record("AddBadge")
	if f.AddBadgeFunc != nil {
		return f.AddBadgeFunc(ctx, db, participantID, badgeID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[participantID]
	if !ok {
		return false, leaderboarddb.ErrNotFound
	}
	if slices.Contains(p.badges, badgeID) {
		return false, nil
	}
	p.badges = append(p.badges, badgeID)
	return true, nil
}

func (f *FakeLedger) AddAchievement(ctx context.Context, db bun.IDB, participantID, achievementID uuid.UUID, points int64) error {
	f.record("AddAchievement")
	if f.AddAchievementFunc != nil {
		return f.AddAchievementFunc(ctx, db, participantID, achievementID, points)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[participantID]
	if !ok {
		return leaderboarddb.ErrNotFound
	}
	if slices.Contains(p.achievements, achievementID) {
		return leaderboarddb.ErrAlreadyGranted
	}
	p.achievements = append(p.achievements, achievementID)
	return nil
}

func (f *FakeLedger) ListScores(ctx context.Context, db bun.IDB) ([]leaderboarddb.ScoreEntry, error) {
	f.record("ListScores")
	if f.ListScoresFunc != nil {
		return f.ListScoresFunc(ctx, db)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]leaderboarddb.ScoreEntry, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, leaderboarddb.ScoreEntry{ParticipantID: id, Score: f.participants[id].score})
	}
	slices.SortStableFunc(out, func(a, b leaderboarddb.ScoreEntry) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return out, nil
}

func (f *FakeLedger) ListOwnedBadges(ctx context.Context, db bun.IDB) (map[uuid.UUID][]uuid.UUID, error) {
	f.record("ListOwnedBadges")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID][]uuid.UUID, len(f.participants))
	for id, p := range f.participants {
		if len(p.badges) > 0 {
			out[id] = slices.Clone(p.badges)
		}
	}
	return out, nil
}

func (f *FakeLedger) DisplayNames(ctx context.Context, db bun.IDB, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	f.record("DisplayNames")
	if f.DisplayNamesFunc != nil {
		return f.DisplayNamesFunc(ctx, db, ids)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if p, ok := f.participants[id]; ok {
			out[id] = p.name
		}
	}
	return out, nil
}

func (f *FakeLedger) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ leaderboarddb.Repository = (*FakeLedger)(nil)

// ------------------------
// Fake Cache
// ------------------------

// FakeCache delegates to an in-memory cache unless a XxxFunc is set.
type FakeCache struct {
	rankcache.Cache

	RaiseFunc   func(ctx context.Context, id uuid.UUID, score int64) error
	UpsertFunc  func(ctx context.Context, id uuid.UUID, score int64) error
	RemoveFunc  func(ctx context.Context, id uuid.UUID) error
	ReplaceFunc func(ctx context.Context, entries []rankcache.Entry, mark int64) error
}

func NewFakeCache() *FakeCache {
	return &FakeCache{Cache: rankcache.NewMemory()}
}

func (f *FakeCache) Raise(ctx context.Context, id uuid.UUID, score int64) error {
	if f.RaiseFunc != nil {
		return f.RaiseFunc(ctx, id, score)
	}
	return f.Cache.Raise(ctx, id, score)
}

func (f *FakeCache) Upsert(ctx context.Context, id uuid.UUID, score int64) error {
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, id, score)
	}
	return f.Cache.Upsert(ctx, id, score)
}

func (f *FakeCache) Remove(ctx context.Context, id uuid.UUID) error {
	if f.RemoveFunc != nil {
		return f.RemoveFunc(ctx, id)
	}
	return f.Cache.Remove(ctx, id)
}

func (f *FakeCache) Replace(ctx context.Context, entries []rankcache.Entry, mark int64) error {
	if f.ReplaceFunc != nil {
		return f.ReplaceFunc(ctx, entries, mark)
	}
	return f.Cache.Replace(ctx, entries, mark)
}

var _ rankcache.Cache = (*FakeCache)(nil)

// ------------------------
// Fake Collaborators
// ------------------------

type FakeCatalog struct {
	Badges         []badgedomain.Badge
	ListBadgesFunc func(ctx context.Context) ([]badgedomain.Badge, error)
}

func (f *FakeCatalog) ListBadges(ctx context.Context) ([]badgedomain.Badge, error) {
	if f.ListBadgesFunc != nil {
		return f.ListBadgesFunc(ctx)
	}
	return slices.Clone(f.Badges), nil
}

var _ BadgeCatalog = (*FakeCatalog)(nil)

type FakeNotifier struct {
	triggers atomic.Int64
}

func (f *FakeNotifier) Trigger() { f.triggers.Add(1) }

func (f *FakeNotifier) Count() int64 { return f.triggers.Load() }

var _ Notifier = (*FakeNotifier)(nil)

type FakeRetryScheduler struct {
	mu        sync.Mutex
	scheduled []uuid.UUID
}

func (f *FakeRetryScheduler) EnqueueBadgeReevaluation(_ context.Context, participantID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, participantID)
	return nil
}

func (f *FakeRetryScheduler) Scheduled() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.scheduled)
}

var _ BadgeRetryScheduler = (*FakeRetryScheduler)(nil)
