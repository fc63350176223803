package participantservice

import (
	"context"
	"sync"

	participantdb "github.com/ChuloWay/gamification-system/app/modules/participant/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Participant Repo
// ------------------------

// FakeParticipantRepo stores participants in memory. Func fields override
// the in-memory behavior.
type FakeParticipantRepo struct {
	mu    sync.Mutex
	trace []string
	rows  map[uuid.UUID]participantdb.Participant

	CreateFunc func(ctx context.Context, db bun.IDB, participant *participantdb.Participant) error
	DeleteFunc func(ctx context.Context, db bun.IDB, id uuid.UUID) error
	ListFunc   func(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error)
}

func NewFakeParticipantRepo() *FakeParticipantRepo {
	return &FakeParticipantRepo{trace: []string{}, rows: map[uuid.UUID]participantdb.Participant{}}
}

func (f *FakeParticipantRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeParticipantRepo) Create(ctx context.Context, db bun.IDB, participant *participantdb.Participant) error {
	f.mu.Lock()
	f.record("Create")
	f.mu.Unlock()
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, participant)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Email == participant.Email {
			return participantdb.ErrEmailTaken
		}
	}
	f.rows[participant.ID] = *participant
	return nil
}

func (f *FakeParticipantRepo) GetByID(_ context.Context, _ bun.IDB, id uuid.UUID) (*participantdb.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetByID")
	row, ok := f.rows[id]
	if !ok {
		return nil, participantdb.ErrNotFound
	}
	return &row, nil
}

func (f *FakeParticipantRepo) GetByEmail(_ context.Context, _ bun.IDB, email string) (*participantdb.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetByEmail")
	for _, row := range f.rows {
		if row.Email == email {
			return &row, nil
		}
	}
	return nil, participantdb.ErrNotFound
}

func (f *FakeParticipantRepo) List(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error) {
	f.mu.Lock()
	f.record("List")
	f.mu.Unlock()
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]participantdb.Participant, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, row)
	}
	return out, nil
}

func (f *FakeParticipantRepo) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.mu.Lock()
	f.record("Delete")
	f.mu.Unlock()
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return participantdb.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *FakeParticipantRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ participantdb.Repository = (*FakeParticipantRepo)(nil)

// ------------------------
// Fake Rank Tracker
// ------------------------

type FakeRankTracker struct {
	Tracked []uuid.UUID
	Removed []uuid.UUID

	// RemoveCtxErrs holds ctx.Err() as seen by each RemoveParticipant call.
	RemoveCtxErrs []error

	TrackErr  error
	RemoveErr error
}

func (f *FakeRankTracker) TrackParticipant(_ context.Context, participantID uuid.UUID, _ int64) error {
	f.Tracked = append(f.Tracked, participantID)
	return f.TrackErr
}

func (f *FakeRankTracker) RemoveParticipant(ctx context.Context, participantID uuid.UUID) error {
	f.Removed = append(f.Removed, participantID)
	f.RemoveCtxErrs = append(f.RemoveCtxErrs, ctx.Err())
	return f.RemoveErr
}

var _ RankTracker = (*FakeRankTracker)(nil)
