package badgeservice

import (
	"context"

	badgedb "github.com/ChuloWay/gamification-system/app/modules/badge/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Badge Repo
// ------------------------

type FakeBadgeRepo struct {
	trace []string

	CreateFunc  func(ctx context.Context, db bun.IDB, badge *badgedb.Badge) error
	GetByIDFunc func(ctx context.Context, db bun.IDB, id uuid.UUID) (*badgedb.Badge, error)
	ListFunc    func(ctx context.Context, db bun.IDB) ([]badgedb.Badge, error)
	UpdateFunc  func(ctx context.Context, db bun.IDB, badge *badgedb.Badge) error
	DeleteFunc  func(ctx context.Context, db bun.IDB, id uuid.UUID) error
}

func NewFakeBadgeRepo() *FakeBadgeRepo {
	return &FakeBadgeRepo{trace: []string{}}
}

func (f *FakeBadgeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeBadgeRepo) Create(ctx context.Context, db bun.IDB, badge *badgedb.Badge) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, badge)
	}
	return nil
}

func (f *FakeBadgeRepo) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*badgedb.Badge, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, badgedb.ErrNotFound
}

func (f *FakeBadgeRepo) List(ctx context.Context, db bun.IDB) ([]badgedb.Badge, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeBadgeRepo) Update(ctx context.Context, db bun.IDB, badge *badgedb.Badge) error {
	f.record("Update")
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, db, badge)
	}
	return badgedb.ErrNotFound
}

func (f *FakeBadgeRepo) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, id)
	}
	return badgedb.ErrNotFound
}

func (f *FakeBadgeRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ badgedb.Repository = (*FakeBadgeRepo)(nil)
