package badgehandlers

import (
	"context"

	badgeservice "github.com/ChuloWay/gamification-system/app/modules/badge/application"
	badgedomain "github.com/ChuloWay/gamification-system/app/modules/badge/domain"
	badgedb "github.com/ChuloWay/gamification-system/app/modules/badge/infrastructure/repositories"
	"github.com/google/uuid"
)

// FakeService is a programmable badgeservice.Service.
type FakeService struct {
	CreateBadgeFunc func(ctx context.Context, input badgeservice.BadgeInput) (*badgedomain.Badge, error)
	GetBadgeFunc    func(ctx context.Context, id uuid.UUID) (*badgedomain.Badge, error)
	ListBadgesFunc  func(ctx context.Context) ([]badgedomain.Badge, error)
	UpdateBadgeFunc func(ctx context.Context, id uuid.UUID, input badgeservice.BadgeInput) (*badgedomain.Badge, error)
	DeleteBadgeFunc func(ctx context.Context, id uuid.UUID) error
}

func (f *FakeService) CreateBadge(ctx context.Context, input badgeservice.BadgeInput) (*badgedomain.Badge, error) {
	if f.CreateBadgeFunc != nil {
		return f.CreateBadgeFunc(ctx, input)
	}
	return nil, nil
}

func (f *FakeService) GetBadge(ctx context.Context, id uuid.UUID) (*badgedomain.Badge, error) {
	if f.GetBadgeFunc != nil {
		return f.GetBadgeFunc(ctx, id)
	}
	return nil, badgedb.ErrNotFound
}

func (f *FakeService) ListBadges(ctx context.Context) ([]badgedomain.Badge, error) {
	if f.ListBadgesFunc != nil {
		return f.ListBadgesFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) UpdateBadge(ctx context.Context, id uuid.UUID, input badgeservice.BadgeInput) (*badgedomain.Badge, error) {
	if f.UpdateBadgeFunc != nil {
		return f.UpdateBadgeFunc(ctx, id, input)
	}
	return nil, badgedb.ErrNotFound
}

func (f *FakeService) DeleteBadge(ctx context.Context, id uuid.UUID) error {
	if f.DeleteBadgeFunc != nil {
		return f.DeleteBadgeFunc(ctx, id)
	}
	return badgedb.ErrNotFound
}

var _ badgeservice.Service = (*FakeService)(nil)
