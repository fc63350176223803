package badgeservice

import (
	"context"

	badgedomain "github.com/ChuloWay/gamification-system/app/modules/badge/domain"
	"github.com/google/uuid"
)

// Service manages the badge catalog.
type Service interface {
	CreateBadge(ctx context.Context, input BadgeInput) (*badgedomain.Badge, error)
	GetBadge(ctx context.Context, id uuid.UUID) (*badgedomain.Badge, error)
	// ListBadges returns the catalog ordered by min_points, then name.
	ListBadges(ctx context.Context) ([]badgedomain.Badge, error)
	UpdateBadge(ctx context.Context, id uuid.UUID, input BadgeInput) (*badgedomain.Badge, error)
	DeleteBadge(ctx context.Context, id uuid.UUID) error
}

// BadgeInput carries the editable fields of a badge.
type BadgeInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MinPoints   int64  `json:"min_points"`
	MaxPoints   int64  `json:"max_points"`
}

func (in BadgeInput) toDomain(id uuid.UUID) badgedomain.Badge {
	return badgedomain.Badge{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		MinPoints:   in.MinPoints,
		MaxPoints:   in.MaxPoints,
	}
}
