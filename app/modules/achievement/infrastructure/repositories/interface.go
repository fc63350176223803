package achievementdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines achievement catalog persistence.
type Repository interface {
	Create(ctx context.Context, db bun.IDB, achievement *Achievement) error
	GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Achievement, error)
	List(ctx context.Context, db bun.IDB) ([]Achievement, error)
	// UpdateDetails changes name and description only; points are fixed at creation.
	UpdateDetails(ctx context.Context, db bun.IDB, id uuid.UUID, name, description string) (*Achievement, error)
	Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error
}
