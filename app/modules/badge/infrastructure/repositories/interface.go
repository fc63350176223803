package badgedb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines badge catalog persistence.
type Repository interface {
	Create(ctx context.Context, db bun.IDB, badge *Badge) error
	GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Badge, error)
	// List returns the catalog ordered by min_points, then name.
	List(ctx context.Context, db bun.IDB) ([]Badge, error)
	Update(ctx context.Context, db bun.IDB, badge *Badge) error
	Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error
}
