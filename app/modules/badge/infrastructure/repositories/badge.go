package badgedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new badge repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Create inserts a new badge.
func (r *Impl) Create(ctx context.Context, db bun.IDB, badge *Badge) error {
	db = r.resolveDB(db)

	if badge.ID == uuid.Nil {
		badge.ID = uuid.New()
	}
	now := time.Now().UTC()
	badge.CreatedAt = now
	badge.UpdatedAt = now

	if _, err := db.NewInsert().Model(badge).Exec(ctx); err != nil {
		return fmt.Errorf("badgedb.Create: %w", err)
	}
	return nil
}

// GetByID retrieves a badge by id.
func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Badge, error) {
	db = r.resolveDB(db)

	badge := new(Badge)
	err := db.NewSelect().
		Model(badge).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("badgedb.GetByID: %w", err)
	}
	return badge, nil
}

// List returns the badge catalog.
func (r *Impl) List(ctx context.Context, db bun.IDB) ([]Badge, error) {
	db = r.resolveDB(db)

	var badges []Badge
	err := db.NewSelect().
		Model(&badges).
		Order("min_points ASC", "name ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("badgedb.List: %w", err)
	}
	return badges, nil
}

// Update overwrites the mutable fields of a badge.
func (r *Impl) Update(ctx context.Context, db bun.IDB, badge *Badge) error {
	db = r.resolveDB(db)

	badge.UpdatedAt = time.Now().UTC()
	result, err := db.NewUpdate().
		Model(badge).
		Column("name", "description", "min_points", "max_points", "updated_at").
		WherePK().
		Returning("created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("badgedb.Update: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("badgedb.Update: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a badge; ownership rows cascade.
func (r *Impl) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)

	result, err := db.NewDelete().
		Model((*Badge)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("badgedb.Delete: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("badgedb.Delete: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
