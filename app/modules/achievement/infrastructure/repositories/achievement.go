package achievementdb

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

// NewRepository creates a new achievement repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Create inserts a new achievement.
func (r *Impl) Create(ctx context.Context, db bun.IDB, achievement *Achievement) error {
	db = r.resolveDB(db)

	if achievement.ID == uuid.Nil {
		achievement.ID = uuid.New()
	}
	now := time.Now().UTC()
	achievement.CreatedAt = now
	achievement.UpdatedAt = now

	if _, err := db.NewInsert().Model(achievement).Exec(ctx); err != nil {
		return fmt.Errorf("achievementdb.Create: %w", err)
	}
	return nil
}

// GetByID retrieves an achievement by id.
func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Achievement, error) {
	db = r.resolveDB(db)

	achievement := new(Achievement)
	err := db.NewSelect().
		Model(achievement).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("achievementdb.GetByID: %w", err)
	}
	return achievement, nil
}

// List returns the catalog ordered by name.
func (r *Impl) List(ctx context.Context, db bun.IDB) ([]Achievement, error) {
	db = r.resolveDB(db)

	var achievements []Achievement
	err := db.NewSelect().
		Model(&achievements).
		Order("name ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("achievementdb.List: %w", err)
	}
	return achievements, nil
}

// UpdateDetails changes the name and description of an achievement.
func (r *Impl) UpdateDetails(ctx context.Context, db bun.IDB, id uuid.UUID, name, description string) (*Achievement, error) {
	db = r.resolveDB(db)

	achievement := new(Achievement)
	result, err := db.NewUpdate().
		Model(achievement).
		Set("name = ?", name).
		Set("description = ?", description).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("achievementdb.UpdateDetails: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("achievementdb.UpdateDetails: rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return achievement, nil
}

// Delete removes an achievement. Existing grants are kept.
func (r *Impl) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)

	result, err := db.NewDelete().
		Model((*Achievement)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("achievementdb.Delete: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("achievementdb.Delete: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
