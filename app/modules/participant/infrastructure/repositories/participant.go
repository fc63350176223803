package participantdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new participant repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Create inserts a participant. Email is stored lower-cased.
func (r *Impl) Create(ctx context.Context, db bun.IDB, participant *Participant) error {
	db = r.resolveDB(db)

	if participant.ID == uuid.Nil {
		participant.ID = uuid.New()
	}
	now := time.Now().UTC()
	participant.Email = strings.ToLower(strings.TrimSpace(participant.Email))
	participant.CreatedAt = now
	participant.UpdatedAt = now

	_, err := db.NewInsert().
		Model(participant).
		Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("participantdb.Create: %w", err)
	}
	return nil
}

// GetByID retrieves a participant by id.
func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Participant, error) {
	db = r.resolveDB(db)

	participant := new(Participant)
	err := db.NewSelect().
		Model(participant).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("participantdb.GetByID: %w", err)
	}
	return participant, nil
}

// GetByEmail retrieves a participant by email, case-insensitively.
func (r *Impl) GetByEmail(ctx context.Context, db bun.IDB, email string) (*Participant, error) {
	db = r.resolveDB(db)

	participant := new(Participant)
	err := db.NewSelect().
		Model(participant).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("participantdb.GetByEmail: %w", err)
	}
	return participant, nil
}

// List returns every participant ordered by creation time.
func (r *Impl) List(ctx context.Context, db bun.IDB) ([]Participant, error) {
	db = r.resolveDB(db)

	var participants []Participant
	err := db.NewSelect().
		Model(&participants).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("participantdb.List: %w", err)
	}
	return participants, nil
}

// Delete removes a participant by id.
func (r *Impl) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)

	result, err := db.NewDelete().
		Model((*Participant)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("participantdb.Delete: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("participantdb.Delete: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
