package participantdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines participant account persistence.
type Repository interface {
	Create(ctx context.Context, db bun.IDB, participant *Participant) error
	GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Participant, error)
	GetByEmail(ctx context.Context, db bun.IDB, email string) (*Participant, error)
	List(ctx context.Context, db bun.IDB) ([]Participant, error)
	// Delete removes the participant; owned badges and achievements cascade.
	Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error
}
