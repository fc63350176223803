package participantdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Participant is an account that can earn points, achievements and badges.
type Participant struct {
	bun.BaseModel `bun:"table:participants,alias:p"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Score        int64     `bun:"score,notnull,default:0"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
