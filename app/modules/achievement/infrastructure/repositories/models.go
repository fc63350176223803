package achievementdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Achievement is a catalog entry worth a fixed number of points.
type Achievement struct {
	bun.BaseModel `bun:"table:achievements,alias:a"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description,notnull" json:"description"`
	Points      int64     `bun:"points,notnull" json:"points"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
