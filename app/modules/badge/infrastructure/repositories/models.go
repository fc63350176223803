package badgedb

import (
	"time"

	badgedomain "github.com/ChuloWay/gamification-system/app/modules/badge/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Badge is the stored form of a catalog badge.
type Badge struct {
	bun.BaseModel `bun:"table:badges,alias:b"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description,notnull"`
	MinPoints   int64     `bun:"min_points,notnull"`
	MaxPoints   int64     `bun:"max_points,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ToDomain converts the row into the evaluator's badge type.
func (b *Badge) ToDomain() badgedomain.Badge {
	return badgedomain.Badge{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		MinPoints:   b.MinPoints,
		MaxPoints:   b.MaxPoints,
	}
}

// FromDomain builds a row from a domain badge.
func FromDomain(b badgedomain.Badge) *Badge {
	return &Badge{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		MinPoints:   b.MinPoints,
		MaxPoints:   b.MaxPoints,
	}
}
