package badgedomain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidRange is returned when a badge's point range is negative or inverted.
	ErrInvalidRange = errors.New("badge point range is invalid")
	// ErrInvalidName is returned when a badge has no name.
	ErrInvalidName = errors.New("badge name is required")
)

// Badge is an administrative award earned by reaching a score inside the
// inclusive range [MinPoints, MaxPoints].
type Badge struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MinPoints   int64     `json:"min_points"`
	MaxPoints   int64     `json:"max_points"`
}

// Covers reports whether score falls inside the badge's inclusive range.
// An inverted range covers nothing.
func (b Badge) Covers(score int64) bool {
	return b.MinPoints <= score && score <= b.MaxPoints
}

// Validate checks the badge can be stored in the catalog.
func (b Badge) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrInvalidName
	}
	if b.MinPoints < 0 || b.MaxPoints < b.MinPoints {
		return ErrInvalidRange
	}
	return nil
}
