// Package rankcache holds the ordered participant → score index that serves
// top-K and rank queries in front of the ledger.
package rankcache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrMiss is returned when a participant has no entry in the cache.
var ErrMiss = errors.New("rank cache miss")

// Entry is a participant's projected score.
type Entry struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	Score         int64     `json:"score"`
}

// Cache is an ordered score index. Entries are ordered by score descending.
// Implementations must be safe for concurrent use, and a cache shared by
// several processes keeps its removal marks in the shared store.
type Cache interface {
	// Upsert sets the participant's score and clears any removal mark.
	Upsert(ctx context.Context, participantID uuid.UUID, score int64) error
	// Raise sets the participant's score only when it is absent or lower than
	// score. Participants marked removed are left out.
	Raise(ctx context.Context, participantID uuid.UUID, score int64) error
	// Remove deletes the participant's entry and marks it removed. Removing a
	// missing entry is not an error.
	Remove(ctx context.Context, participantID uuid.UUID) error
	// Get returns the participant's cached score or ErrMiss.
	Get(ctx context.Context, participantID uuid.UUID) (int64, error)
	// TopK returns at most k entries from the highest score down.
	TopK(ctx context.Context, k int) ([]Entry, error)
	// Rank returns the participant's 1-based position or ErrMiss.
	Rank(ctx context.Context, participantID uuid.UUID) (int64, error)
	// Mark returns the current write position, to be passed to Replace.
	Mark(ctx context.Context) (int64, error)
	// Replace swaps the whole index for entries, given in tie order. Removed
	// participants are skipped. Entries written after mark survive: with the
	// higher of both scores when the snapshot has them, unchanged otherwise.
	Replace(ctx context.Context, entries []Entry, mark int64) error
	// Forget clears removal marks recorded before cutoff.
	Forget(ctx context.Context, cutoff time.Time) error
	// Len returns the number of entries.
	Len(ctx context.Context) (int64, error)
}
