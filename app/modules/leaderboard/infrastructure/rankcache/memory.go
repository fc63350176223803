package rankcache

import (
	"bytes"
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"
)

const btreeDegree = 32

// item orders by score descending, then by the sequence number assigned when
// the score was last set, so the participant that reached a tied score first
// ranks higher.
type item struct {
	id    uuid.UUID
	score int64
	seq   uint64
}

func lessItem(a, b item) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.seq != b.seq {
		return a.seq < b.seq
	}
	return bytes.Compare(a.id[:], b.id[:]) < 0
}

// Memory is an in-process Cache backed by a B-tree with a side index by id.
// The sequence number doubles as the write position returned by Mark.
type Memory struct {
	mu      sync.RWMutex
	tree    *btree.BTreeG[item]
	byID    map[uuid.UUID]item
	removed map[uuid.UUID]time.Time
	seq     uint64
}

var _ Cache = (*Memory)(nil)

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		tree:    btree.NewG(btreeDegree, lessItem),
		byID:    make(map[uuid.UUID]item),
		removed: make(map[uuid.UUID]time.Time),
	}
}

// Upsert sets the participant's score. Setting an unchanged score keeps its tie position.
func (c *Memory) Upsert(_ context.Context, participantID uuid.UUID, score int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.removed, participantID)
	if existing, ok := c.byID[participantID]; ok && existing.score == score {
		return nil
	}
	c.setLocked(participantID, score)
	return nil
}

// Raise sets the participant's score only when it is absent or lower.
func (c *Memory) Raise(_ context.Context, participantID uuid.UUID, score int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, gone := c.removed[participantID]; gone {
		return nil
	}
	if existing, ok := c.byID[participantID]; ok && existing.score >= score {
		return nil
	}
	c.setLocked(participantID, score)
	return nil
}

func (c *Memory) setLocked(participantID uuid.UUID, score int64) {
	if existing, ok := c.byID[participantID]; ok {
		c.tree.Delete(existing)
	}
	c.seq++
	it := item{id: participantID, score: score, seq: c.seq}
	c.tree.ReplaceOrInsert(it)
	c.byID[participantID] = it
}

// Remove deletes the participant's entry and marks it removed.
func (c *Memory) Remove(_ context.Context, participantID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removed[participantID] = time.Now()
	if existing, ok := c.byID[participantID]; ok {
		c.tree.Delete(existing)
		delete(c.byID, participantID)
	}
	return nil
}

// Get returns the participant's cached score.
func (c *Memory) Get(_ context.Context, participantID uuid.UUID) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.byID[participantID]
	if !ok {
		return 0, ErrMiss
	}
	return it.score, nil
}

// TopK walks the tree from the highest score and stops after k entries.
func (c *Memory) TopK(_ context.Context, k int) ([]Entry, error) {
	if k <= 0 {
		return []Entry{}, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, min(k, c.tree.Len()))
	c.tree.Ascend(func(it item) bool {
		out = append(out, Entry{ParticipantID: it.id, Score: it.score})
		return len(out) < k
	})
	return out, nil
}

// Rank counts the entries ahead of the participant. Cost grows with the rank.
func (c *Memory) Rank(_ context.Context, participantID uuid.UUID) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.byID[participantID]
	if !ok {
		return 0, ErrMiss
	}

	var ahead int64
	c.tree.AscendLessThan(it, func(item) bool {
		ahead++
		return true
	})
	return ahead + 1, nil
}

// Mark returns the sequence number of the latest write.
func (c *Memory) Mark(context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(c.seq), nil
}

// Replace builds a fresh index from entries and swaps it in. When an id
// appears more than once the first occurrence wins. Entries written after mark
// rank behind the rebuilt ties, in the order they were written.
func (c *Memory) Replace(_ context.Context, entries []Entry, mark int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := make(map[uuid.UUID]item)
	for id, it := range c.byID {
		if it.seq > uint64(mark) {
			fresh[id] = it
		}
	}

	tree := btree.NewG(btreeDegree, lessItem)
	byID := make(map[uuid.UUID]item, len(entries)+len(fresh))
	seen := make(map[uuid.UUID]struct{}, len(entries))

	var seq uint64
	for _, e := range entries {
		if _, dup := seen[e.ParticipantID]; dup {
			continue
		}
		seen[e.ParticipantID] = struct{}{}
		if _, gone := c.removed[e.ParticipantID]; gone {
			continue
		}
		if it, ok := fresh[e.ParticipantID]; ok && it.score > e.Score {
			continue
		}
		delete(fresh, e.ParticipantID)
		seq++
		it := item{id: e.ParticipantID, score: e.Score, seq: seq}
		tree.ReplaceOrInsert(it)
		byID[e.ParticipantID] = it
	}

	kept := make([]item, 0, len(fresh))
	for _, it := range fresh {
		kept = append(kept, it)
	}
	slices.SortFunc(kept, func(a, b item) int { return cmp.Compare(a.seq, b.seq) })
	for _, it := range kept {
		seq++
		it.seq = seq
		tree.ReplaceOrInsert(it)
		byID[it.id] = it
	}

	c.tree = tree
	c.byID = byID
	if c.seq < seq {
		c.seq = seq
	}
	return nil
}

// Forget clears removal marks recorded before cutoff.
func (c *Memory) Forget(_ context.Context, cutoff time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, at := range c.removed {
		if at.Before(cutoff) {
			delete(c.removed, id)
		}
	}
	return nil
}

// Len returns the number of entries.
func (c *Memory) Len(context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(c.tree.Len()), nil
}
