// Package badgedomain holds the badge catalog entity and the pure badge
// eligibility evaluator.
package badgedomain

import "github.com/google/uuid"

// Evaluate returns the badges in catalog that cover score and are not in
// owned, in catalog order. It performs no I/O and does not mutate its inputs.
// Overlapping ranges are all returned; a catalog id listed twice is returned once.
func Evaluate(score int64, owned []uuid.UUID, catalog []Badge) []uuid.UUID {
	if len(catalog) == 0 {
		return nil
	}

	skip := make(map[uuid.UUID]struct{}, len(owned)+len(catalog))
	for _, id := range owned {
		skip[id] = struct{}{}
	}

	var earned []uuid.UUID
	for _, b := range catalog {
		if _, ok := skip[b.ID]; ok {
			continue
		}
		if !b.Covers(score) {
			continue
		}
		skip[b.ID] = struct{}{}
		earned = append(earned, b.ID)
	}
	return earned
}
