package badgedomain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	bronze := Badge{ID: uuid.New(), Name: "Bronze", MinPoints: 0, MaxPoints: 99}
	silver := Badge{ID: uuid.New(), Name: "Silver", MinPoints: 100, MaxPoints: 199}
	exact := Badge{ID: uuid.New(), Name: "Century", MinPoints: 100, MaxPoints: 100}
	wide := Badge{ID: uuid.New(), Name: "Regular", MinPoints: 50, MaxPoints: 500}
	inverted := Badge{ID: uuid.New(), Name: "Broken", MinPoints: 10, MaxPoints: 5}

	tests := []struct {
		name    string
		score   int64
		owned   []uuid.UUID
		catalog []Badge
		want    []uuid.UUID
	}{
		{
			name:    "empty catalog",
			score:   50,
			catalog: nil,
			want:    nil,
		},
		{
			name:    "first badge earned",
			score:   50,
			catalog: []Badge{bronze, silver},
			want:    []uuid.UUID{bronze.ID},
		},
		{
			name:    "owned badge is not returned again",
			score:   110,
			owned:   []uuid.UUID{bronze.ID},
			catalog: []Badge{bronze, silver},
			want:    []uuid.UUID{silver.ID},
		},
		{
			name:    "unchanged score with everything owned is a no-op",
			score:   115,
			owned:   []uuid.UUID{bronze.ID, silver.ID},
			catalog: []Badge{bronze, silver},
			want:    nil,
		},
		{
			name:    "exact badge only at its score",
			score:   100,
			catalog: []Badge{exact},
			want:    []uuid.UUID{exact.ID},
		},
		{
			name:    "exact badge misses neighbours",
			score:   101,
			catalog: []Badge{exact},
			want:    nil,
		},
		{
			name:    "overlapping ranges all match in catalog order",
			score:   100,
			catalog: []Badge{wide, silver, exact, bronze},
			want:    []uuid.UUID{wide.ID, silver.ID, exact.ID},
		},
		{
			name:    "inverted range never matches",
			score:   7,
			catalog: []Badge{inverted},
			want:    nil,
		},
		{
			name:    "duplicate catalog entry returned once",
			score:   10,
			catalog: []Badge{bronze, bronze},
			want:    []uuid.UUID{bronze.ID},
		},
		{
			name:    "score past every range",
			score:   10_000,
			catalog: []Badge{bronze, silver},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.score, tt.owned, tt.catalog)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_DoesNotMutateInputs(t *testing.T) {
	bronze := Badge{ID: uuid.New(), MinPoints: 0, MaxPoints: 99}
	owned := []uuid.UUID{}
	catalog := []Badge{bronze}

	_ = Evaluate(10, owned, catalog)

	assert.Empty(t, owned)
	assert.Equal(t, []Badge{bronze}, catalog)
}

func TestBadgeValidate(t *testing.T) {
	tests := []struct {
		name    string
		badge   Badge
		wantErr error
	}{
		{name: "valid", badge: Badge{Name: "Bronze", MinPoints: 0, MaxPoints: 99}},
		{name: "single point", badge: Badge{Name: "Exact", MinPoints: 5, MaxPoints: 5}},
		{name: "missing name", badge: Badge{Name: "  ", MinPoints: 0, MaxPoints: 1}, wantErr: ErrInvalidName},
		{name: "inverted", badge: Badge{Name: "x", MinPoints: 5, MaxPoints: 1}, wantErr: ErrInvalidRange},
		{name: "negative", badge: Badge{Name: "x", MinPoints: -1, MaxPoints: 1}, wantErr: ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.badge.Validate(), tt.wantErr)
		})
	}
}
