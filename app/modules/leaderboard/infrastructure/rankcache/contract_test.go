package rankcache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCacheContract exercises behaviour every Cache implementation shares.
// Scores are kept distinct so tie ordering, which differs between
// implementations, does not affect the assertions.
func runCacheContract(t *testing.T, newCache func(t *testing.T) Cache) {
	ctx := context.Background()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	t.Run("get miss on empty cache", func(t *testing.T) {
		cache := newCache(t)
		_, err := cache.Get(ctx, a)
		assert.ErrorIs(t, err, ErrMiss)
		_, err = cache.Rank(ctx, a)
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("top k is ordered by score descending", func(t *testing.T) {
		cache := newCache(t)
		require.NoError(t, cache.Upsert(ctx, a, 10))
		require.NoError(t, cache.Upsert(ctx, b, 30))
		require.NoError(t, cache.Upsert(ctx, c, 20))

		top, err := cache.TopK(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []Entry{{b, 30}, {c, 20}, {a, 10}}, top)

		top, err = cache.TopK(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []Entry{{b, 30}, {c, 20}}, top)

		top, err = cache.TopK(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, top)
	})

	t.Run("upsert moves an existing entry", func(t *testing.T) {
		cache := newCache(t)
		require.NoError(t, cache.Upsert(ctx, a, 10))
		require.NoError(t, cache.Upsert(ctx, b, 20))
		require.NoError(t, cache.Upsert(ctx, a, 50))

		score, err := cache.Get(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, int64(50), score)

		rank, err := cache.Rank(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rank)

		n, err := cache.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("raise never lowers", func(t *testing.T) {
		cache := newCache(t)
		require.NoError(t, cache.Raise(ctx, a, 40))
		require.NoError(t, cache.Raise(ctx, a, 30))

		score, err := cache.Get(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, int64(40), score)

		require.NoError(t, cache.Raise(ctx, a, 45))
		score, err = cache.Get(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, int64(45), score)
	})

	t.Run("remove deletes the entry", func(t *testing.T) {
		cache := newCache(t)
		require.NoError(t, cache.Upsert(ctx, a, 10))
		require.NoError(t, cache.Upsert(ctx, b, 20))
		require.NoError(t, cache.Remove(ctx, b))
		require.NoError(t, cache.Remove(ctx, c))

		top, err := cache.TopK(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []Entry{{a, 10}}, top)

		_, err = cache.Get(ctx, b)
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("replace drops entries not in the snapshot", func(t *testing.T) {
		cache := newCache(t)
		require.NoError(t, cache.Upsert(ctx, a, 10))
		require.NoError(t, cache.Upsert(ctx, b, 20))
		mark, err := cache.Mark(ctx)
		require.NoError(t, err)

		require.NoError(t, cache.Replace(ctx, []Entry{{c, 99}, {a, 15}, {c, 1}}, mark))

		top, err := cache.TopK(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []Entry{{c, 99}, {a, 15}}, top)

		mark, err = cache.Mark(ctx)
		require.NoError(t, err)
		require.NoError(t, cache.Replace(ctx, nil, mark))
		n, err := cache.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("raise after remove is ignored", func(t *testing.T) {
		cache := newCache(t)
		require.NoError(t, cache.Upsert(ctx, a, 10))
		require.NoError(t, cache.Remove(ctx, a))
		require.NoError(t, cache.Raise(ctx, a, 50))

		_, err := cache.Get(ctx, a)
		assert.ErrorIs(t, err, ErrMiss)
		n, err := cache.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("upsert clears the removal mark", func(t *testing.T) {
		cache := newCache(t)
		require.NoError(t, cache.Remove(ctx, a))
		require.NoError(t, cache.Upsert(ctx, a, 5))
		require.NoError(t, cache.Raise(ctx, a, 8))

		score, err := cache.Get(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, int64(8), score)
	})

	t.Run("replace skips removed participants", func(t *testing.T) {
		cache := newCache(t)
		require.NoError(t, cache.Remove(ctx, b))
		mark, err := cache.Mark(ctx)
		require.NoError(t, err)

		require.NoError(t, cache.Replace(ctx, []Entry{{b, 40}, {a, 10}}, mark))

		top, err := cache.TopK(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []Entry{{a, 10}}, top)
	})

	t.Run("replace keeps writes made after the mark", func(t *testing.T) {
		cache := newCache(t)
		require.NoError(t, cache.Upsert(ctx, a, 10))
		require.NoError(t, cache.Upsert(ctx, b, 20))
		mark, err := cache.Mark(ctx)
		require.NoError(t, err)

		// Landed while the snapshot was being read.
		require.NoError(t, cache.Raise(ctx, a, 30))
		require.NoError(t, cache.Upsert(ctx, c, 5))

		require.NoError(t, cache.Replace(ctx, []Entry{{b, 25}, {a, 10}}, mark))

		top, err := cache.TopK(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []Entry{{a, 30}, {b, 25}, {c, 5}}, top)
	})

	t.Run("snapshot wins over an older write after the mark", func(t *testing.T) {
		cache := newCache(t)
		mark, err := cache.Mark(ctx)
		require.NoError(t, err)
		require.NoError(t, cache.Raise(ctx, a, 10))

		require.NoError(t, cache.Replace(ctx, []Entry{{a, 12}}, mark))

		score, err := cache.Get(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, int64(12), score)
	})

	t.Run("forget clears old removal marks", func(t *testing.T) {
		cache := newCache(t)
		require.NoError(t, cache.Remove(ctx, a))
		require.NoError(t, cache.Forget(ctx, time.Now().Add(-time.Hour)))
		require.NoError(t, cache.Raise(ctx, a, 1))
		_, err := cache.Get(ctx, a)
		assert.ErrorIs(t, err, ErrMiss)

		require.NoError(t, cache.Forget(ctx, time.Now().Add(time.Hour)))
		require.NoError(t, cache.Raise(ctx, a, 1))
		score, err := cache.Get(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, int64(1), score)
	})
}
