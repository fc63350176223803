package rankcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by a sorted set, shared by every replica that points
// at the same key. Ties are ordered by Redis (reverse lexicographic member
// order), not by the time the score was reached.
//
// Next to the sorted set it keeps three keys: removal marks (member to
// removal time in ms), write positions (member to clock value) and the write
// clock. Writes that consult them run as scripts, so on a cluster the key
// needs a hash tag such as "{leaderboard}".
type Redis struct {
	client  redis.UniversalClient
	key     string
	removed string
	written string
	clock   string
}

var _ Cache = (*Redis)(nil)

// KEYS: scores, removed, written, clock. ARGV: score, member.
var raiseScript = redis.NewScript(`
if redis.call('ZSCORE', KEYS[2], ARGV[2]) then
	return 0
end
local current = redis.call('ZSCORE', KEYS[1], ARGV[2])
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[2])
redis.call('ZADD', KEYS[3], redis.call('INCR', KEYS[4]), ARGV[2])
return 1
`)

// KEYS: scores, removed, written, clock. ARGV: score, member.
var upsertScript = redis.NewScript(`
redis.call('ZREM', KEYS[2], ARGV[2])
local current = redis.call('ZSCORE', KEYS[1], ARGV[2])
if current and tonumber(current) == tonumber(ARGV[1]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[2])
redis.call('ZADD', KEYS[3], redis.call('INCR', KEYS[4]), ARGV[2])
return 1
`)

// KEYS: scores, removed, written. ARGV: mark, then score and member pairs.
var replaceScript = redis.NewScript(`
local mark = tonumber(ARGV[1])
local fresh = {}
for _, m in ipairs(redis.call('ZRANGEBYSCORE', KEYS[3], '(' .. mark, '+inf')) do
	local s = redis.call('ZSCORE', KEYS[1], m)
	if s then
		fresh[m] = tonumber(s)
	end
end
redis.call('DEL', KEYS[1])
local seen = {}
for i = 2, #ARGV, 2 do
	local score, m = tonumber(ARGV[i]), ARGV[i + 1]
	if not seen[m] then
		seen[m] = true
		if not redis.call('ZSCORE', KEYS[2], m) then
			local f = fresh[m]
			if f and f > score then
				score = f
			end
			redis.call('ZADD', KEYS[1], score, m)
		end
	end
end
for m, s in pairs(fresh) do
	if not seen[m] then
		redis.call('ZADD', KEYS[1], s, m)
	end
end
redis.call('ZREMRANGEBYSCORE', KEYS[3], '-inf', mark)
return redis.call('ZCARD', KEYS[1])
`)

// NewRedis returns a cache stored in the sorted set at key.
func NewRedis(client redis.UniversalClient, key string) *Redis {
	return &Redis{
		client:  client,
		key:     key,
		removed: key + ":removed",
		written: key + ":written",
		clock:   key + ":clock",
	}
}

func (c *Redis) writeKeys() []string {
	return []string{c.key, c.removed, c.written, c.clock}
}

// Upsert sets the participant's score and clears its removal mark.
func (c *Redis) Upsert(ctx context.Context, participantID uuid.UUID, score int64) error {
	if err := upsertScript.Run(ctx, c.client, c.writeKeys(), score, participantID.String()).Err(); err != nil {
		return fmt.Errorf("rankcache.Upsert: %w", err)
	}
	return nil
}

// Raise adds or raises the member unless it carries a removal mark.
func (c *Redis) Raise(ctx context.Context, participantID uuid.UUID, score int64) error {
	if err := raiseScript.Run(ctx, c.client, c.writeKeys(), score, participantID.String()).Err(); err != nil {
		return fmt.Errorf("rankcache.Raise: %w", err)
	}
	return nil
}

// Remove marks the participant removed and deletes it in one MULTI/EXEC block.
func (c *Redis) Remove(ctx context.Context, participantID uuid.UUID) error {
	id := participantID.String()
	pipe := c.client.TxPipeline()
	pipe.ZAdd(ctx, c.removed, redis.Z{Score: float64(time.Now().UnixMilli()), Member: id})
	pipe.ZRem(ctx, c.key, id)
	pipe.ZRem(ctx, c.written, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rankcache.Remove: %w", err)
	}
	return nil
}

// Get returns the participant's score with ZSCORE.
func (c *Redis) Get(ctx context.Context, participantID uuid.UUID) (int64, error) {
	score, err := c.client.ZScore(ctx, c.key, participantID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrMiss
		}
		return 0, fmt.Errorf("rankcache.Get: %w", err)
	}
	return int64(score), nil
}

// TopK reads the highest k members with ZREVRANGE WITHSCORES.
func (c *Redis) TopK(ctx context.Context, k int) ([]Entry, error) {
	if k <= 0 {
		return []Entry{}, nil
	}

	zs, err := c.client.ZRevRangeWithScores(ctx, c.key, 0, int64(k-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("rankcache.TopK: %w", err)
	}

	out := make([]Entry, 0, len(zs))
	for _, z := range zs {
		raw, ok := z.Member.(string)
		if !ok {
			return nil, fmt.Errorf("rankcache.TopK: unexpected member type %T", z.Member)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("rankcache.TopK: invalid member %q: %w", raw, err)
		}
		out = append(out, Entry{ParticipantID: id, Score: int64(z.Score)})
	}
	return out, nil
}

// Rank returns the 1-based ZREVRANK position.
func (c *Redis) Rank(ctx context.Context, participantID uuid.UUID) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key, participantID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrMiss
		}
		return 0, fmt.Errorf("rankcache.Rank: %w", err)
	}
	return rank + 1, nil
}

// Mark reads the write clock. A missing clock is position zero.
func (c *Redis) Mark(ctx context.Context) (int64, error) {
	mark, err := c.client.Get(ctx, c.clock).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("rankcache.Mark: %w", err)
	}
	return mark, nil
}

// Replace rewrites the sorted set in one script.
func (c *Redis) Replace(ctx context.Context, entries []Entry, mark int64) error {
	args := make([]any, 0, 1+2*len(entries))
	args = append(args, mark)
	for _, e := range entries {
		args = append(args, e.Score, e.ParticipantID.String())
	}

	keys := []string{c.key, c.removed, c.written}
	if err := replaceScript.Run(ctx, c.client, keys, args...).Err(); err != nil {
		return fmt.Errorf("rankcache.Replace: %w", err)
	}
	return nil
}

// Forget drops removal marks older than cutoff with ZREMRANGEBYSCORE.
func (c *Redis) Forget(ctx context.Context, cutoff time.Time) error {
	maxScore := "(" + strconv.FormatInt(cutoff.UnixMilli(), 10)
	if err := c.client.ZRemRangeByScore(ctx, c.removed, "-inf", maxScore).Err(); err != nil {
		return fmt.Errorf("rankcache.Forget: %w", err)
	}
	return nil
}

// Len returns ZCARD.
func (c *Redis) Len(ctx context.Context) (int64, error) {
	n, err := c.client.ZCard(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("rankcache.Len: %w", err)
	}
	return n, nil
}
