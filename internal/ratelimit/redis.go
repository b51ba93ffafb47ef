package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// recordScript prunes, counts, and conditionally records in one round trip.
//
// KEYS[1] sorted set; ARGV: now ms, cutoff ms, max, member, ttl ms.
// Returns {allowed, count, retry_after_ms}.
var recordScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local max = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[2])

local count = redis.call('ZCARD', key)
if count >= max then
	local retry = 0
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	if oldest[2] then
		retry = tonumber(oldest[2]) - tonumber(ARGV[2])
	end
	return {0, count, retry}
end

redis.call('ZADD', key, ARGV[1], ARGV[4])
redis.call('PEXPIRE', key, ARGV[5])
return {1, count + 1, 0}
`)

// RedisStore keeps attempts in one sorted set per requester, shared across instances.
type RedisStore struct {
	client    redis.Scripter
	keyPrefix string
}

// NewRedisStore creates a RedisStore. Keys are namespaced with keyPrefix.
func NewRedisStore(client redis.Scripter, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) Record(ctx context.Context, key string, now time.Time, window time.Duration, max int) (Decision, error) {
	nowMs := now.UnixMilli()
	cutoff := nowMs - window.Milliseconds()
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()
	ttl := (2 * window).Milliseconds()

	res, err := recordScript.Run(ctx, s.client, []string{s.keyPrefix + key},
		nowMs, cutoff, max, member, ttl,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("redis record: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("redis record: unexpected reply length %d", len(res))
	}

	return Decision{
		Allowed:    res[0] == 1,
		Count:      int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}
