package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// luaSlidingWindow records one hit in a sorted set scored by time and
// returns {allowed, hits in window, retry after ms}.
//
// KEYS[1] window key
// ARGV    now ms, window ms, limit, unique member
const luaSlidingWindow = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
redis.call('ZADD', key, 'NX', now, ARGV[4])
local hits = redis.call('ZCARD', key)
redis.call('PEXPIRE', key, window)

if hits <= limit then
  return {1, hits, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local since = tonumber(oldest[2]) or (now - window)
local retry = window - (now - since)
if retry < 0 then retry = 0 end
return {0, hits, retry}
`

// SlidingWindowLimiter caps how many bookings one caller may request within
// a rolling window. Every call counts, rejected ones included.
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int
	window time.Duration
	script *redis.Script
}

func NewSlidingWindowLimiter(
	rdb *redis.Client,
	scope string,
	limit int,
	window time.Duration,
) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		rdb:    rdb,
		scope:  scope,
		limit:  limit,
		window: window,
		script: redis.NewScript(luaSlidingWindow),
	}
}

// Allow counts one request for callerID. When the caller is over the limit,
// allowed is false and retryAfter is when the oldest hit leaves the window;
// the booking engine turns that into a RateLimited error. A Redis failure is
// returned as err and the engine lets the booking through.
func (l *SlidingWindowLimiter) Allow(
	ctx context.Context,
	callerID string,
) (allowed bool, current int64, retryAfter time.Duration, err error) {
	res, err := l.script.Run(
		ctx,
		l.rdb,
		[]string{KeyRateLimit(l.scope, callerID)},
		time.Now().UnixMilli(), l.window.Milliseconds(), l.limit, uuid.NewString(),
	).Result()
	if err != nil {
		return false, 0, 0, err
	}

	vals, ok := res.([]any)
	if !ok || len(vals) != 3 {
		return false, 0, 0, fmt.Errorf("unexpected rate limit reply: %v", res)
	}

	return toInt(vals[0]) == 1, toInt(vals[1]), time.Duration(toInt(vals[2])) * time.Millisecond, nil
}

func toInt(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		var x int64
		fmt.Sscan(t, &x)
		return x
	default:
		return 0
	}
}
