package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/gigbook/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// fenceTTL bounds how long after an invalidation a loader started before it
// may still try to store what it read.
const fenceTTL = 5 * time.Second

// luaSetUnfenced stores a value unless its fence key exists.
// KEYS[1] value key, KEYS[2] fence key
// ARGV[1] payload, ARGV[2] ttl ms
const luaSetUnfenced = `
if redis.call('EXISTS', KEYS[2]) == 1 then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 1
`

type Cache struct {
	rdb       *redis.Client
	sf        singleflight.Group
	viewTTL   time.Duration
	setFenced *redis.Script
}

func New(client *redis.Client, viewTTL time.Duration) *Cache {
	if viewTTL <= 0 {
		viewTTL = 30 * time.Second
	}
	return &Cache{
		rdb:       client,
		viewTTL:   viewTTL,
		setFenced: redis.NewScript(luaSetUnfenced),
	}
}

func (c *Cache) GetString(ctx context.Context, key string) (string, bool, error) {
	s, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}

	if err != nil {
		return "", false, err
	}

	return s, true, nil
}

func (c *Cache) SetString(
	ctx context.Context,
	key string,
	val string,
	ttl time.Duration,
) error {
	return c.rdb.Set(ctx, key, val, ttl).Err()
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return c.rdb.Del(ctx, keys...).Err()
}

func GetJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var zero T

	s, ok, err := c.GetString(ctx, key)
	if err != nil || !ok {
		return zero, ok, err
	}

	var out T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return zero, false, err
	}

	return out, true, nil
}

func SetJSON(
	ctx context.Context,
	c *Cache,
	key string,
	val any,
	ttl time.Duration,
) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.SetString(ctx, key, string(b), ttl)
}

// GetOrSetJSON returns the cached value for key, loading and storing it on a
// miss. Concurrent misses for the same key share one loader call. When fence
// is set, the loaded value is not stored while the fence key exists.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	fence string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	if v, ok, err := GetJSON[T](ctx, c, key); err != nil || ok {
		return v, err
	}

	vAny, err, _ := c.sf.Do(key, func() (any, error) {
		if v2, ok2, err2 := GetJSON[T](ctx, c, key); err2 != nil || ok2 {
			return v2, err2
		}
		v3, err3 := loader(ctx)
		if err3 != nil {
			return nil, err3
		}
		_ = c.store(ctx, key, fence, v3, ttl)
		return v3, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	v, ok := vAny.(T)
	if !ok {
		var zero T
		return zero, errors.New("type assertion failed")
	}

	return v, nil
}

func (c *Cache) store(
	ctx context.Context,
	key string,
	fence string,
	val any,
	ttl time.Duration,
) error {
	if fence == "" {
		return SetJSON(ctx, c, key, val, ttl)
	}

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.setFenced.Run(ctx, c.rdb, []string{key, fence}, string(b), ttl.Milliseconds()).Err()
}

// LoadBookingView reads the view through the cache. Redis failures fall back
// to load; errors returned by load are never cached.
func (c *Cache) LoadBookingView(
	ctx context.Context,
	id uuid.UUID,
	load func(ctx context.Context) (*domain.BookingView, error),
) (*domain.BookingView, error) {
	var loadErr error
	v, err := GetOrSetJSON(ctx, c, KeyBookingView(id), KeyBookingFence(id), c.viewTTL, func(ctx context.Context) (*domain.BookingView, error) {
		v, err := load(ctx)
		loadErr = err
		return v, err
	})
	if err != nil && loadErr == nil {
		return load(ctx)
	}

	return v, err
}

// InvalidateBooking drops the cached view and fences the key for fenceTTL,
// so a read that loaded the old row before the change cannot store it back.
func (c *Cache) InvalidateBooking(ctx context.Context, id uuid.UUID) error {
	if err := c.SetString(ctx, KeyBookingFence(id), "1", fenceTTL); err != nil {
		return err
	}

	return c.Del(ctx, KeyBookingView(id))
}
