package redis

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockValue    = "LOCK"
	resultPrefix = "RES:"
)

type ClaimState int

const (
	// Claimed means the caller owns the key and must SaveResult or Release it.
	Claimed ClaimState = iota
	// Replayed means a previous request finished; its payload is returned.
	Replayed
	// InFlight means another request holds the key.
	InFlight
)

// IdempotencyStore remembers the response of a request under its
// Idempotency-Key. A key holds either the in-flight lock or the saved result.
type IdempotencyStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl, lockTTL time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &IdempotencyStore{rdb: rdb, ttl: ttl, lockTTL: lockTTL}
}

// Claim tries to take key for the current request.
func (s *IdempotencyStore) Claim(ctx context.Context, key string) (ClaimState, string, error) {
	if payload, ok, err := s.GetResult(ctx, key); err != nil || ok {
		return Replayed, payload, err
	}

	locked, err := s.rdb.SetNX(ctx, key, lockValue, s.lockTTL).Result()
	if err != nil {
		return InFlight, "", err
	}
	if locked {
		return Claimed, "", nil
	}

	// lost the race: the winner may already have finished
	payload, ok, err := s.GetResult(ctx, key)
	if err != nil {
		return InFlight, "", err
	}
	if ok {
		return Replayed, payload, nil
	}

	return InFlight, "", nil
}

func (s *IdempotencyStore) SaveResult(ctx context.Context, key string, jsonPayload string) error {
	return s.rdb.Set(ctx, key, resultPrefix+jsonPayload, s.ttl).Err()
}

func (s *IdempotencyStore) GetResult(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if strings.HasPrefix(v, resultPrefix) {
		return strings.TrimPrefix(v, resultPrefix), true, nil
	}

	return "", false, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
