package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	invalidationcache "github.com/karupanerura/invalidation-cache"
	"github.com/karupanerura/invalidation-cache/store"
)

// Store is a KVStore backed by a Redis server.
type Store struct {
	client redis.UniversalClient
}

var _ invalidationcache.KVStore = (*Store)(nil)

// New creates a new Redis-backed store using the given client.
// The client is shared with the caller and is not closed by the store.
func New(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Get retrieves the value stored at key using GET.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, opErr("get", key, err)
	}
	return v, true, nil
}

// Set stores value at key using SET, with a PX expiry when ttl is positive.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return opErr("set", key, err)
	}
	return nil
}

// Delete removes the key using DEL.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return opErr("delete", key, err)
	}
	return nil
}

// Exists reports whether the key exists using EXISTS.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, opErr("exists", key, err)
	}
	return n > 0, nil
}

// TimeToLive returns the remaining lifetime of the key using PTTL.
// A key that is absent or has no expiry is reported as ok=false.
func (s *Store) TimeToLive(ctx context.Context, key string) (time.Duration, bool, error) {
	d, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, false, opErr("ttl", key, err)
	}
	if d < 0 {
		// PTTL reports -1 for no expiry and -2 for a missing key.
		return 0, false, nil
	}
	return d, true, nil
}

// Expire resets the key's TTL using PEXPIRE.
// Redis removes the key when the ttl is non-positive.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.PExpire(ctx, key, ttl).Result()
	if err != nil {
		return false, opErr("expire", key, err)
	}
	return ok, nil
}

// HashGet retrieves a single field of the hash at key using HGET.
func (s *Store) HashGet(ctx context.Context, key, field string) (string, bool, error) {
	v, err := s.client.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, opErr("hget", key, err)
	}
	return v, true, nil
}

// HashSet stores the given fields in the hash at key using HSET.
func (s *Store) HashSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return opErr("hset", key, err)
	}
	return nil
}

func opErr(op, key string, err error) error {
	return fmt.Errorf("%s %q: %w: %w", op, key, store.ErrUnavailable, err)
}
