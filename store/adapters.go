package store

import (
	"context"
	"time"

	invalidationcache "github.com/karupanerura/invalidation-cache"
)

var _ invalidationcache.KVStore = (*FuncStore)(nil)

// FuncStore is an invalidationcache.KVStore implementation that uses
// functions to perform the store operations.
//
// When a function field is nil, the corresponding operation is delegated to
// Fallback. This makes it easy to wrap a working store and override a single
// operation, e.g. to inject failures in tests. Calling an operation whose
// function is nil while Fallback is also nil panics.
type FuncStore struct {
	// Fallback handles operations whose function field is nil.
	Fallback invalidationcache.KVStore

	// GetFunc retrieves the value stored at key.
	GetFunc func(context.Context, string) (string, bool, error)

	// SetFunc stores a value at key with the given TTL.
	SetFunc func(context.Context, string, string, time.Duration) error

	// DeleteFunc removes the key.
	DeleteFunc func(context.Context, string) error

	// ExistsFunc reports whether the key holds a live entry.
	ExistsFunc func(context.Context, string) (bool, error)

	// TimeToLiveFunc returns the remaining lifetime of the key.
	TimeToLiveFunc func(context.Context, string) (time.Duration, bool, error)

	// ExpireFunc resets the key's TTL.
	ExpireFunc func(context.Context, string, time.Duration) (bool, error)

	// HashGetFunc retrieves a single field of the hash stored at key.
	HashGetFunc func(context.Context, string, string) (string, bool, error)

	// HashSetFunc stores fields in the hash at key.
	HashSetFunc func(context.Context, string, map[string]string) error
}

// Get calls GetFunc, or the fallback store when GetFunc is nil.
func (s *FuncStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.GetFunc != nil {
		return s.GetFunc(ctx, key)
	}
	return s.Fallback.Get(ctx, key)
}

// Set calls SetFunc, or the fallback store when SetFunc is nil.
func (s *FuncStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.SetFunc != nil {
		return s.SetFunc(ctx, key, value, ttl)
	}
	return s.Fallback.Set(ctx, key, value, ttl)
}

// Delete calls DeleteFunc, or the fallback store when DeleteFunc is nil.
func (s *FuncStore) Delete(ctx context.Context, key string) error {
	if s.DeleteFunc != nil {
		return s.DeleteFunc(ctx, key)
	}
	return s.Fallback.Delete(ctx, key)
}

// Exists calls ExistsFunc, or the fallback store when ExistsFunc is nil.
func (s *FuncStore) Exists(ctx context.Context, key string) (bool, error) {
	if s.ExistsFunc != nil {
		return s.ExistsFunc(ctx, key)
	}
	return s.Fallback.Exists(ctx, key)
}

// TimeToLive calls TimeToLiveFunc, or the fallback store when TimeToLiveFunc is nil.
func (s *FuncStore) TimeToLive(ctx context.Context, key string) (time.Duration, bool, error) {
	if s.TimeToLiveFunc != nil {
		return s.TimeToLiveFunc(ctx, key)
	}
	return s.Fallback.TimeToLive(ctx, key)
}

// Expire calls ExpireFunc, or the fallback store when ExpireFunc is nil.
func (s *FuncStore) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if s.ExpireFunc != nil {
		return s.ExpireFunc(ctx, key, ttl)
	}
	return s.Fallback.Expire(ctx, key, ttl)
}

// HashGet calls HashGetFunc, or the fallback store when HashGetFunc is nil.
func (s *FuncStore) HashGet(ctx context.Context, key, field string) (string, bool, error) {
	if s.HashGetFunc != nil {
		return s.HashGetFunc(ctx, key, field)
	}
	return s.Fallback.HashGet(ctx, key, field)
}

// HashSet calls HashSetFunc, or the fallback store when HashSetFunc is nil.
func (s *FuncStore) HashSet(ctx context.Context, key string, fields map[string]string) error {
	if s.HashSetFunc != nil {
		return s.HashSetFunc(ctx, key, fields)
	}
	return s.Fallback.HashSet(ctx, key, fields)
}
