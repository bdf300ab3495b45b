package invalidationcache

import (
	"context"
	"time"
)

// Outcome classifies the result of a strategy operation.
type Outcome uint8

const (
	// OutcomeStored indicates that Set wrote the cached entry.
	OutcomeStored Outcome = iota

	// OutcomeHit indicates that a live, fresh value was served.
	OutcomeHit

	// OutcomeMiss indicates that the requested entry is absent.
	// A miss is an expected result, not an error.
	OutcomeMiss

	// OutcomeStale indicates that a dependent entry no longer matches its
	// parent version. Get evicts the entry when it reports this outcome;
	// Check only reports it.
	OutcomeStale
)

// String returns a short label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeStored:
		return "stored"
	case OutcomeHit:
		return "hit"
	case OutcomeMiss:
		return "miss"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Report is the result of a single strategy operation.
type Report struct {
	// Outcome classifies the result.
	Outcome Outcome

	// Value is the cached value that was served, if any.
	// It is empty unless Outcome is OutcomeHit.
	Value string

	// Message is a one-line human-readable description of what happened.
	// Every operation produces one; there is no silent result.
	Message string
}

// String returns the human-readable message.
func (r *Report) String() string {
	return r.Message
}

// Strategy is the common contract of the cache-invalidation strategies.
// Implementations hold no state beyond their configuration: every operation
// re-reads the backing store, so independent instances sharing the same keys
// cannot diverge.
type Strategy interface {
	// Name returns a human-readable label for the strategy.
	// It is constant for the lifetime of the strategy.
	Name() string

	// Key returns the primary key the strategy operates on.
	// It is constant for the lifetime of the strategy.
	Key() string

	// Set writes or refreshes the cached entry.
	// It fails only when the backing store is unavailable.
	Set(ctx context.Context) (*Report, error)

	// Get reads the cached entry for normal consumption. Depending on the
	// strategy it may refresh the entry's TTL or evict stale data as a side
	// effect. A miss is reported in the Report, not returned as an error.
	Get(ctx context.Context) (*Report, error)

	// Check inspects the current value and its remaining lifetime or version
	// linkage without mutating anything. It reports staleness but never
	// deletes or refreshes.
	Check(ctx context.Context) (*Report, error)
}

// KVStore is the narrow interface to the external key-value store that the
// strategies depend on. The store serializes each primitive operation but
// offers no multi-key transactions; the strategies are written to tolerate
// that. Implementations must be safe for concurrent use.
type KVStore interface {
	// Get retrieves the value stored at key.
	// It returns ok=false when the key is absent or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value at key. A positive ttl bounds the entry's lifetime;
	// ttl <= 0 stores it without expiry. An existing entry is overwritten
	// and its TTL replaced.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the key and anything stored under it.
	// Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the key currently holds a live entry.
	Exists(ctx context.Context, key string) (bool, error)

	// TimeToLive returns the remaining lifetime of the key.
	// It returns ok=false when the key is absent or has no expiry.
	TimeToLive(ctx context.Context, key string) (ttl time.Duration, ok bool, err error)

	// Expire resets the key's TTL without rewriting its value.
	// A non-positive ttl removes the key instead.
	// It returns ok=false when the key is absent.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// HashGet retrieves a single field of the hash stored at key.
	// It returns ok=false when the key or the field is absent.
	HashGet(ctx context.Context, key, field string) (value string, ok bool, err error)

	// HashSet stores the given fields in the hash at key, creating the hash
	// if it does not exist and overwriting fields that do.
	HashSet(ctx context.Context, key string, fields map[string]string) error
}
