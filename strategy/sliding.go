package strategy

import (
	"context"
	"fmt"
	"time"

	invalidationcache "github.com/karupanerura/invalidation-cache"
)

// SlidingPolicy caches a value whose time-to-live is reset to the full
// window on every successful read. The entry only lapses after a full
// window passes without a Get.
type SlidingPolicy struct {
	store   invalidationcache.KVStore
	key     string
	ttl     time.Duration
	payload string
}

var _ invalidationcache.Strategy = (*SlidingPolicy)(nil)

// NewSliding creates a new sliding-expiration policy over the given store.
func NewSliding(store invalidationcache.KVStore, opts ...Option) *SlidingPolicy {
	options := defaultOptions(DefaultSlidingKey)
	for _, opt := range opts {
		opt.apply(&options)
	}
	return &SlidingPolicy{
		store:   store,
		key:     options.key,
		ttl:     options.ttl,
		payload: options.payload,
	}
}

// Name returns the strategy label.
func (p *SlidingPolicy) Name() string {
	return "sliding expiration"
}

// Key returns the key the policy operates on.
func (p *SlidingPolicy) Key() string {
	return p.key
}

// Set writes the payload with the full TTL window.
func (p *SlidingPolicy) Set(ctx context.Context) (*invalidationcache.Report, error) {
	if err := p.store.Set(ctx, p.key, p.payload, p.ttl); err != nil {
		return nil, err
	}
	return &invalidationcache.Report{
		Outcome: invalidationcache.OutcomeStored,
		Message: fmt.Sprintf("stored %q at %q with a sliding %s TTL", p.payload, p.key, p.ttl),
	}, nil
}

// Get looks the value up and, on a hit, resets its TTL to the full window.
func (p *SlidingPolicy) Get(ctx context.Context) (*invalidationcache.Report, error) {
	value, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &invalidationcache.Report{
			Outcome: invalidationcache.OutcomeMiss,
			Message: fmt.Sprintf("miss: %q is not cached (no read kept it alive)", p.key),
		}, nil
	}

	ok, err = p.store.Expire(ctx, p.key, p.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The key expired between the read and the TTL reset.
		return &invalidationcache.Report{
			Outcome: invalidationcache.OutcomeHit,
			Value:   value,
			Message: fmt.Sprintf("hit: %q = %q, but it lapsed before the TTL could be reset", p.key, value),
		}, nil
	}
	return &invalidationcache.Report{
		Outcome: invalidationcache.OutcomeHit,
		Value:   value,
		Message: fmt.Sprintf("hit: %q = %q (TTL reset to %s)", p.key, value, p.ttl),
	}, nil
}

// Check reports the value and its remaining TTL without resetting the
// countdown, so decay can be observed without disturbing it.
func (p *SlidingPolicy) Check(ctx context.Context) (*invalidationcache.Report, error) {
	value, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &invalidationcache.Report{
			Outcome: invalidationcache.OutcomeMiss,
			Message: fmt.Sprintf("%q is expired or missing", p.key),
		}, nil
	}

	ttl, hasTTL, err := p.store.TimeToLive(ctx, p.key)
	if err != nil {
		return nil, err
	}
	if !hasTTL {
		return &invalidationcache.Report{
			Outcome: invalidationcache.OutcomeMiss,
			Message: fmt.Sprintf("%q resolved but its TTL already lapsed", p.key),
		}, nil
	}
	return &invalidationcache.Report{
		Outcome: invalidationcache.OutcomeHit,
		Value:   value,
		Message: fmt.Sprintf("%q = %q with %s remaining (not reset)", p.key, value, ttl),
	}, nil
}
