package strategy

import (
	"context"
	"fmt"
	"time"

	invalidationcache "github.com/karupanerura/invalidation-cache"
)

// AbsolutePolicy caches a value with a fixed time-to-live.
// The expiry window starts at write time and is never extended by reads;
// re-invoking Set restarts it.
type AbsolutePolicy struct {
	store   invalidationcache.KVStore
	key     string
	ttl     time.Duration
	payload string
}

var _ invalidationcache.Strategy = (*AbsolutePolicy)(nil)

// NewAbsolute creates a new absolute-expiration policy over the given store.
func NewAbsolute(store invalidationcache.KVStore, opts ...Option) *AbsolutePolicy {
	options := defaultOptions(DefaultAbsoluteKey)
	for _, opt := range opts {
		opt.apply(&options)
	}
	return &AbsolutePolicy{
		store:   store,
		key:     options.key,
		ttl:     options.ttl,
		payload: options.payload,
	}
}

// Name returns the strategy label.
func (p *AbsolutePolicy) Name() string {
	return "absolute expiration"
}

// Key returns the key the policy operates on.
func (p *AbsolutePolicy) Key() string {
	return p.key
}

// Set writes the payload with the fixed TTL, restarting the expiry window.
func (p *AbsolutePolicy) Set(ctx context.Context) (*invalidationcache.Report, error) {
	if err := p.store.Set(ctx, p.key, p.payload, p.ttl); err != nil {
		return nil, err
	}
	return &invalidationcache.Report{
		Outcome: invalidationcache.OutcomeStored,
		Message: fmt.Sprintf("stored %q at %q with a fixed %s TTL", p.payload, p.key, p.ttl),
	}, nil
}

// Get looks the value up without touching its TTL.
func (p *AbsolutePolicy) Get(ctx context.Context) (*invalidationcache.Report, error) {
	value, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &invalidationcache.Report{
			Outcome: invalidationcache.OutcomeMiss,
			Message: fmt.Sprintf("miss: %q is not cached (expired or never set)", p.key),
		}, nil
	}
	return &invalidationcache.Report{
		Outcome: invalidationcache.OutcomeHit,
		Value:   value,
		Message: fmt.Sprintf("hit: %q = %q (TTL untouched)", p.key, value),
	}, nil
}

// Check reports the value and its remaining TTL without mutating either.
func (p *AbsolutePolicy) Check(ctx context.Context) (*invalidationcache.Report, error) {
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
		// The key resolved a moment ago but its countdown lapsed server-side
		// before the TTL read.
		return &invalidationcache.Report{
			Outcome: invalidationcache.OutcomeMiss,
			Message: fmt.Sprintf("%q resolved but its TTL already lapsed", p.key),
		}, nil
	}
	return &invalidationcache.Report{
		Outcome: invalidationcache.OutcomeHit,
		Value:   value,
		Message: fmt.Sprintf("%q = %q with %s remaining", p.key, value, ttl),
	}, nil
}
