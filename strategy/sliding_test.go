package strategy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	invalidationcache "github.com/karupanerura/invalidation-cache"
	"github.com/karupanerura/invalidation-cache/store"
	"github.com/karupanerura/invalidation-cache/store/memstore"
	"github.com/karupanerura/invalidation-cache/strategy"
)

func TestSlidingPolicy_GetResetsTTL(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	kv := memstore.New(memstore.WithClock(clock))
	policy := strategy.NewSliding(kv)

	if _, err := policy.Set(t.Context()); err != nil {
		t.Fatal(err)
	}

	clock.Advance(3 * time.Second)
	ttl, ok, err := kv.TimeToLive(t.Context(), policy.Key())
	if err != nil {
		t.Fatal(err)
	}
	if !ok || ttl != 2*time.Second {
		t.Fatalf("got TTL (%s, %v), want (2s, true) before the read", ttl, ok)
	}

	report, err := policy.Get(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != invalidationcache.OutcomeHit {
		t.Fatalf("got outcome %s, want %s", report.Outcome, invalidationcache.OutcomeHit)
	}

	ttl, ok, err = kv.TimeToLive(t.Context(), policy.Key())
	if err != nil {
		t.Fatal(err)
	}
	if !ok || ttl != strategy.DefaultTTL {
		t.Errorf("got TTL (%s, %v), want (%s, true): a hit must reset the full window", ttl, ok, strategy.DefaultTTL)
	}
}

func TestSlidingPolicy_CheckDoesNotReset(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	kv := memstore.New(memstore.WithClock(clock))
	policy := strategy.NewSliding(kv)

	if _, err := policy.Set(t.Context()); err != nil {
		t.Fatal(err)
	}
	clock.Advance(3 * time.Second)

	report, err := policy.Check(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != invalidationcache.OutcomeHit {
		t.Fatalf("got outcome %s, want %s", report.Outcome, invalidationcache.OutcomeHit)
	}

	ttl, ok, err := kv.TimeToLive(t.Context(), policy.Key())
	if err != nil {
		t.Fatal(err)
	}
	if !ok || ttl != 2*time.Second {
		t.Errorf("got TTL (%s, %v), want (2s, true): Check must not reset the countdown", ttl, ok)
	}
}

func TestSlidingPolicy_KeptAliveByReads(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	kv := memstore.New(memstore.WithClock(clock))
	policy := strategy.NewSliding(kv)

	if _, err := policy.Set(t.Context()); err != nil {
		t.Fatal(err)
	}

	// Each read lands inside the window and restarts it.
	for range 3 {
		clock.Advance(4 * time.Second)
		report, err := policy.Get(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if report.Outcome != invalidationcache.OutcomeHit {
			t.Fatalf("got outcome %s, want %s", report.Outcome, invalidationcache.OutcomeHit)
		}
	}

	// A full window without reads lets the entry lapse.
	clock.Advance(5 * time.Second)
	report, err := policy.Get(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != invalidationcache.OutcomeMiss {
		t.Errorf("got outcome %s, want %s", report.Outcome, invalidationcache.OutcomeMiss)
	}
}

func TestSlidingPolicy_LostResetRace(t *testing.T) {
	t.Parallel()

	kv := &store.FuncStore{
		Fallback: memstore.New(),
		ExpireFunc: func(context.Context, string, time.Duration) (bool, error) {
			// Simulate the key lapsing between the read and the TTL reset.
			return false, nil
		},
	}
	policy := strategy.NewSliding(kv)

	if _, err := policy.Set(t.Context()); err != nil {
		t.Fatal(err)
	}
	report, err := policy.Get(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != invalidationcache.OutcomeHit {
		t.Errorf("got outcome %s, want %s: the observed value is still served", report.Outcome, invalidationcache.OutcomeHit)
	}
	if report.Value != strategy.DefaultPayload {
		t.Errorf("got value %q, want %q", report.Value, strategy.DefaultPayload)
	}
}

func TestSlidingPolicy_StoreErrors(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("store error")
	kv := &store.FuncStore{
		Fallback: memstore.New(),
		ExpireFunc: func(context.Context, string, time.Duration) (bool, error) {
			return false, storeErr
		},
	}
	policy := strategy.NewSliding(kv)

	if _, err := policy.Set(t.Context()); err != nil {
		t.Fatal(err)
	}
	if _, err := policy.Get(t.Context()); !errors.Is(err, storeErr) {
		t.Errorf("Get: got error %v, want %v", err, storeErr)
	}
}
