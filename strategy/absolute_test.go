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

func TestAbsolutePolicy_SetGet(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	kv := memstore.New(memstore.WithClock(clock))
	policy := strategy.NewAbsolute(kv)

	report, err := policy.Set(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != invalidationcache.OutcomeStored {
		t.Errorf("got outcome %s, want %s", report.Outcome, invalidationcache.OutcomeStored)
	}

	report, err = policy.Get(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != invalidationcache.OutcomeHit {
		t.Errorf("got outcome %s, want %s", report.Outcome, invalidationcache.OutcomeHit)
	}
	if report.Value != strategy.DefaultPayload {
		t.Errorf("got value %q, want %q", report.Value, strategy.DefaultPayload)
	}

	clock.Advance(6 * time.Second)
	report, err = policy.Get(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != invalidationcache.OutcomeMiss {
		t.Errorf("got outcome %s after expiry, want %s", report.Outcome, invalidationcache.OutcomeMiss)
	}
}

func TestAbsolutePolicy_TTLNeverExtends(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	kv := memstore.New(memstore.WithClock(clock))
	policy := strategy.NewAbsolute(kv)

	if _, err := policy.Set(t.Context()); err != nil {
		t.Fatal(err)
	}

	clock.Advance(2 * time.Second)
	want := 3 * time.Second
	for range 3 {
		if _, err := policy.Get(t.Context()); err != nil {
			t.Fatal(err)
		}
		if _, err := policy.Check(t.Context()); err != nil {
			t.Fatal(err)
		}

		ttl, ok, err := kv.TimeToLive(t.Context(), policy.Key())
		if err != nil {
			t.Fatal(err)
		}
		if !ok || ttl != want {
			t.Fatalf("got TTL (%s, %v), want (%s, true): reads must not extend the window", ttl, ok, want)
		}
	}
}

func TestAbsolutePolicy_SetRestartsWindow(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	kv := memstore.New(memstore.WithClock(clock))
	policy := strategy.NewAbsolute(kv)

	if _, err := policy.Set(t.Context()); err != nil {
		t.Fatal(err)
	}
	clock.Advance(4 * time.Second)
	if _, err := policy.Set(t.Context()); err != nil {
		t.Fatal(err)
	}

	ttl, ok, err := kv.TimeToLive(t.Context(), policy.Key())
	if err != nil {
		t.Fatal(err)
	}
	if !ok || ttl != strategy.DefaultTTL {
		t.Errorf("got TTL (%s, %v), want (%s, true): Set must restart the window", ttl, ok, strategy.DefaultTTL)
	}
}

func TestAbsolutePolicy_Check(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	kv := memstore.New(memstore.WithClock(clock))
	policy := strategy.NewAbsolute(kv)

	if _, err := policy.Set(t.Context()); err != nil {
		t.Fatal(err)
	}

	report, err := policy.Check(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != invalidationcache.OutcomeHit {
		t.Errorf("got outcome %s, want %s", report.Outcome, invalidationcache.OutcomeHit)
	}

	clock.Advance(6 * time.Second)
	report, err = policy.Check(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != invalidationcache.OutcomeMiss {
		t.Errorf("got outcome %s after expiry, want %s", report.Outcome, invalidationcache.OutcomeMiss)
	}
}

func TestAbsolutePolicy_CheckLostTTLRace(t *testing.T) {
	t.Parallel()

	kv := &store.FuncStore{
		Fallback: memstore.New(),
		TimeToLiveFunc: func(context.Context, string) (time.Duration, bool, error) {
			// Simulate the key lapsing between the value read and the TTL read.
			return 0, false, nil
		},
	}
	policy := strategy.NewAbsolute(kv)

	if _, err := policy.Set(t.Context()); err != nil {
		t.Fatal(err)
	}
	report, err := policy.Check(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != invalidationcache.OutcomeMiss {
		t.Errorf("got outcome %s, want %s", report.Outcome, invalidationcache.OutcomeMiss)
	}
}

func TestAbsolutePolicy_StoreErrors(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("store error")
	kv := &store.FuncStore{
		Fallback: memstore.New(),
		SetFunc: func(context.Context, string, string, time.Duration) error {
			return storeErr
		},
		GetFunc: func(context.Context, string) (string, bool, error) {
			return "", false, storeErr
		},
	}
	policy := strategy.NewAbsolute(kv)

	if _, err := policy.Set(t.Context()); !errors.Is(err, storeErr) {
		t.Errorf("Set: got error %v, want %v", err, storeErr)
	}
	if _, err := policy.Get(t.Context()); !errors.Is(err, storeErr) {
		t.Errorf("Get: got error %v, want %v", err, storeErr)
	}
	if _, err := policy.Check(t.Context()); !errors.Is(err, storeErr) {
		t.Errorf("Check: got error %v, want %v", err, storeErr)
	}
}
