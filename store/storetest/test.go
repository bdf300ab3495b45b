// storetest package provides generic test cases for key-value store implementations.
package storetest

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	invalidationcache "github.com/karupanerura/invalidation-cache"
)

var keySeq atomic.Int64

// uniqueKey returns a key that is unique across test runs, so that the suite
// can be run against a shared, persistent store without cross-talk.
func uniqueKey(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("storetest:%s:%d:%d", t.Name(), time.Now().UnixNano(), keySeq.Add(1))
}

// Run runs the generic behavior suite against the store returned by provider.
// The provider is called once per subtest; the returned release function is
// called when the subtest finishes.
func Run(t *testing.T, provider func() (invalidationcache.KVStore, func())) {
	t.Run("ScalarRoundTrip", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		key := uniqueKey(t)
		if err := kv.Set(t.Context(), key, "value1", 0); err != nil {
			t.Fatal(err)
		}

		got, ok, err := kv.Get(t.Context(), key)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("key %q must exist", key)
		}
		if got != "value1" {
			t.Errorf("got %q, want %q", got, "value1")
		}
	})
	t.Run("Miss", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		got, ok, err := kv.Get(t.Context(), uniqueKey(t))
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Errorf("missing key must not resolve, got %q", got)
		}
	})
	t.Run("Overwrite", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		key := uniqueKey(t)
		if err := kv.Set(t.Context(), key, "old", 0); err != nil {
			t.Fatal(err)
		}
		if err := kv.Set(t.Context(), key, "new", 0); err != nil {
			t.Fatal(err)
		}

		got, ok, err := kv.Get(t.Context(), key)
		if err != nil {
			t.Fatal(err)
		}
		if !ok || got != "new" {
			t.Errorf("got (%q, %v), want (%q, true)", got, ok, "new")
		}
	})
	t.Run("Delete", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		key := uniqueKey(t)
		if err := kv.Set(t.Context(), key, "value1", 0); err != nil {
			t.Fatal(err)
		}
		if err := kv.Delete(t.Context(), key); err != nil {
			t.Fatal(err)
		}

		if _, ok, err := kv.Get(t.Context(), key); err != nil {
			t.Fatal(err)
		} else if ok {
			t.Errorf("key %q must be deleted", key)
		}

		// Deleting an absent key is not an error.
		if err := kv.Delete(t.Context(), key); err != nil {
			t.Errorf("delete of absent key must not fail: %v", err)
		}
	})
	t.Run("Exists", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		key := uniqueKey(t)
		if ok, err := kv.Exists(t.Context(), key); err != nil {
			t.Fatal(err)
		} else if ok {
			t.Errorf("key %q must not exist yet", key)
		}

		if err := kv.Set(t.Context(), key, "value1", 0); err != nil {
			t.Fatal(err)
		}
		if ok, err := kv.Exists(t.Context(), key); err != nil {
			t.Fatal(err)
		} else if !ok {
			t.Errorf("key %q must exist", key)
		}
	})
	t.Run("TTLBounded", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		key := uniqueKey(t)
		if err := kv.Set(t.Context(), key, "value1", time.Hour); err != nil {
			t.Fatal(err)
		}

		ttl, ok, err := kv.TimeToLive(t.Context(), key)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatal("key written with a TTL must report one")
		}
		if ttl <= 0 || ttl > time.Hour {
			t.Errorf("remaining TTL %s must be in (0, 1h]", ttl)
		}
	})
	t.Run("NoTTL", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		key := uniqueKey(t)
		if err := kv.Set(t.Context(), key, "value1", 0); err != nil {
			t.Fatal(err)
		}

		if _, ok, err := kv.TimeToLive(t.Context(), key); err != nil {
			t.Fatal(err)
		} else if ok {
			t.Error("key written without a TTL must not report one")
		}
	})
	t.Run("ExpireResetsTTL", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		key := uniqueKey(t)
		if err := kv.Set(t.Context(), key, "value1", 0); err != nil {
			t.Fatal(err)
		}

		ok, err := kv.Expire(t.Context(), key, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatal("expire on a live key must succeed")
		}

		ttl, ok, err := kv.TimeToLive(t.Context(), key)
		if err != nil {
			t.Fatal(err)
		}
		if !ok || ttl <= 0 || ttl > time.Hour {
			t.Errorf("remaining TTL (%s, %v) must be in (0, 1h]", ttl, ok)
		}

		// The value must survive the TTL reset.
		got, ok, err := kv.Get(t.Context(), key)
		if err != nil {
			t.Fatal(err)
		}
		if !ok || got != "value1" {
			t.Errorf("got (%q, %v), want (%q, true)", got, ok, "value1")
		}
	})
	t.Run("ExpireMissing", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		ok, err := kv.Expire(t.Context(), uniqueKey(t), time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("expire on a missing key must report false")
		}
	})
	t.Run("HashRoundTrip", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		key := uniqueKey(t)
		fields := map[string]string{"value": "v", "parentVersion": "42"}
		if err := kv.HashSet(t.Context(), key, fields); err != nil {
			t.Fatal(err)
		}

		got := map[string]string{}
		for field := range fields {
			v, ok, err := kv.HashGet(t.Context(), key, field)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Fatalf("field %q must exist", field)
			}
			got[field] = v
		}
		if df := cmp.Diff(fields, got); df != "" {
			t.Errorf("fields diff=%s", df)
		}

		if ok, err := kv.Exists(t.Context(), key); err != nil {
			t.Fatal(err)
		} else if !ok {
			t.Error("hash key must report existence")
		}
	})
	t.Run("HashFieldMiss", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		key := uniqueKey(t)
		if err := kv.HashSet(t.Context(), key, map[string]string{"value": "v"}); err != nil {
			t.Fatal(err)
		}

		if _, ok, err := kv.HashGet(t.Context(), key, "other"); err != nil {
			t.Fatal(err)
		} else if ok {
			t.Error("absent field must not resolve")
		}
	})
	t.Run("HashMiss", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		if _, ok, err := kv.HashGet(t.Context(), uniqueKey(t), "value"); err != nil {
			t.Fatal(err)
		} else if ok {
			t.Error("absent hash must not resolve")
		}
	})
	t.Run("HashDelete", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		key := uniqueKey(t)
		if err := kv.HashSet(t.Context(), key, map[string]string{"value": "v"}); err != nil {
			t.Fatal(err)
		}
		if err := kv.Delete(t.Context(), key); err != nil {
			t.Fatal(err)
		}

		if ok, err := kv.Exists(t.Context(), key); err != nil {
			t.Fatal(err)
		} else if ok {
			t.Error("deleted hash must not exist")
		}
	})
	t.Run("WrongType", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		key := uniqueKey(t)
		if err := kv.Set(t.Context(), key, "value1", 0); err != nil {
			t.Fatal(err)
		}

		if _, _, err := kv.HashGet(t.Context(), key, "value"); err == nil {
			t.Error("hash read of a scalar key must fail")
		}
	})
	t.Run("Concurrent", func(t *testing.T) {
		t.Parallel()

		kv, release := provider()
		defer release()

		prefix := uniqueKey(t)
		var eg errgroup.Group
		for i := range 8 {
			eg.Go(func() error {
				for j := range 64 {
					key := fmt.Sprintf("%s:%d:%d", prefix, i, j)
					if err := kv.Set(t.Context(), key, "value1", time.Hour); err != nil {
						return err
					}
					if got, ok, err := kv.Get(t.Context(), key); err != nil {
						return err
					} else if !ok || got != "value1" {
						return fmt.Errorf("got (%q, %v), want (%q, true)", got, ok, "value1")
					}
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			t.Error(err)
		}
	})
}
