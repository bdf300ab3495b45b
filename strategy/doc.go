// Package strategy provides the cache-invalidation strategies of the
// invalidation-cache library.
//
// Three policies implement the Strategy interface over an injected KVStore:
// AbsolutePolicy writes a value with a fixed time-to-live, SlidingPolicy
// resets the time-to-live on every successful read, and DependentPolicy
// keeps a derived child entry linked to a versioned parent entry and evicts
// the child when the parent version advances.
//
// The policies hold no state beyond their configuration; every operation
// re-reads the store, so independent instances sharing the same keys observe
// the same data. Misses and stale entries are reported as normal results;
// only store failures are returned as errors.
package strategy
