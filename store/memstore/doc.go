// Package memstore provides an in-memory implementation of the KVStore
// interface for the invalidation-cache library.
//
// The store keeps scalar and hash entries with per-key TTLs, measured against
// an injected clock so that expiry behavior can be exercised in tests without
// sleeping. Expired entries are dropped lazily on access; an optional
// background janitor can purge them eagerly.
//
// It is intended as a stand-in for a remote store such as Redis during
// development and testing.
package memstore
