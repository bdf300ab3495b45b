// Package redisstore provides a Redis-backed implementation of the KVStore
// interface for the invalidation-cache library, built on
// github.com/redis/go-redis/v9.
//
// The adapter does not own the Redis connection: the caller injects a shared
// client and remains responsible for closing it. Operation failures other
// than a missing key are reported wrapping store.ErrUnavailable.
package redisstore
