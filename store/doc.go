// Package store provides helpers around the KVStore interface of the
// invalidation-cache library.
//
// This package contains FuncStore, which allows building custom store
// implementations (or overriding individual operations of an existing one)
// using function callbacks.
//
// This package also defines common error types for store operations:
// ErrUnavailable and ErrWrongType.
package store
