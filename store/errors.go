package store

import "errors"

var (
	ErrUnavailable = errors.New("key-value store is unavailable")
	ErrWrongType   = errors.New("key holds a value of the wrong type")
)
