package memstore

import (
	"time"

	invalidationcache "github.com/karupanerura/invalidation-cache"
)

// Option is the interface for the options of the in-memory store.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithClock sets the clock used for TTL bookkeeping.
func WithClock(clock invalidationcache.Clock) Option {
	return optionFunc(func(o *options) {
		o.clock = clock
	})
}

// WithJanitorInterval enables a background goroutine that purges expired
// entries every interval. Without it, expired entries are only dropped
// lazily when they are accessed. The interval must be positive.
// Close must be called to stop the janitor.
func WithJanitorInterval(interval time.Duration) Option {
	if interval <= 0 {
		panic("janitor interval must be positive")
	}
	return optionFunc(func(o *options) {
		o.janitorInterval = interval
	})
}

type options struct {
	clock           invalidationcache.Clock
	janitorInterval time.Duration
}

func defaultOptions() options {
	return options{
		clock: invalidationcache.SystemClock,
	}
}
