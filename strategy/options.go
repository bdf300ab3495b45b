package strategy

import (
	"time"

	invalidationcache "github.com/karupanerura/invalidation-cache"
)

// DefaultTTL is the time-to-live applied by the expiration policies
// unless WithTTL overrides it.
const DefaultTTL = 5 * time.Second

// DefaultPayload is the value written by Set unless WithPayload overrides it.
const DefaultPayload = "cached payload"

// Default keys used by the policies.
const (
	DefaultAbsoluteKey      = "demo:absolute"
	DefaultSlidingKey       = "demo:sliding"
	DefaultParentKey        = "demo:parent"
	DefaultChildKey         = "demo:child"
	DefaultParentVersionKey = "demo:parent:version"
)

// Option is the interface for the options of the policy constructors.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithKey sets the primary key the policy operates on.
// For NewDependent this is the parent key.
func WithKey(key string) Option {
	return optionFunc(func(o *options) {
		o.key = key
	})
}

// WithTTL sets the time-to-live window. It must be positive.
// Only NewAbsolute and NewSliding use it.
func WithTTL(ttl time.Duration) Option {
	if ttl <= 0 {
		panic("ttl must be positive")
	}
	return optionFunc(func(o *options) {
		o.ttl = ttl
	})
}

// WithPayload sets the value written by Set.
func WithPayload(payload string) Option {
	return optionFunc(func(o *options) {
		o.payload = payload
	})
}

// WithClock sets the clock used for version stamps.
// Only NewDependent uses it.
func WithClock(clock invalidationcache.Clock) Option {
	return optionFunc(func(o *options) {
		o.clock = clock
	})
}

// WithChildKey sets the key of the derived child entry.
// Only NewDependent uses it.
func WithChildKey(key string) Option {
	return optionFunc(func(o *options) {
		o.childKey = key
	})
}

// WithVersionKey sets the key of the scalar parent-version entry.
// Only NewDependent uses it.
func WithVersionKey(key string) Option {
	return optionFunc(func(o *options) {
		o.versionKey = key
	})
}

type options struct {
	key        string
	childKey   string
	versionKey string
	ttl        time.Duration
	payload    string
	clock      invalidationcache.Clock
}

func defaultOptions(key string) options {
	return options{
		key:        key,
		childKey:   DefaultChildKey,
		versionKey: DefaultParentVersionKey,
		ttl:        DefaultTTL,
		payload:    DefaultPayload,
		clock:      invalidationcache.SystemClock,
	}
}
