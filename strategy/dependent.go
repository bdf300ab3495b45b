package strategy

import (
	"context"
	"fmt"
	"strconv"

	invalidationcache "github.com/karupanerura/invalidation-cache"
)

// Field names of the child hash entry.
const (
	childValueField   = "value"
	childVersionField = "parentVersion"
)

// DependentPolicy maintains a parent value with a monotonically advancing
// version and a derived child value stamped with the parent version it was
// computed from. A read of the child compares the two versions and evicts
// the child when they no longer match.
//
// Three store entries are involved: the parent value, a separate scalar
// holding the current parent version, and the child hash with "value" and
// "parentVersion" fields. The version lives apart from the parent value
// because the store cannot atomically co-locate the two; the staleness check
// on read is what the protocol's correctness rests on, not write atomicity.
//
// Versions are wall-clock stamps in milliseconds since the Unix epoch. Two
// Set calls landing in the same millisecond produce equal stamps, so the
// second write is indistinguishable from the first to the staleness check.
// That gap is kept as-is: wall-clock stamps stay comparable across
// independent writers without any coordination.
type DependentPolicy struct {
	store      invalidationcache.KVStore
	parentKey  string
	childKey   string
	versionKey string
	payload    string
	clock      invalidationcache.Clock
}

var _ invalidationcache.Strategy = (*DependentPolicy)(nil)

// NewDependent creates a new dependent-cache policy over the given store.
func NewDependent(store invalidationcache.KVStore, opts ...Option) *DependentPolicy {
	options := defaultOptions(DefaultParentKey)
	for _, opt := range opts {
		opt.apply(&options)
	}
	return &DependentPolicy{
		store:      store,
		parentKey:  options.key,
		childKey:   options.childKey,
		versionKey: options.versionKey,
		payload:    options.payload,
		clock:      options.clock,
	}
}

// Name returns the strategy label.
func (p *DependentPolicy) Name() string {
	return "dependent cache"
}

// Key returns the parent key.
func (p *DependentPolicy) Key() string {
	return p.parentKey
}

// Set overwrites the parent value and version, and seeds the child only if
// it does not exist yet (first-write-wins). An existing child is left
// untouched, which makes it stale relative to the just-written version.
//
// The three writes are sequential and independently visible; the store
// offers no multi-key transaction and none is assumed.
func (p *DependentPolicy) Set(ctx context.Context) (*invalidationcache.Report, error) {
	version := p.clock.Now().UnixMilli()

	if err := p.store.Set(ctx, p.parentKey, p.payload, 0); err != nil {
		return nil, err
	}
	if err := p.store.Set(ctx, p.versionKey, strconv.FormatInt(version, 10), 0); err != nil {
		return nil, err
	}

	exists, err := p.store.Exists(ctx, p.childKey)
	if err != nil {
		return nil, err
	}
	if exists {
		return &invalidationcache.Report{
			Outcome: invalidationcache.OutcomeStored,
			Message: fmt.Sprintf("parent advanced to version %d; existing child is now stale", version),
		}, nil
	}

	child := fmt.Sprintf("derived from %s", p.payload)
	if err := p.store.HashSet(ctx, p.childKey, map[string]string{
		childValueField:   child,
		childVersionField: strconv.FormatInt(version, 10),
	}); err != nil {
		return nil, err
	}
	return &invalidationcache.Report{
		Outcome: invalidationcache.OutcomeStored,
		Message: fmt.Sprintf("parent stored at version %d; child seeded with the same version", version),
	}, nil
}

// Get reads the child and serves it only while it is fresh: the child, the
// parent version, and the child's linked version must all exist and the two
// versions must match. Any other state evicts the child.
func (p *DependentPolicy) Get(ctx context.Context) (*invalidationcache.Report, error) {
	parentVersion, parentOK, err := p.parentVersion(ctx)
	if err != nil {
		return nil, err
	}

	childValue, childOK, err := p.store.HashGet(ctx, p.childKey, childValueField)
	if err != nil {
		return nil, err
	}
	if !childOK {
		return &invalidationcache.Report{
			Outcome: invalidationcache.OutcomeMiss,
			Message: fmt.Sprintf("child miss: nothing cached at %q, call Set to seed it", p.childKey),
		}, nil
	}

	linkedVersion, linkedOK, err := p.childVersion(ctx)
	if err != nil {
		return nil, err
	}
	if !parentOK || !linkedOK || linkedVersion != parentVersion {
		if err := p.store.Delete(ctx, p.childKey); err != nil {
			return nil, err
		}
		return &invalidationcache.Report{
			Outcome: invalidationcache.OutcomeStale,
			Message: fmt.Sprintf("stale child evicted: linked version %s does not match parent version %s",
				formatVersion(linkedVersion, linkedOK), formatVersion(parentVersion, parentOK)),
		}, nil
	}

	return &invalidationcache.Report{
		Outcome: invalidationcache.OutcomeHit,
		Value:   childValue,
		Message: fmt.Sprintf("fresh: %q = %q at version %d", p.childKey, childValue, parentVersion),
	}, nil
}

// Check reports the parent value, both versions, and the child value, and
// evaluates the same staleness predicate as Get, but never deletes anything.
func (p *DependentPolicy) Check(ctx context.Context) (*invalidationcache.Report, error) {
	parentValue, parentValueOK, err := p.store.Get(ctx, p.parentKey)
	if err != nil {
		return nil, err
	}
	parentVersion, parentOK, err := p.parentVersion(ctx)
	if err != nil {
		return nil, err
	}

	childValue, childOK, err := p.store.HashGet(ctx, p.childKey, childValueField)
	if err != nil {
		return nil, err
	}
	if !childOK {
		return &invalidationcache.Report{
			Outcome: invalidationcache.OutcomeMiss,
			Message: fmt.Sprintf("parent %s at version %s; no child cached at %q",
				formatValue(parentValue, parentValueOK), formatVersion(parentVersion, parentOK), p.childKey),
		}, nil
	}

	linkedVersion, linkedOK, err := p.childVersion(ctx)
	if err != nil {
		return nil, err
	}
	if !parentOK || !linkedOK || linkedVersion != parentVersion {
		return &invalidationcache.Report{
			Outcome: invalidationcache.OutcomeStale,
			Message: fmt.Sprintf("parent %s at version %s; child %q linked to version %s is stale, the next Get will evict it",
				formatValue(parentValue, parentValueOK), formatVersion(parentVersion, parentOK),
				childValue, formatVersion(linkedVersion, linkedOK)),
		}, nil
	}

	return &invalidationcache.Report{
		Outcome: invalidationcache.OutcomeHit,
		Value:   childValue,
		Message: fmt.Sprintf("parent %s at version %d; child %q is fresh",
			formatValue(parentValue, parentValueOK), parentVersion, childValue),
	}, nil
}

// parentVersion reads the scalar parent-version entry.
// A value that fails to parse as an integer is treated as absent.
func (p *DependentPolicy) parentVersion(ctx context.Context) (int64, bool, error) {
	raw, ok, err := p.store.Get(ctx, p.versionKey)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	return parseVersion(raw)
}

// childVersion reads the child's linked-version field.
// A value that fails to parse as an integer is treated as absent.
func (p *DependentPolicy) childVersion(ctx context.Context) (int64, bool, error) {
	raw, ok, err := p.store.HashGet(ctx, p.childKey, childVersionField)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	return parseVersion(raw)
}

func parseVersion(raw string) (int64, bool, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return v, true, nil
}

func formatVersion(v int64, ok bool) string {
	if !ok {
		return "<absent>"
	}
	return strconv.FormatInt(v, 10)
}

func formatValue(v string, ok bool) string {
	if !ok {
		return "<absent>"
	}
	return strconv.Quote(v)
}
