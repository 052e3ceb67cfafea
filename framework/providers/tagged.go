package providers

import (
	"sync"

	"github.com/km-arc/go-inject/framework/container"
)

// TaggedDependencies is the ordered result of a *Tagged lookup.
//
// Dependencies are resolved on first access to their position and kept, so
// iterating several times builds each of them at most once. Tags are
// available without resolving anything. Safe for concurrent use.
type TaggedDependencies struct {
	r    container.Resolver
	keys []container.Key
	tags []Tag

	mu       sync.Mutex
	values   []any
	resolved []bool
}

func newTaggedDependencies(r container.Resolver, keys []container.Key, tags []Tag) *TaggedDependencies {
	return &TaggedDependencies{
		r:        r,
		keys:     keys,
		tags:     tags,
		values:   make([]any, len(keys)),
		resolved: make([]bool, len(keys)),
	}
}

// Len returns the number of tagged dependencies.
func (d *TaggedDependencies) Len() int { return len(d.keys) }

// Tags returns the tags in dependency order.
func (d *TaggedDependencies) Tags() []Tag {
	out := make([]Tag, len(d.tags))
	copy(out, d.tags)
	return out
}

// Keys returns the dependency keys in order.
func (d *TaggedDependencies) Keys() []container.Key {
	out := make([]container.Key, len(d.keys))
	copy(out, d.keys)
	return out
}

// At returns the dependency at position i, resolving it on first access.
func (d *TaggedDependencies) At(i int) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.resolved[i] {
		return d.values[i], nil
	}
	v, err := d.r.Get(d.keys[i])
	if err != nil {
		return nil, err
	}
	d.values[i] = v
	d.resolved[i] = true
	return v, nil
}

// Each calls fn with every dependency and its tag, in order, stopping at the
// first error.
func (d *TaggedDependencies) Each(fn func(v any, t Tag) error) error {
	for i := range d.keys {
		v, err := d.At(i)
		if err != nil {
			return err
		}
		if err := fn(v, d.tags[i]); err != nil {
			return err
		}
	}
	return nil
}

// Values resolves and returns every dependency in order.
func (d *TaggedDependencies) Values() ([]any, error) {
	out := make([]any, 0, len(d.keys))
	err := d.Each(func(v any, _ Tag) error {
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
