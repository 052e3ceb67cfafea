package providers

import (
	"sort"
	"strings"
	"sync"

	"github.com/luci/go-render/render"

	"github.com/km-arc/go-inject/framework/container"
)

// ── Tags ──────────────────────────────────────────────────────────────────────

// Attr is a tag attribute.
type Attr struct {
	Key   string
	Value any
}

// Tag marks a dependency so that it can be retrieved with every other
// dependency sharing the tag name. Attrs carry extra information for the
// consumer, in declaration order.
type Tag struct {
	Name  string
	Attrs []Attr
}

// NewTag creates a tag from a name and attributes.
//
//	providers.NewTag("report", providers.Attr{Key: "weight", Value: 10})
func NewTag(name string, attrs ...Attr) Tag {
	return Tag{Name: name, Attrs: attrs}
}

// Get returns the value of the attribute key.
func (t Tag) Get(key string) (any, bool) {
	for _, a := range t.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

func (t Tag) String() string {
	if len(t.Attrs) == 0 {
		return "Tag(" + t.Name + ")"
	}
	parts := make([]string, len(t.Attrs))
	for i, a := range t.Attrs {
		parts[i] = a.Key + "=" + render.Render(a.Value)
	}
	return "Tag(" + t.Name + ", " + strings.Join(parts, ", ") + ")"
}

// Tagged is the key requesting every dependency tagged with Name, optionally
// restricted by Filter. Each *Tagged is its own key: results are never cached.
type Tagged struct {
	Name   string
	Filter func(Tag) bool
}

// NewTagged creates a tagged lookup key.
//
//	deps, err := container.Resolve[*providers.TaggedDependencies](c, providers.NewTagged("report"))
func NewTagged(name string, filter ...func(Tag) bool) *Tagged {
	t := &Tagged{Name: name}
	if len(filter) > 0 {
		t.Filter = filter[0]
	}
	return t
}

func (t *Tagged) String() string { return "Tagged(" + t.Name + ")" }

func (t *Tagged) accepts(tag Tag) bool { return t.Filter == nil || t.Filter(tag) }

// ── TagProvider ───────────────────────────────────────────────────────────────

type tagEntry struct {
	key container.Key
	tag Tag
}

// TagProvider serves *Tagged keys with a lazily resolved
// *TaggedDependencies.
type TagProvider struct {
	mu sync.RWMutex

	// tag name → entries in registration order
	entries map[string][]tagEntry

	// tag name → normalized keys already tagged
	members map[string]map[container.Key]struct{}
}

// NewTagProvider creates an empty TagProvider.
func NewTagProvider() *TagProvider {
	return &TagProvider{
		entries: make(map[string][]tagEntry),
		members: make(map[string]map[container.Key]struct{}),
	}
}

// Register applies tags to key. Nothing is registered if one of the tags is
// already applied to key.
//
//	tags.Register("CpuReport", providers.NewTag("reports"))
func (p *TagProvider) Register(key container.Key, tags ...Tag) error {
	id, err := container.Normalize(key)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if _, dup := p.members[t.Name][id]; dup || seen[t.Name] {
			return &container.DuplicateTagError{Key: key, Tag: t.Name}
		}
		seen[t.Name] = true
	}
	for _, t := range tags {
		if p.members[t.Name] == nil {
			p.members[t.Name] = make(map[container.Key]struct{})
		}
		p.members[t.Name][id] = struct{}{}
		p.entries[t.Name] = append(p.entries[t.Name], tagEntry{key: key, tag: t})
	}
	return nil
}

// RegisterNames is Register with attribute-less tags.
func (p *TagProvider) RegisterNames(key container.Key, names ...string) error {
	tags := make([]Tag, len(names))
	for i, n := range names {
		tags[i] = Tag{Name: n}
	}
	return p.Register(key, tags...)
}

// TagNames returns every tag name in use, sorted.
func (p *TagProvider) TagNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.entries))
	for name := range p.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Members returns the keys tagged name and their tags, in registration
// order, without resolving anything.
func (p *TagProvider) Members(name string) ([]container.Key, []Tag) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entries := p.entries[name]
	keys := make([]container.Key, len(entries))
	tags := make([]Tag, len(entries))
	for i, e := range entries {
		keys[i], tags[i] = e.key, e.tag
	}
	return keys, tags
}

// Provide implements container.Provider.
func (p *TagProvider) Provide(r container.Resolver, key container.Key) (*container.Instance, error) {
	tagged, ok := key.(*Tagged)
	if !ok || tagged == nil {
		return nil, nil
	}

	p.mu.RLock()
	entries := p.entries[tagged.Name]
	keys := make([]container.Key, 0, len(entries))
	tags := make([]Tag, 0, len(entries))
	for _, e := range entries {
		if tagged.accepts(e.tag) {
			keys = append(keys, e.key)
			tags = append(tags, e.tag)
		}
	}
	p.mu.RUnlock()

	// Whether the tagged dependencies are singletons is their own decision.
	return &container.Instance{
		Value:     newTaggedDependencies(r, keys, tags),
		Singleton: false,
	}, nil
}
