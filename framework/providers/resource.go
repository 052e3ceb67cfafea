package providers

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/km-arc/go-inject/framework/container"
)

var namespacePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Getter looks a resource up by name. It returns an error matching
// container.ErrResourceNotFound when it does not know name.
type Getter func(name string) (any, error)

type resourceGetter struct {
	get           Getter
	namespace     string
	priority      float64
	omitNamespace bool
	singleton     bool
}

func (g *resourceGetter) fetch(name string) (any, error) {
	if g.omitNamespace {
		return g.get(name)
	}
	return g.get(g.namespace + ":" + name)
}

// ResourceProvider serves string keys of the form "<namespace>:<name>",
// usually configuration parameters.
//
//	resources := providers.NewResourceProvider()
//	resources.Register(config.Getter, "env", 0, true, true)
//	port, err := c.Get("env:APP_PORT")
//
// Several getters may share a namespace: they are asked from the highest
// priority to the lowest until one knows the name.
type ResourceProvider struct {
	mu      sync.RWMutex
	getters map[string][]*resourceGetter
}

// NewResourceProvider creates an empty ResourceProvider.
func NewResourceProvider() *ResourceProvider {
	return &ResourceProvider{getters: make(map[string][]*resourceGetter)}
}

// Register adds getter to namespace.
//
// omitNamespace strips "<namespace>:" from the name given to getter.
// singleton marks the returned resources for caching by the container.
func (p *ResourceProvider) Register(getter Getter, namespace string, priority float64, omitNamespace, singleton bool) error {
	if !namespacePattern.MatchString(namespace) {
		return &container.InvalidNamespaceError{Namespace: namespace}
	}
	if getter == nil {
		return &container.InvalidFactoryError{Key: namespace, Reason: "getter is not callable"}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	getters := p.getters[namespace]
	for _, g := range getters {
		if g.priority == priority {
			return &container.PriorityConflictError{Namespace: namespace, Priority: priority}
		}
	}

	// highest priority first
	idx := sort.Search(len(getters), func(i int) bool { return getters[i].priority < priority })
	getters = append(getters, nil)
	copy(getters[idx+1:], getters[idx:])
	getters[idx] = &resourceGetter{
		get:           getter,
		namespace:     namespace,
		priority:      priority,
		omitNamespace: omitNamespace,
		singleton:     singleton,
	}
	p.getters[namespace] = getters
	return nil
}

// Namespaces returns every namespace with at least one getter, sorted.
func (p *ResourceProvider) Namespaces() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.getters))
	for ns := range p.getters {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Provide implements container.Provider.
func (p *ResourceProvider) Provide(_ container.Resolver, key container.Key) (*container.Instance, error) {
	s, ok := key.(string)
	if !ok {
		return nil, nil
	}
	namespace, name, ok := strings.Cut(s, ":")
	if !ok {
		return nil, nil
	}

	p.mu.RLock()
	getters := p.getters[namespace]
	p.mu.RUnlock()

	for _, g := range getters {
		v, err := g.fetch(name)
		if errors.Is(err, container.ErrResourceNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &container.Instance{Value: v, Singleton: g.singleton}, nil
	}
	return nil, nil
}

// MapGetter serves resources from a fixed map.
//
//	resources.Register(providers.MapGetter(map[string]any{"host": "localhost"}), "conf", 0, true, true)
func MapGetter(values map[string]any) Getter {
	return func(name string) (any, error) {
		v, ok := values[name]
		if !ok {
			return nil, container.ErrResourceNotFound
		}
		return v, nil
	}
}
