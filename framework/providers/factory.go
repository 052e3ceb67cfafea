package providers

import (
	"sync"

	"github.com/km-arc/go-inject/framework/container"
)

// Factory builds a dependency. args holds the arguments of a parameterized
// request (container.Build); for factories registered with wantsKey the
// requested base key comes first in args.Positional.
type Factory func(r container.Resolver, args container.Args) (any, error)

// factoryEntry holds a registered factory and how its result is scoped.
type factoryEntry struct {
	factory   Factory
	singleton bool
	wantsKey  bool
}

// FactoryProvider builds dependencies from registered factories.
//
//	factories := providers.NewFactoryProvider()
//	factories.Register("mailer", func(r container.Resolver, _ container.Args) (any, error) {
//	    cfg, err := container.Resolve[*config.Config](r, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return mail.NewSMTP(cfg.Mail), nil
//	}, true, false)
type FactoryProvider struct {
	mu        sync.RWMutex
	factories map[container.Key]*factoryEntry
	order     []container.Key
}

// NewFactoryProvider creates an empty FactoryProvider.
func NewFactoryProvider() *FactoryProvider {
	return &FactoryProvider{factories: make(map[container.Key]*factoryEntry)}
}

// Register binds factory to key.
//
// singleton marks the result for caching by the container. wantsKey makes
// the factory receive the requested key as first positional argument, so one
// factory can serve several keys.
func (p *FactoryProvider) Register(key container.Key, factory Factory, singleton, wantsKey bool) error {
	if key == nil {
		return &container.InvalidFactoryError{Key: key, Reason: "nil key"}
	}
	if factory == nil {
		return &container.InvalidFactoryError{Key: key, Reason: "factory is not callable"}
	}
	switch key.(type) {
	case container.Build, *container.Build:
		return &container.InvalidFactoryError{Key: key, Reason: "parameterized keys cannot be registered"}
	}
	if _, err := container.Normalize(key); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.factories[key]; ok {
		return &container.DuplicateKeyError{Key: key}
	}
	p.factories[key] = &factoryEntry{factory: factory, singleton: singleton, wantsKey: wantsKey}
	p.order = append(p.order, key)
	return nil
}

// Registered reports whether a factory is bound to key.
func (p *FactoryProvider) Registered(key container.Key) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.factories[container.BaseKey(key)]
	return ok
}

// Keys returns the registered keys in registration order.
func (p *FactoryProvider) Keys() []container.Key {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]container.Key, len(p.order))
	copy(out, p.order)
	return out
}

// Provide implements container.Provider.
func (p *FactoryProvider) Provide(r container.Resolver, key container.Key) (*container.Instance, error) {
	base := key
	var args container.Args
	switch k := key.(type) {
	case container.Build:
		base, args = k.ID, k.BuildArgs()
	case *container.Build:
		base, args = k.ID, k.BuildArgs()
	}

	p.mu.RLock()
	f, ok := p.factories[base]
	p.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if f.wantsKey {
		args.Positional = append([]any{base}, args.Positional...)
	}
	v, err := f.factory(r, args)
	if err != nil {
		return nil, err
	}
	return &container.Instance{Value: v, Singleton: f.singleton}, nil
}

// ── Factory helpers ───────────────────────────────────────────────────────────

// Constructor adapts a constructor that ignores build arguments.
//
//	factories.Register(container.TypeKey[*Service](), providers.Constructor(NewService), true, false)
func Constructor[T any](fn func(r container.Resolver) (T, error)) Factory {
	return func(r container.Resolver, _ container.Args) (any, error) {
		return fn(r)
	}
}

// Value returns a factory that always returns v.
func Value(v any) Factory {
	return func(container.Resolver, container.Args) (any, error) { return v, nil }
}
