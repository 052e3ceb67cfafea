package app

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/km-arc/go-inject/framework/container"
)

// ── Module interface ──────────────────────────────────────────────────────────

// Module groups related registrations.
//
// Every module must implement at minimum Register().
// Boot() is called after ALL modules have been registered, making it safe
// to resolve other dependencies inside Boot().
//
//	type MailModule struct{ app.BaseModule }
//
//	func (m *MailModule) Register(a *app.Application) error {
//	    return a.Singleton("mailer", func(r container.Resolver, _ container.Args) (any, error) {
//	        host, err := r.Get("env:MAIL_HOST")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return mail.NewSMTP(host.(string)), nil
//	    })
//	}
type Module interface {
	// Register adds factories, resources and tags to the application.
	// Do NOT resolve dependencies here, use Boot() for that.
	Register(a *Application) error

	// Boot is called after all modules are registered.
	Boot(a *Application) error

	// Provides returns the keys this module registers.
	// Only used for deferred loading.
	Provides() []container.Key

	// IsDeferred returns true if this module should be registered lazily,
	// when one of its Provides() keys is first requested.
	IsDeferred() bool
}

// ── BaseModule ────────────────────────────────────────────────────────────────

// BaseModule is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
//
//	type MyModule struct{ app.BaseModule }
//	func (m *MyModule) Register(a *app.Application) error { ... }
type BaseModule struct{}

func (m *BaseModule) Boot(_ *Application) error { return nil }
func (m *BaseModule) Provides() []container.Key { return nil }
func (m *BaseModule) IsDeferred() bool          { return false }

// ── Registry ──────────────────────────────────────────────────────────────────

// Registry manages registration and booting of modules, including deferred
// ones. Modules are identified by value, so use pointer modules.
type Registry struct {
	app        *Application
	mu         sync.Mutex
	eager      []Module
	pending    map[container.Key]Module // normalized key → deferred module
	booted     bool
	registered map[Module]bool
	deferred   *deferredProvider
}

// NewRegistry creates a registry bound to a.
func NewRegistry(a *Application) *Registry {
	r := &Registry{
		app:        a,
		pending:    make(map[container.Key]Module),
		registered: make(map[Module]bool),
	}
	r.deferred = &deferredProvider{registry: r}
	return r
}

// Register adds a module and calls its Register() method (unless deferred).
// Registering the same module twice is a no-op.
func (r *Registry) Register(m Module) error {
	r.mu.Lock()
	if r.registered[m] {
		r.mu.Unlock()
		return nil
	}
	r.registered[m] = true

	if m.IsDeferred() {
		defer r.mu.Unlock()
		for _, k := range m.Provides() {
			id, err := container.Normalize(k)
			if err != nil {
				return errors.Wrapf(err, "app: deferred module %T", m)
			}
			r.pending[id] = m
		}
		return nil
	}
	booted := r.booted
	r.mu.Unlock()

	if err := m.Register(r.app); err != nil {
		return errors.Wrapf(err, "app: register module %T", m)
	}
	r.mu.Lock()
	r.eager = append(r.eager, m)
	r.mu.Unlock()

	// If already booted, boot this module immediately
	if booted {
		return r.boot(m)
	}
	return nil
}

// Boot calls Boot() on all eager modules. Later calls are no-ops.
func (r *Registry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	eager := append([]Module(nil), r.eager...)
	r.mu.Unlock()

	for _, m := range eager {
		if err := r.boot(m); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) boot(m Module) error {
	if err := m.Boot(r.app); err != nil {
		return errors.Wrapf(err, "app: boot module %T", m)
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *Registry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Modules returns all registered eager modules.
func (r *Registry) Modules() []Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Module(nil), r.eager...)
}

// Pending returns the number of keys still waiting for their deferred module.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// take removes the deferred module providing id, with all its keys.
func (r *Registry) take(id container.Key) (Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.pending[id]
	if !ok {
		return nil, false
	}
	for k, other := range r.pending {
		if other == m {
			delete(r.pending, k)
		}
	}
	return m, true
}

// ── Deferred loading ──────────────────────────────────────────────────────────

// deferredProvider registers a deferred module the first time one of its
// keys reaches it, then asks the other providers again.
type deferredProvider struct {
	registry *Registry
}

func (p *deferredProvider) Provide(res container.Resolver, key container.Key) (*container.Instance, error) {
	id, err := container.Normalize(container.BaseKey(key))
	if err != nil {
		return nil, nil
	}
	m, ok := p.registry.take(id)
	if !ok {
		return nil, nil
	}

	a := p.registry.app
	if err := m.Register(a); err != nil {
		return nil, errors.Wrapf(err, "app: register deferred module %T", m)
	}
	if p.registry.Booted() {
		if err := p.registry.boot(m); err != nil {
			return nil, err
		}
	}

	// key is already on the instantiation stack: ask the providers directly
	// rather than resolving it a second time.
	for _, other := range a.Providers() {
		if other == container.Provider(p) {
			continue
		}
		inst, err := other.Provide(res, key)
		if err != nil || inst != nil {
			return inst, err
		}
	}
	return nil, nil
}
