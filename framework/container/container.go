package container

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	uuid "github.com/nu7hatch/gouuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrProviderPanic wraps a panic raised by a provider, factory or getter.
	ErrProviderPanic = errors.New("container: panic during instantiation")

	// ErrResolverEscaped is returned when the Resolver given to a provider is
	// used from another goroutine while the resolution is still running.
	ErrResolverEscaped = errors.New("container: resolver used from another goroutine during its resolution")
)

// SelfKey is the key under which bootstrapped containers register themselves.
var SelfKey Key = reflect.TypeOf((*Container)(nil))

// ── Container ─────────────────────────────────────────────────────────────────

// Container resolves dependencies through its providers and caches the
// instances they mark as singletons.
//
// It supports:
//   - RegisterProvider (ordered, first answer wins)
//   - Get / Provide (hard and soft lookup)
//   - Set / Update / Delete (direct singleton cache mutation)
//   - cycle detection through an instantiation stack
//
// Providers must be registered before the container is shared between
// goroutines. Every other method is safe for concurrent use.
//
// The goroutine running a resolution may call back into the container (from
// a factory, a module hook or an injected function): it joins the resolution
// in flight. Other goroutines wait for it to end, so a factory must not wait
// on goroutines that use the container.
type Container struct {
	id    string
	log   *logrus.Entry
	stats *Metrics

	// mu is the instantiation lock, held for a whole top-level resolution
	// including the nested resolutions it triggers.
	mu instantiationLock

	// resolution in flight, only touched by the goroutine holding mu
	active *resolution

	// set on containers created by Override
	parent *Container
	scope  *scope

	// cacheMu guards instances for lock-free readers on the fast path.
	cacheMu   sync.RWMutex
	instances map[Key]any

	providers []Provider

	// keys currently being instantiated, only touched under mu
	stack *Stack
}

// New creates an empty container without providers.
func New(opts ...Option) *Container {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.id == "" {
		o.id = newID()
	}
	if o.logger == nil {
		o.logger = logrus.StandardLogger()
	}
	return &Container{
		id:        o.id,
		log:       o.logger.WithField("container", o.id),
		stats:     NewMetrics(o.registry),
		instances: make(map[Key]any),
		stack:     NewStack(),
	}
}

func newID() string {
	u, err := uuid.NewV4()
	if err != nil {
		return "container"
	}
	return u.String()
}

// ID returns the identifier used in log fields.
func (c *Container) ID() string { return c.id }

// Metrics returns the instruments updated by this container.
func (c *Container) Metrics() *Metrics { return c.stats }

// ── Registration ──────────────────────────────────────────────────────────────

// RegisterProvider appends p to the providers consulted on a cache miss.
//
// It is not synchronized with resolution: register every provider during
// setup, before the container is used concurrently.
func (c *Container) RegisterProvider(p Provider) error {
	if p == nil {
		return &InvalidProviderError{Provider: p}
	}
	if v := reflect.ValueOf(p); v.Kind() == reflect.Ptr && v.IsNil() {
		return &InvalidProviderError{Provider: p}
	}
	c.providers = append(c.providers, p)
	c.log.WithField("provider", fmt.Sprintf("%T", p)).Debug("provider registered")
	return nil
}

// Providers returns the registered providers in consultation order.
func (c *Container) Providers() []Provider {
	out := make([]Provider, len(c.providers))
	copy(out, c.providers)
	return out
}

// ── Singleton cache ───────────────────────────────────────────────────────────

// Set stores value as the singleton for key. It takes precedence over every
// provider.
//
//	c.Set("config", cfg)
func (c *Container) Set(key Key, value any) error {
	id, err := Normalize(key)
	if err != nil {
		return err
	}
	defer c.mu.unlock(c.mu.lock())
	c.cacheMu.Lock()
	c.instances[id] = value
	c.cacheMu.Unlock()
	return nil
}

// Update stores every entry of values as a singleton.
func (c *Container) Update(values map[Key]any) error {
	ids := make(map[Key]any, len(values))
	for k, v := range values {
		id, err := Normalize(k)
		if err != nil {
			return err
		}
		ids[id] = v
	}
	defer c.mu.unlock(c.mu.lock())
	c.cacheMu.Lock()
	for id, v := range ids {
		c.instances[id] = v
	}
	c.cacheMu.Unlock()
	return nil
}

// Delete removes the singleton cached for key. A *NotFoundError is returned
// if nothing was cached.
func (c *Container) Delete(key Key) error {
	id, err := Normalize(key)
	if err != nil {
		return err
	}
	defer c.mu.unlock(c.mu.lock())
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	if _, ok := c.instances[id]; !ok {
		return &NotFoundError{Key: key}
	}
	delete(c.instances, id)
	return nil
}

// Singletons returns a copy of the singleton cache, keyed by normalized key.
func (c *Container) Singletons() map[Key]any {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	out := make(map[Key]any, len(c.instances))
	for k, v := range c.instances {
		out[k] = v
	}
	return out
}

// cached looks id up in the singleton cache, then in the parents' caches the
// override scope lets through.
func (c *Container) cached(id Key) (any, bool) {
	if c.scope != nil && c.scope.hides(id) {
		return nil, false
	}
	c.cacheMu.RLock()
	v, ok := c.instances[id]
	c.cacheMu.RUnlock()
	if ok || c.parent == nil || !c.scope.inherits(id) {
		return v, ok
	}
	return c.parent.cached(id)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get returns the instance for key, or a *NotFoundError when neither the
// cache nor any provider can supply it.
//
//	repo, err := c.Get(container.NewBuild("repo", "replica"))
func (c *Container) Get(key Key) (any, error) {
	return mustFind(key)(c.Provide(key))
}

// Provide returns the instance for key. Unlike Get, absence is not an error:
// found is false instead.
//
// Failures of the provider that owns key are returned as *InstantiationError
// wrapping the cause, except *CycleError which is returned as is.
func (c *Container) Provide(key Key) (any, bool, error) {
	id, err := Normalize(key)
	if err != nil {
		return nil, false, err
	}
	if v, ok := c.cached(id); ok {
		c.stats.hits.Inc(1)
		return v, true, nil
	}

	reentered := c.mu.lock()
	defer c.mu.unlock(reentered)
	if reentered {
		return c.resolve(c.active, key, id)
	}

	r := &resolution{c: c}
	c.active = r
	defer func() {
		r.done.Store(true)
		c.active = nil
	}()
	return c.resolve(r, key, id)
}

// resolve runs under mu.
func (c *Container) resolve(r *resolution, key, id Key) (any, bool, error) {
	if v, ok := c.cached(id); ok {
		c.stats.hits.Inc(1)
		return v, true, nil
	}

	if c.scope != nil && (c.scope.hides(id) || !c.scope.inherits(id)) {
		c.stats.notFound.Inc(1)
		return nil, false, nil
	}

	release, err := c.stack.Instantiating(key)
	if err != nil {
		c.stats.cycles.Inc(1)
		c.log.WithField("key", Describe(key)).Warn(err.Error())
		return nil, false, err
	}
	defer release()

	c.stats.misses.Inc(1)
	start := time.Now()
	for _, p := range c.providers {
		inst, err := callProvider(p, r, key)
		if err != nil {
			var cycle *CycleError
			if errors.As(err, &cycle) {
				return nil, false, cycle
			}
			c.stats.failures.Inc(1)
			c.log.WithError(err).WithField("key", Describe(key)).Warn("instantiation failed")
			return nil, false, &InstantiationError{Key: key, Cause: err}
		}
		if inst == nil {
			continue
		}

		c.stats.built(start)
		if inst.Singleton {
			c.cacheMu.Lock()
			c.instances[id] = inst.Value
			c.cacheMu.Unlock()
		}
		if c.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
			c.log.WithFields(logrus.Fields{
				"key":       Describe(key),
				"provider":  fmt.Sprintf("%T", p),
				"singleton": inst.Singleton,
			}).Debug("dependency provided")
		}
		return inst.Value, true, nil
	}

	c.stats.notFound.Inc(1)
	return nil, false, nil
}

// callProvider turns a panic into an error so that the stack is popped and
// the lock released like for any other failure.
func callProvider(p Provider, r Resolver, key Key) (inst *Instance, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			inst = nil
			if e, ok := rec.(error); ok {
				err = fmt.Errorf("%w: %w", ErrProviderPanic, e)
				return
			}
			err = fmt.Errorf("%w: %v", ErrProviderPanic, rec)
		}
	}()
	return p.Provide(r, key)
}

func mustFind(key Key) func(any, bool, error) (any, error) {
	return func(v any, found bool, err error) (any, error) {
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, &NotFoundError{Key: key}
		}
		return v, nil
	}
}

// ── In-flight resolution ──────────────────────────────────────────────────────

// resolution is the Resolver handed to providers during a top-level Provide.
// Its requests join that Provide through the re-entrant lock; true cycles are
// caught by the stack.
//
// Once the top-level call returns, the handle behaves like the container: it
// joins whatever resolution its goroutine is running, or locks.
type resolution struct {
	c    *Container
	done atomic.Bool
}

func (r *resolution) Get(key Key) (any, error) {
	return mustFind(key)(r.Provide(key))
}

func (r *resolution) Provide(key Key) (any, bool, error) {
	if !r.done.Load() && !r.c.mu.heldByCaller() {
		return nil, false, ErrResolverEscaped
	}
	return r.c.Provide(key)
}

// ── Generics helper ───────────────────────────────────────────────────────────

// TypeKey returns the reflect.Type of T, the usual key for a dependency
// identified by its type.
//
//	c.Set(container.TypeKey[*Config](), cfg)
func TypeKey[T any]() Key {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Resolve calls Get and type-asserts the result.
//
//	// Instead of: v, err := c.Get("db"); db := v.(*sql.DB)
//	// Write:      db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](r Resolver, key Key) (T, error) {
	var zero T
	instance, err := r.Get(key)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Key:  key,
			Want: reflect.TypeOf((*T)(nil)).Elem().String(),
			Got:  fmt.Sprintf("%T", instance),
		}
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error. Meant for composition
// roots and tests.
func MustResolve[T any](r Resolver, key Key) T {
	typed, err := Resolve[T](r, key)
	if err != nil {
		panic(err)
	}
	return typed
}
