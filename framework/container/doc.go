// Package container provides the dependency resolution engine: a container
// that asks pluggable providers for instances, caches singletons and detects
// resolution cycles.
//
// # Overview
//
// A dependency is identified by a Key, any comparable value. The container
// never knows how to build anything itself: on a cache miss it asks each
// registered Provider in order, and the first one recognising the key wins.
// Strategies (factories, namespaced resources, tags) live in the providers
// package.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: c.RegisterProvider(factories)
//  3. Share c between goroutines and resolve
//
// # Resolving
//
//	// Hard lookup, *NotFoundError when nothing answers
//	v, err := c.Get("cache")
//
//	// Soft lookup, used by the injection layer
//	v, found, err := c.Provide("cache")
//
//	// Typed
//	cache, err := container.Resolve[*RedisCache](c, "cache")
//
// # Parameterized keys
//
//	// Forwarded to the factory registered for "conn"
//	conn, err := c.Get(container.NewBuild("conn", "replica").With("timeout", 5))
//
// A Build without arguments is the same dependency as its base key.
//
// # Singletons
//
//	// Explicit values always win over providers
//	c.Set("config", cfg)
//	c.Update(map[container.Key]any{"a": 1, "b": 2})
//	c.Delete("config")
//
// # Re-entrancy and cycles
//
// Factories receive a Resolver bound to the ongoing resolution. The goroutine
// running a resolution owns the instantiation lock, and any call it makes back
// into the container joins that resolution: through the Resolver, through the
// *Container itself, or through a Resolver kept from an earlier resolution.
// A key requested while it is already being built yields a *CycleError
// carrying the offending path:
//
//	// "a" -> "b" -> "a"
//	_, err := c.Get("a")
//	var cycle *container.CycleError
//	errors.As(err, &cycle)
//
// Other goroutines wait for the resolution to end. A Resolver used from a
// goroutine the factory started returns ErrResolverEscaped while the factory
// is still running; the *Container used the same way blocks until the
// factory returns, so a factory must not wait on it.
//
// # Overrides
//
// Override derives a child container, typically for tests, sharing the
// parent's providers but not its new singletons:
//
//	test, err := c.Override(
//		container.WithInstances(map[container.Key]any{"mailer": fake}),
//		container.Include("db", "mailer", "report"),
//		container.Missing("cache"),
//	)
//
// # Errors
//
// Provider failures reach callers as *InstantiationError wrapping the cause,
// except *CycleError which always propagates unchanged. Registration mistakes
// are reported by the registering call and never during resolution.
package container
