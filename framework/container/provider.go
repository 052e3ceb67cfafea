package container

//go:generate mockgen -source=provider.go -destination=mock_provider_test.go -package=container_test

// ── Provider contract ─────────────────────────────────────────────────────────

// Instance is what a Provider returns for a key it knows. Singleton asks the
// container to cache Value for every later request of the same key.
type Instance struct {
	Value     any
	Singleton bool
}

// Provider is a resolution strategy plugged into a Container.
//
// Provide returns (nil, nil) when key is not handled by the provider, so the
// container can ask the next one. An error is only returned when the provider
// owns key but failed to build it.
//
// Providers are tried in registration order; they should handle disjoint kinds
// of keys (plain keys, "namespace:name" strings, *Tagged lookups...).
type Provider interface {
	Provide(r Resolver, key Key) (*Instance, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(r Resolver, key Key) (*Instance, error)

func (f ProviderFunc) Provide(r Resolver, key Key) (*Instance, error) { return f(r, key) }

// Resolver resolves dependencies. *Container implements it, and so does the
// handle given to providers and factories while a resolution is in flight:
// requests made through that handle join the ongoing resolution instead of
// waiting on the container lock.
type Resolver interface {
	// Get returns the instance for key or a *NotFoundError.
	Get(key Key) (any, error)

	// Provide returns the instance for key. found is false when nothing
	// can provide key.
	Provide(key Key) (value any, found bool, err error)
}
