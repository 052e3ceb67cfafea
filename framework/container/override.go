package container

// OverrideOption configures a container created by Override.
type OverrideOption func(*override) error

type override struct {
	instances map[Key]any
	scope     scope
}

// scope restricts what an overriding container inherits from its parent.
// Entries are normalized keys; an entry naming a base key also covers every
// Build of it.
type scope struct {
	include map[Key]bool // nil: everything is inherited
	exclude map[Key]bool
	missing map[Key]bool
}

func (s *scope) lists(set map[Key]bool, id Key) bool {
	if set[id] {
		return true
	}
	if b, ok := id.(buildID); ok {
		return set[b.id]
	}
	return false
}

// inherits reports whether id may come from the parent cache or providers.
func (s *scope) inherits(id Key) bool {
	if s.include != nil && !s.lists(s.include, id) {
		return false
	}
	return !s.lists(s.exclude, id)
}

func (s *scope) hides(id Key) bool { return s.lists(s.missing, id) }

func keySet(dst map[Key]bool, keys []Key) error {
	for _, k := range keys {
		id, err := Normalize(k)
		if err != nil {
			return err
		}
		dst[id] = true
	}
	return nil
}

// WithInstances seeds the overriding container with singletons that shadow
// the parent's.
func WithInstances(values map[Key]any) OverrideOption {
	return func(o *override) error {
		for k, v := range values {
			id, err := Normalize(k)
			if err != nil {
				return err
			}
			o.instances[id] = v
		}
		return nil
	}
}

// Include limits the inherited dependencies to keys. Include with no keys
// isolates the container from everything the parent knows.
func Include(keys ...Key) OverrideOption {
	return func(o *override) error {
		if o.scope.include == nil {
			o.scope.include = make(map[Key]bool, len(keys))
		}
		return keySet(o.scope.include, keys)
	}
}

// Exclude hides keys inherited from the parent. Values given to
// WithInstances stay visible.
func Exclude(keys ...Key) OverrideOption {
	return func(o *override) error { return keySet(o.scope.exclude, keys) }
}

// Missing makes keys unresolvable, even when a provider or WithInstances
// could supply them.
func Missing(keys ...Key) OverrideOption {
	return func(o *override) error { return keySet(o.scope.missing, keys) }
}

// Override returns a child container consulting the same providers as c,
// with its own singleton cache. Lookups that the child's scope allows fall
// back to c's cache; everything built by the child stays in the child.
//
//	test, err := c.Override(
//		container.WithInstances(map[container.Key]any{"mailer": fake}),
//		container.Exclude("cache"),
//	)
//
// SelfKey resolves to the child. Providers registered on c afterwards are
// not seen by the child, and the reverse.
func (c *Container) Override(opts ...OverrideOption) (*Container, error) {
	o := &override{
		instances: make(map[Key]any),
		scope: scope{
			exclude: make(map[Key]bool),
			missing: make(map[Key]bool),
		},
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	child := &Container{
		id:        c.id + "/override",
		stats:     c.stats,
		parent:    c,
		scope:     &o.scope,
		instances: o.instances,
		providers: c.Providers(),
		stack:     NewStack(),
	}
	child.log = c.log.WithField("container", child.id)
	child.instances[SelfKey] = child
	return child, nil
}

// Parent returns the container c overrides, nil for a root container.
func (c *Container) Parent() *Container { return c.parent }
