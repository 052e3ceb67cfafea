package app

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/providers"
)

// ConfigKey is the key of the *config.Config every Application holds.
var ConfigKey = container.TypeKey[*config.Config]()

// Application is a container bootstrapped with the factory, resource and
// tag providers, plus a module registry.
//
// It embeds the Container so user code can call app.Get(), app.Set()
// directly, and adds registration shorthands on top of the providers.
type Application struct {
	*container.Container

	Config    *config.Config
	Logger    *logrus.Logger
	Factories *providers.FactoryProvider
	Resources *providers.ResourceProvider
	Tags      *providers.TagProvider
	Modules   *Registry
}

// New creates an application from cfg (config.Load() when nil).
//
// Providers are consulted in this order: factories, resources, tags,
// deferred modules. The container is registered under container.SelfKey and
// the configuration under ConfigKey. Environment variables are served in the
// cfg.Container.EnvNamespace namespace. The inspection router is available as
// a deferred module.
func New(cfg *config.Config, opts ...container.Option) (*Application, error) {
	if cfg == nil {
		cfg = config.Load()
	}

	logger := logrus.New()
	logger.SetLevel(cfg.Level())
	base := []container.Option{container.WithLogger(logger), container.WithID(cfg.Container.ID)}
	if cfg.Container.Metrics {
		base = append(base, container.WithMetrics(metrics.DefaultRegistry))
	}

	a := &Application{
		Container: container.New(append(base, opts...)...),
		Config:    cfg,
		Logger:    logger,
		Factories: providers.NewFactoryProvider(),
		Resources: providers.NewResourceProvider(),
		Tags:      providers.NewTagProvider(),
	}
	a.Modules = NewRegistry(a)

	for _, p := range []container.Provider{a.Factories, a.Resources, a.Tags, a.Modules.deferred} {
		if err := a.RegisterProvider(p); err != nil {
			return nil, errors.Wrap(err, "app: register provider")
		}
	}
	if err := a.Update(map[container.Key]any{
		container.SelfKey: a.Container,
		ConfigKey:         cfg,
	}); err != nil {
		return nil, errors.Wrap(err, "app: seed singletons")
	}
	if err := a.Resources.Register(config.Getter, cfg.Container.EnvNamespace, 0, true, false); err != nil {
		return nil, errors.Wrap(err, "app: register environment getter")
	}
	if err := a.Register(&InspectModule{}); err != nil {
		return nil, err
	}
	return a, nil
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient factory: a new instance on every request.
//
//	a.Bind("UserRepository", func(r container.Resolver, _ container.Args) (any, error) {
//	    db, err := container.Resolve[*sql.DB](r, "db")
//	    return &EloquentUserRepository{DB: db}, err
//	})
func (a *Application) Bind(key container.Key, factory providers.Factory) error {
	return a.Factories.Register(key, factory, false, false)
}

// Singleton registers a factory whose result is cached after first
// resolution.
func (a *Application) Singleton(key container.Key, factory providers.Factory) error {
	return a.Factories.Register(key, factory, true, false)
}

// Instance registers a pre-built value as a singleton.
func (a *Application) Instance(key container.Key, value any) error {
	return a.Set(key, value)
}

// Tag applies the attribute-less tag to every key.
//
//	a.Tag("reports", "CpuReport", "MemoryReport")
func (a *Application) Tag(tag string, keys ...container.Key) error {
	for _, k := range keys {
		if err := a.Tags.RegisterNames(k, tag); err != nil {
			return err
		}
	}
	return nil
}

// Tagged resolves every dependency tagged with tag, lazily.
//
//	reports, err := a.Tagged("reports")
//	values, err := reports.Values()
func (a *Application) Tagged(tag string, filter ...func(providers.Tag) bool) (*providers.TaggedDependencies, error) {
	return container.Resolve[*providers.TaggedDependencies](a, providers.NewTagged(tag, filter...))
}

// Register adds a Module to the application.
func (a *Application) Register(m Module) error {
	return a.Modules.Register(m)
}

// Boot runs the Boot phase of every eager module.
func (a *Application) Boot() error {
	return a.Modules.Boot()
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }

// ── Process-wide application ──────────────────────────────────────────────────

var (
	worldOnce sync.Once
	world     *Application
	worldErr  error
)

// World returns the process-wide application, created from config.Load() on
// the first call. Every later call returns that same application (or the
// error of the first attempt). Prefer passing an explicit *Application; World
// exists for composition roots that cannot.
func World() (*Application, error) {
	worldOnce.Do(func() {
		world, worldErr = New(nil)
	})
	return world, worldErr
}
