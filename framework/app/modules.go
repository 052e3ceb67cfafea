package app

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/routing"
)

// Keys registered by the bundled modules.
const (
	DotenvNamespace  = "dotenv"
	InspectRouterKey = "inspect.router"
)

// ── ConfigModule ──────────────────────────────────────────────────────────────

// ConfigModule serves the values of .env files as resources.
//
// Registered namespaces:
//   - "dotenv:NAME" → string, later files override earlier ones
//
// Unlike the "env" namespace, the files are read once at registration.
type ConfigModule struct {
	BaseModule
	EnvFiles []string
}

func (m *ConfigModule) Register(a *Application) error {
	getter, err := config.FileGetter(m.EnvFiles...)
	if err != nil {
		return err
	}
	return a.Resources.Register(getter, DotenvNamespace, 0, true, true)
}

// ── InspectModule ─────────────────────────────────────────────────────────────

// InspectModule registers the inspection router. It is deferred: nothing is
// registered until InspectRouterKey is first requested.
//
// Bound keys:
//   - "inspect.router" → *routing.Router
type InspectModule struct {
	BaseModule
}

func (m *InspectModule) Register(a *Application) error {
	return a.Singleton(InspectRouterKey, func(r container.Resolver, _ container.Args) (any, error) {
		c, err := container.Resolve[*container.Container](r, container.SelfKey)
		if err != nil {
			return nil, errors.Wrap(err, "inspect router")
		}
		return routing.Inspect(routing.Source{
			Container: c,
			Factories: a.Factories,
			Resources: a.Resources,
			Tags:      a.Tags,
		}), nil
	})
}

func (m *InspectModule) Provides() []container.Key { return []container.Key{InspectRouterKey} }
func (m *InspectModule) IsDeferred() bool          { return true }

// Router resolves the inspection router.
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve[*routing.Router](a, InspectRouterKey)
}

// InspectHandler mounts the inspection router under Config.Inspect.Prefix,
// logging every request and requiring Config.Inspect.Token when set.
//
//	http.ListenAndServe(a.Config.Inspect.Addr, handler)
func (a *Application) InspectHandler() (http.Handler, error) {
	inspect, err := a.Router()
	if err != nil {
		return nil, err
	}
	root := routing.New(
		routing.RequestLogger(a.Logger.WithField("component", "inspect")),
		routing.BearerAuth(a.Config.Inspect.Token),
	)
	root.Mount(a.Config.Inspect.Prefix, inspect)
	return root, nil
}
