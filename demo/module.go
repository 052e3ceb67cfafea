package demo

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/inject"
	"github.com/km-arc/go-inject/framework/providers"
)

// Keys registered by Module.
var (
	GreeterKey = container.TypeKey[*Greeter]()
	SummaryKey = container.TypeKey[*Summary]()
)

const (
	ConnKey          = "conn"
	GreetKey         = "greet"
	RuntimeReportKey = "report.runtime"
	MemoryReportKey  = "report.memory"
	ReportsTag       = "reports"
	MessageNamespace = "demo"
)

// DefaultTimeout is used by "conn" when no timeout argument is given.
const DefaultTimeout = 5 * time.Second

// Module registers the sample services.
//
//	a.Register(&demo.Module{})
//	a.Get(container.NewBuild(demo.ConnKey, "db.internal").With("timeout", "2s"))
//	a.Tagged(demo.ReportsTag)
type Module struct {
	app.BaseModule
}

func (m *Module) Register(a *app.Application) error {
	steps := []func(*app.Application) error{
		registerGreeter,
		registerConn,
		registerReports,
		registerMessages,
	}
	for _, step := range steps {
		if err := step(a); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) Boot(a *app.Application) error {
	reports, err := a.Tagged(ReportsTag)
	if err != nil {
		return err
	}
	a.Logger.WithFields(logrus.Fields{
		"reports":   reports.Len(),
		"factories": len(a.Factories.Keys()),
	}).Debug("demo module booted")
	return nil
}

func registerGreeter(a *app.Application) error {
	err := a.Singleton(GreeterKey, providers.Constructor(func(r container.Resolver) (*Greeter, error) {
		cfg, err := container.Resolve[*config.Config](r, app.ConfigKey)
		if err != nil {
			return nil, err
		}
		return &Greeter{App: cfg.App.Name}, nil
	}))
	if err != nil {
		return err
	}
	return a.Singleton(GreetKey, func(r container.Resolver, _ container.Args) (any, error) {
		return Greet(r), nil
	})
}

// registerConn binds "conn": Build(conn, target, timeout=...) yields one
// cached *Connection per distinct argument set.
func registerConn(a *app.Application) error {
	return a.Singleton(ConnKey, func(_ container.Resolver, args container.Args) (any, error) {
		target, ok := args.Arg(0, "target")
		if !ok {
			return nil, errors.New("conn: missing target")
		}
		timeout := DefaultTimeout
		if raw, ok := args.Arg(1, "timeout"); ok {
			d, err := parseTimeout(raw)
			if err != nil {
				return nil, err
			}
			timeout = d
		}
		host, ok := target.(string)
		if !ok {
			return nil, errors.Errorf("conn: target must be a string, got %T", target)
		}
		return &Connection{Target: host, Timeout: timeout, Opened: time.Now()}, nil
	})
}

func parseTimeout(raw any) (time.Duration, error) {
	switch v := raw.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(v)
		return d, errors.Wrapf(err, "conn: timeout %q", v)
	}
	return 0, errors.Errorf("conn: unsupported timeout %T", raw)
}

func registerReports(a *app.Application) error {
	if err := a.Singleton(RuntimeReportKey, providers.Value(RuntimeReport{})); err != nil {
		return err
	}
	if err := a.Singleton(MemoryReportKey, providers.Value(MemoryReport{})); err != nil {
		return err
	}
	for i, k := range []container.Key{RuntimeReportKey, MemoryReportKey} {
		tag := providers.NewTag(ReportsTag, providers.Attr{Key: "order", Value: i})
		if err := a.Tags.Register(k, tag); err != nil {
			return err
		}
	}
	return a.Bind(SummaryKey, providers.Constructor(func(r container.Resolver) (*Summary, error) {
		deps, err := container.Resolve[*providers.TaggedDependencies](r, providers.NewTagged(ReportsTag))
		if err != nil {
			return nil, err
		}
		s := &Summary{}
		err = deps.Each(func(v any, _ providers.Tag) error {
			report, ok := v.(Report)
			if !ok {
				return errors.Errorf("%T is tagged %q but is not a Report", v, ReportsTag)
			}
			s.Reports = append(s.Reports, report)
			return nil
		})
		return s, err
	}))
}

func registerMessages(a *app.Application) error {
	return a.Resources.Register(providers.MapGetter(map[string]any{
		"motd": "dependencies are resolved lazily",
	}), MessageNamespace, 1, true, true)
}

// ── Injected function ─────────────────────────────────────────────────────────

// greetParams describes greet(name, greeter *Greeter, punctuation = "!").
var greetParams = []inject.Parameter{
	{Name: "name"},
	{Name: "greeter", Type: GreeterKey},
	{Name: "punctuation", HasDefault: true},
}

// Greet returns the greet function with its greeter injected from r.
//
//	msg, err := demo.Greet(a).Call("Ada")
func Greet(r container.Resolver) *inject.Injected {
	return inject.Inject(r, greetParams, func(args []any, kwargs map[string]any) (any, error) {
		name, _ := argument(args, kwargs, 0, "name").(string)
		if name == "" {
			return nil, errors.New("greet: missing name")
		}
		g, ok := argument(args, kwargs, 1, "greeter").(*Greeter)
		if !ok {
			return nil, errors.New("greet: missing greeter")
		}
		punctuation, ok := argument(args, kwargs, 2, "punctuation").(string)
		if !ok {
			punctuation = "!"
		}
		return g.Greet(name, punctuation), nil
	})
}

func argument(args []any, kwargs map[string]any, i int, name string) any {
	if i < len(args) {
		return args[i]
	}
	return kwargs[name]
}
