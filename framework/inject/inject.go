package inject

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/km-arc/go-inject/framework/container"
)

// Option configures Inject.
type Option func(*settings)

type settings struct {
	argMap   map[string]container.Key
	argList  []container.Key
	argFunc  func(name string) container.Key
	useNames []string
	allNames bool
	typeKeys []string
	noTypes  bool
	shape    Shape
	class    any
}

// WithArgMap maps parameter names to keys. It overrides declared types.
func WithArgMap(m map[string]container.Key) Option {
	return func(s *settings) { s.argMap = m }
}

// WithArgList maps parameters to keys by position. A nil entry leaves the
// parameter to its declared type or name, like an unlisted one.
func WithArgList(keys ...container.Key) Option {
	return func(s *settings) { s.argList = keys }
}

// WithArgFunc computes the key of each parameter from its name. Returning nil
// leaves the parameter to its declared type or name.
func WithArgFunc(fn func(name string) container.Key) Option {
	return func(s *settings) { s.argFunc = fn }
}

// WithArgFormat derives string keys from parameter names: every "{name}" in
// format is replaced by the parameter name.
//
//	inject.Inject(c, params, fn, inject.WithArgFormat("env:{name}"))
func WithArgFormat(format string) Option {
	return WithArgFunc(func(name string) container.Key {
		return strings.ReplaceAll(format, "{name}", name)
	})
}

// UseNames uses parameter names as keys, for the given names or for every
// parameter when none is given.
func UseNames(names ...string) Option {
	return func(s *settings) {
		s.useNames = names
		s.allNames = len(names) == 0
	}
}

// UseTypeKeys restricts declared-type keys to the given parameters. Declared
// types are used for every parameter by default.
func UseTypeKeys(names ...string) Option {
	return func(s *settings) { s.typeKeys = names }
}

// NoTypeKeys ignores declared types.
func NoTypeKeys() Option {
	return func(s *settings) { s.noTypes = true }
}

// AsMethod declares a method whose first parameter is the receiver.
func AsMethod() Option {
	return func(s *settings) { s.shape = ShapeMethod }
}

// AsClassMethod declares a method bound to class.
func AsClassMethod(class any) Option {
	return func(s *settings) {
		s.shape = ShapeClassMethod
		s.class = class
	}
}

// AsStaticMethod declares a function attached to a type.
func AsStaticMethod() Option {
	return func(s *settings) { s.shape = ShapeStaticMethod }
}

// Inject builds the blueprint of a callable from its parameters and the
// options, then wraps fn.
//
//	params := []inject.Parameter{
//	    {Name: "repo", Type: container.TypeKey[*UserRepository]()},
//	    {Name: "limit", HasDefault: true},
//	}
//	list := inject.Inject(c, params, listUsers)
//	users, err := list.Call()
func Inject(r container.Resolver, params []Parameter, fn Callable, opts ...Option) *Injected {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}

	w := Wrap(r, BuildBlueprint(params, s.overrides(params), s.declaredTypes(params), s.names(params)), fn, s.shape)
	if s.shape == ShapeClassMethod {
		return w.Bind(s.class)
	}
	return w
}

// InjectInspected is Inject with the parameters extracted by in.
func InjectInspected(r container.Resolver, in Inspector, callable any, fn Callable, opts ...Option) (*Injected, error) {
	params, err := in.Inspect(callable)
	if err != nil {
		return nil, errors.Wrap(err, "inject: inspect callable")
	}
	return Inject(r, params, fn, opts...), nil
}

func (s *settings) overrides(params []Parameter) map[string]container.Key {
	out := make(map[string]container.Key)
	switch {
	case s.argMap != nil:
		for name, k := range s.argMap {
			out[name] = k
		}
	case s.argList != nil:
		for i, k := range s.argList {
			if i >= len(params) {
				break
			}
			out[params[i].Name] = k
		}
	case s.argFunc != nil:
		for _, p := range params {
			out[p.Name] = s.argFunc(p.Name)
		}
	}
	return out
}

func (s *settings) declaredTypes(params []Parameter) map[string]container.Key {
	out := make(map[string]container.Key)
	if s.noTypes {
		return out
	}
	var only map[string]bool
	if s.typeKeys != nil {
		only = set(s.typeKeys)
	}
	for _, p := range params {
		if p.Type != nil && (only == nil || only[p.Name]) {
			out[p.Name] = p.Type
		}
	}
	return out
}

func (s *settings) names(params []Parameter) map[string]bool {
	if s.allNames {
		out := make(map[string]bool, len(params))
		for _, p := range params {
			out[p.Name] = true
		}
		return out
	}
	return set(s.useNames)
}

func set(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}
