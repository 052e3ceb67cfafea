package inject

import (
	"github.com/km-arc/go-inject/framework/container"
)

// Callable is the uniform shape of an injectable function: positional
// arguments plus named arguments.
type Callable func(args []any, kwargs map[string]any) (any, error)

// Shape is the call shape of a wrapped callable. It decides how many leading
// arguments are implicit.
type Shape int

const (
	// ShapeFunction is a plain function.
	ShapeFunction Shape = iota
	// ShapeMethod has the receiver as first parameter. Once bound, the
	// receiver is supplied implicitly.
	ShapeMethod
	// ShapeClassMethod has its class as first parameter, always supplied.
	ShapeClassMethod
	// ShapeStaticMethod is a function attached to a type, without receiver.
	ShapeStaticMethod
)

func (s Shape) String() string {
	switch s {
	case ShapeMethod:
		return "method"
	case ShapeClassMethod:
		return "classmethod"
	case ShapeStaticMethod:
		return "staticmethod"
	}
	return "function"
}

// MissingArgumentError is returned when a required parameter was neither
// supplied nor resolvable. It wraps the *container.NotFoundError.
type MissingArgumentError struct {
	Param string
	Key   container.Key
	Err   error
}

func (e *MissingArgumentError) Error() string {
	return "inject: parameter " + e.Param + ": " + e.Err.Error()
}

func (e *MissingArgumentError) Unwrap() error { return e.Err }

// Injected calls a Callable after filling its missing arguments from a
// Resolver, following a Blueprint.
type Injected struct {
	resolver  container.Resolver
	blueprint *Blueprint
	fn        Callable
	shape     Shape
	bound     bool

	// offset is the number of implicit leading arguments.
	offset int
}

// Wrap creates an Injected for fn. ShapeClassMethod callables must be bound
// to their class with Bind before being called.
func Wrap(r container.Resolver, bp *Blueprint, fn Callable, shape Shape) *Injected {
	return &Injected{resolver: r, blueprint: bp, fn: fn, shape: shape}
}

// Function wraps a plain function.
func Function(r container.Resolver, bp *Blueprint, fn Callable) *Injected {
	return Wrap(r, bp, fn, ShapeFunction)
}

// Method wraps a method whose blueprint starts with the receiver.
func Method(r container.Resolver, bp *Blueprint, fn Callable) *Injected {
	return Wrap(r, bp, fn, ShapeMethod)
}

// ClassMethod wraps a method bound to class, whose blueprint starts with the
// class parameter.
func ClassMethod(r container.Resolver, bp *Blueprint, class any, fn Callable) *Injected {
	return Wrap(r, bp, fn, ShapeClassMethod).Bind(class)
}

// StaticMethod wraps a function attached to a type.
func StaticMethod(r container.Resolver, bp *Blueprint, fn Callable) *Injected {
	return Wrap(r, bp, fn, ShapeStaticMethod)
}

// Bind supplies receiver as the implicit first argument of a method or class
// method. Functions, static methods and already bound callables are returned
// unchanged. The blueprint is shared, never recomputed.
func (w *Injected) Bind(receiver any) *Injected {
	if w.bound || w.shape == ShapeFunction || w.shape == ShapeStaticMethod {
		return w
	}
	fn := w.fn
	return &Injected{
		resolver:  w.resolver,
		blueprint: w.blueprint,
		shape:     w.shape,
		bound:     true,
		offset:    1,
		fn: func(args []any, kwargs map[string]any) (any, error) {
			full := make([]any, 0, len(args)+1)
			full = append(full, receiver)
			full = append(full, args...)
			return fn(full, kwargs)
		},
	}
}

// WithResolver returns a copy resolving from r, typically the Resolver given
// to a factory.
func (w *Injected) WithResolver(r container.Resolver) *Injected {
	cp := *w
	cp.resolver = r
	return &cp
}

// Blueprint returns the shared injection plan.
func (w *Injected) Blueprint() *Blueprint { return w.blueprint }

// Shape returns the call shape.
func (w *Injected) Shape() Shape { return w.shape }

// Bound reports whether the implicit first argument is supplied.
func (w *Injected) Bound() bool { return w.bound }

// Unwrap returns the wrapped callable, receiver included when bound.
func (w *Injected) Unwrap() Callable { return w.fn }

// Call invokes the callable with positional arguments only.
func (w *Injected) Call(args ...any) (any, error) {
	return w.CallNamed(args, nil)
}

// CallNamed invokes the callable. Parameters located after the supplied
// positional arguments and absent from kwargs are resolved when they have a
// key. kwargs is never modified.
func (w *Injected) CallNamed(args []any, kwargs map[string]any) (any, error) {
	if w.blueprint.Injectable() {
		var err error
		kwargs, err = injectKwargs(w.resolver, w.blueprint, w.offset+len(args), kwargs)
		if err != nil {
			return nil, err
		}
	}
	return w.fn(args, kwargs)
}

func injectKwargs(r container.Resolver, bp *Blueprint, offset int, kwargs map[string]any) (map[string]any, error) {
	copied := false
	for i := offset; i < len(bp.injections); i++ {
		inj := bp.injections[i]
		if inj.Key == nil {
			continue
		}
		if _, ok := kwargs[inj.Name]; ok {
			continue
		}
		v, found, err := r.Provide(inj.Key)
		if err != nil {
			return nil, err
		}
		if !found {
			if inj.Required {
				return nil, &MissingArgumentError{
					Param: inj.Name,
					Key:   inj.Key,
					Err:   &container.NotFoundError{Key: inj.Key},
				}
			}
			continue
		}
		if !copied {
			cp := make(map[string]any, len(kwargs)+1)
			for k, v := range kwargs {
				cp[k] = v
			}
			kwargs = cp
			copied = true
		}
		kwargs[inj.Name] = v
	}
	return kwargs, nil
}
