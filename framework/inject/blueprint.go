package inject

import (
	"reflect"

	"github.com/km-arc/go-inject/framework/container"
)

// Parameter describes one declared parameter of a callable. It is produced
// once per callable by an Inspector, never by the resolution engine.
type Parameter struct {
	Name       string
	HasDefault bool

	// Type is the declared type key, nil when the parameter is untyped.
	Type container.Key
}

// Inspector extracts the parameter list of a callable.
type Inspector interface {
	Inspect(callable any) ([]Parameter, error)
}

// InspectorFunc adapts a function to the Inspector interface.
type InspectorFunc func(callable any) ([]Parameter, error)

func (f InspectorFunc) Inspect(callable any) ([]Parameter, error) { return f(callable) }

// Injection is the injection plan of one parameter. A nil Key means the
// parameter is never injected.
type Injection struct {
	Name     string
	Required bool
	Key      container.Key
}

// Blueprint is the immutable, positional injection plan of a callable.
type Blueprint struct {
	injections []Injection
	injectable bool
}

// Len returns the number of parameters.
func (b *Blueprint) Len() int { return len(b.injections) }

// At returns the injection of the i-th parameter.
func (b *Blueprint) At(i int) Injection { return b.injections[i] }

// Injections returns a copy of the plan.
func (b *Blueprint) Injections() []Injection {
	out := make([]Injection, len(b.injections))
	copy(out, b.injections)
	return out
}

// Injectable reports whether at least one parameter has a key.
func (b *Blueprint) Injectable() bool { return b.injectable }

// BuildBlueprint computes the injection plan of params.
//
// Keys come from, by decreasing precedence: overrides, typeKeys (utility
// types dropped, see IsUtilityType), then the parameter name itself for the
// names set to true. Nil entries are ignored.
func BuildBlueprint(params []Parameter, overrides, typeKeys map[string]container.Key, names map[string]bool) *Blueprint {
	b := &Blueprint{injections: make([]Injection, len(params))}
	for i, p := range params {
		var key container.Key
		if k := overrides[p.Name]; k != nil {
			key = k
		} else if k := typeKeys[p.Name]; k != nil && !IsUtilityType(k) {
			key = k
		} else if names[p.Name] {
			key = p.Name
		}
		b.injections[i] = Injection{Name: p.Name, Required: !p.HasDefault, Key: key}
		if key != nil {
			b.injectable = true
		}
	}
	return b
}

// IsUtilityType reports whether a declared type carries no resolvable
// identity: predeclared types (int, string, error...) and unnamed types
// (slices, maps, funcs, any, struct literals), also behind pointers.
func IsUtilityType(key container.Key) bool {
	t, ok := key.(reflect.Type)
	if !ok {
		return false
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name() == "" || t.PkgPath() == ""
}
