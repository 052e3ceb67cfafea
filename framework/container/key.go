package container

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/luci/go-render/render"
)

// Key identifies a requestable dependency.
//
// Any comparable value can be used: a reflect.Type, a string, a pointer or a
// user-defined comparable type. Build keys carry construction arguments on
// top of a base key.
type Key = any

// Args holds the construction arguments forwarded to a factory.
type Args struct {
	Positional []any
	Named      map[string]any
}

// Arg returns the positional argument at index i, falling back to the named
// argument name when fewer positional arguments were given.
//
//	host, ok := args.Arg(0, "host")
func (a Args) Arg(i int, name string) (any, bool) {
	if i >= 0 && i < len(a.Positional) {
		return a.Positional[i], true
	}
	if name == "" {
		return nil, false
	}
	v, ok := a.Named[name]
	return v, ok
}

// Len returns the total number of arguments.
func (a Args) Len() int { return len(a.Positional) + len(a.Named) }

// ── Build ─────────────────────────────────────────────────────────────────────

// Build is a parameterized key: a base key plus arguments passed on to the
// factory registered for the base key.
//
// A Build without arguments is the same dependency as its base key: both
// share one cache slot. With arguments, each distinct argument set is its own
// dependency.
//
//	db := container.NewBuild("db", "replica").With("timeout", 5)
//	v, err := c.Get(db)
type Build struct {
	ID     Key
	Args   []any
	Kwargs map[string]any
}

// NewBuild creates a Build for id with positional arguments.
func NewBuild(id Key, args ...any) Build {
	return Build{ID: id, Args: args}
}

// With returns a copy of b with the named argument set.
func (b Build) With(name string, value any) Build {
	kwargs := make(map[string]any, len(b.Kwargs)+1)
	for k, v := range b.Kwargs {
		kwargs[k] = v
	}
	kwargs[name] = value
	b.Kwargs = kwargs
	return b
}

// HasArgs reports whether b carries any construction argument.
func (b Build) HasArgs() bool { return len(b.Args) > 0 || len(b.Kwargs) > 0 }

// BuildArgs returns the arguments of b in factory form.
func (b Build) BuildArgs() Args {
	return Args{Positional: b.Args, Named: b.Kwargs}
}

func (b Build) String() string {
	parts := []string{Describe(b.ID)}
	for _, a := range b.Args {
		parts = append(parts, render.Render(a))
	}
	for _, k := range sortedNames(b.Kwargs) {
		parts = append(parts, k+"="+render.Render(b.Kwargs[k]))
	}
	return "Build(" + strings.Join(parts, ", ") + ")"
}

// buildID is the cache identity of a Build with arguments.
type buildID struct {
	id  Key
	sig string
}

// argPrinter renders value arguments deterministically.
var argPrinter = spew.ConfigState{
	SortKeys:              true,
	DisableCapacities:     true,
	DisableMethods:        true,
	DisablePointerMethods: true,
}

func (b Build) signature() string {
	parts := make([]string, 0, len(b.Args)+len(b.Kwargs))
	for _, a := range b.Args {
		parts = append(parts, argSignature(a))
	}
	for _, name := range sortedNames(b.Kwargs) {
		parts = append(parts, name+"="+argSignature(b.Kwargs[name]))
	}
	return strings.Join(parts, ", ")
}

// argSignature renders reference kinds by address, so that two distinct
// pointers never share a cache slot and mutating a pointee keeps its slot.
func argSignature(a any) string {
	if a == nil {
		return "nil"
	}
	switch reflect.TypeOf(a).Kind() {
	case reflect.Ptr, reflect.Chan, reflect.Func, reflect.Map, reflect.UnsafePointer:
		return fmt.Sprintf("%T@%p", a, a)
	}
	return argPrinter.Sprintf("%#v", a)
}

// ── Normalization ─────────────────────────────────────────────────────────────

// Normalize returns the identity under which key is cached and tracked on
// the instantiation stack.
func Normalize(key Key) (Key, error) {
	switch k := key.(type) {
	case Build:
		id, err := Normalize(k.ID)
		if err != nil {
			return nil, err
		}
		if !k.HasArgs() {
			return id, nil
		}
		return buildID{id: id, sig: k.signature()}, nil
	case *Build:
		if k == nil {
			return nil, nil
		}
		return Normalize(*k)
	}
	if key != nil && !reflect.TypeOf(key).Comparable() {
		return nil, &UnhashableKeyError{Key: key}
	}
	return key, nil
}

// BaseKey strips the construction arguments of a Build.
func BaseKey(key Key) Key {
	switch k := key.(type) {
	case Build:
		return BaseKey(k.ID)
	case *Build:
		if k != nil {
			return BaseKey(k.ID)
		}
	}
	return key
}

// Describe renders key for error messages and inspection output.
func Describe(key Key) string {
	switch k := key.(type) {
	case nil:
		return "<nil>"
	case string:
		return strconv.Quote(k)
	case reflect.Type:
		return k.String()
	case buildID:
		return "Build(" + Describe(k.id) + ", " + k.sig + ")"
	case interface{ String() string }:
		return k.String()
	}
	return render.Render(key)
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
