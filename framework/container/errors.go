package container

import (
	"errors"
	"fmt"
	"strings"
)

// ErrResourceNotFound is returned by resource getters that do not know the
// requested name. The resource provider then tries the next getter of the
// namespace instead of failing.
var ErrResourceNotFound = errors.New("container: resource not found")

// ── Resolution errors ─────────────────────────────────────────────────────────

// NotFoundError is returned when no cached instance exists and no provider
// can produce one for Key.
type NotFoundError struct{ Key Key }

func (e *NotFoundError) Error() string {
	return "container: dependency " + Describe(e.Key) + " not found"
}

// CycleError is returned when a key is requested while it is already being
// instantiated. Path starts and ends with the offending key.
type CycleError struct{ Path []Key }

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, k := range e.Path {
		parts[i] = Describe(k)
	}
	return "container: dependency cycle " + strings.Join(parts, " -> ")
}

// InstantiationError wraps a failure raised while a provider was building Key.
type InstantiationError struct {
	Key   Key
	Cause error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("container: could not instantiate %s: %v", Describe(e.Key), e.Cause)
}

func (e *InstantiationError) Unwrap() error { return e.Cause }

// UnhashableKeyError is returned for keys that cannot be used as map keys.
type UnhashableKeyError struct{ Key Key }

func (e *UnhashableKeyError) Error() string {
	return fmt.Sprintf("container: key of type %T is not comparable", e.Key)
}

// TypeMismatchError is returned by Resolve when the resolved value does not
// have the requested type.
type TypeMismatchError struct {
	Key  Key
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return "container: " + Describe(e.Key) + " resolved to " + e.Got + ", want " + e.Want
}

// ── Registration errors ───────────────────────────────────────────────────────

// DuplicateKeyError is returned when a factory is registered twice for Key.
type DuplicateKeyError struct{ Key Key }

func (e *DuplicateKeyError) Error() string {
	return "container: duplicate dependency key " + Describe(e.Key)
}

// DuplicateTagError is returned when Tag is applied twice to Key.
type DuplicateTagError struct {
	Key Key
	Tag string
}

func (e *DuplicateTagError) Error() string {
	return fmt.Sprintf("container: tag %q applied twice to %s", e.Tag, Describe(e.Key))
}

// PriorityConflictError is returned when two getters of one namespace share
// the same priority.
type PriorityConflictError struct {
	Namespace string
	Priority  float64
}

func (e *PriorityConflictError) Error() string {
	return fmt.Sprintf("container: namespace %q already has a getter with priority %v", e.Namespace, e.Priority)
}

// InvalidNamespaceError is returned for namespaces outside [A-Za-z0-9_]+.
type InvalidNamespaceError struct{ Namespace string }

func (e *InvalidNamespaceError) Error() string {
	return fmt.Sprintf("container: invalid namespace %q, only [A-Za-z0-9_] allowed", e.Namespace)
}

// InvalidProviderError is returned by RegisterProvider for a nil provider.
type InvalidProviderError struct{ Provider any }

func (e *InvalidProviderError) Error() string {
	return fmt.Sprintf("container: %T is not a provider", e.Provider)
}

// InvalidFactoryError is returned when a factory or getter cannot be
// registered: nil function or nil key.
type InvalidFactoryError struct {
	Key    Key
	Reason string
}

func (e *InvalidFactoryError) Error() string {
	return "container: invalid factory for " + Describe(e.Key) + ": " + e.Reason
}
