package wireup

import (
	"context"
	"reflect"
	"sync/atomic"

	"github.com/tkrause/wireup/internal/errors"
)

// Scope resolves services.
//
// Scope is implemented by [*Container]. A Scope can also be injected into
// constructor functions so services can resolve dependencies lazily; the
// injected Scope must be stored and used after the constructor returns, not
// called from within it.
type Scope interface {
	// Contains reports whether the Scope has a service of the given type.
	//
	// Available options:
	//   - [WithTag] specifies the tag associated with the service.
	Contains(t reflect.Type, opts ...ResolveOption) bool

	// Resolve returns a service of the given type from the Scope.
	//
	// Available options:
	//   - [WithTag] specifies the tag associated with the service.
	Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error)
}

// Resolve a service of type T from the [Scope].
func Resolve[T any](ctx context.Context, s Scope, opts ...ResolveOption) (T, error) {
	var val T
	anyVal, err := s.Resolve(ctx, reflect.TypeFor[T](), opts...)
	if anyVal != nil {
		val = anyVal.(T)
	}

	return val, err
}

// MustResolve resolves a service of type T from the [Scope], panicking if
// the service cannot be resolved.
func MustResolve[T any](ctx context.Context, s Scope, opts ...ResolveOption) T {
	val, err := Resolve[T](ctx, s, opts...)
	if err != nil {
		panic(err)
	}
	return val
}

// injectedScope wraps the resolving Container for injection as a Scope
// dependency. It rejects use until the constructor it was injected into has
// returned, because resolving re-entrantly would deadlock or cycle.
type injectedScope struct {
	// key identifies the service the Scope is injected into, for errors.
	key   serviceKey
	scope Scope
	ready atomic.Bool
}

func newInjectedScope(scope Scope, key serviceKey) (*injectedScope, func()) {
	s := &injectedScope{
		key:   key,
		scope: scope,
	}

	return s, func() { s.ready.Store(true) }
}

func (s *injectedScope) Contains(t reflect.Type, opts ...ResolveOption) bool {
	return s.scope.Contains(t, opts...)
}

func (s *injectedScope) Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error) {
	if !s.ready.Load() {
		return nil, errors.Errorf(
			"resolve %s: not supported on an injected Scope while resolving %s: "+
				"store the Scope and use it after the constructor returns",
			t, s.key,
		)
	}

	return s.scope.Resolve(ctx, t, opts...)
}

var _ Scope = (*injectedScope)(nil)
