// Package wireupctx carries a [wireup.Scope] on a [context.Context].
//
// The request-scope middleware in package wireuphttp attaches each
// request's scope with [WithScope]; downstream request handling resolves
// services from it with [Resolve] or [MustResolve].
package wireupctx

import (
	"context"
	"reflect"

	"github.com/tkrause/wireup"
	"github.com/tkrause/wireup/internal/errors"
)

type scopeContextKey struct{}

// WithScope returns a new [context.Context] carrying the provided
// [wireup.Scope].
func WithScope(ctx context.Context, s wireup.Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// Scope returns the [wireup.Scope] carried by the [context.Context], or nil
// if the context does not carry one.
func Scope(ctx context.Context) wireup.Scope {
	if s, ok := ctx.Value(scopeContextKey{}).(wireup.Scope); ok {
		return s
	}
	return nil
}

// Resolve resolves a service of type T from the [wireup.Scope] carried by
// the [context.Context].
//
// Returns an error if the context does not carry a scope, or if the scope
// cannot resolve the service.
func Resolve[T any](ctx context.Context, opts ...wireup.ResolveOption) (T, error) {
	t := reflect.TypeFor[T]()
	var val T

	s := Scope(ctx)
	if s == nil {
		return val, errors.Errorf("resolve %s from context: scope not found on context", t)
	}

	anyVal, err := s.Resolve(ctx, t, opts...)
	if anyVal != nil {
		val = anyVal.(T)
	}

	return val, errors.Wrap(err, "resolve from context")
}

// MustResolve resolves a service of type T from the [wireup.Scope] carried
// by the [context.Context], panicking on failure.
func MustResolve[T any](ctx context.Context, opts ...wireup.ResolveOption) T {
	val, err := Resolve[T](ctx, opts...)
	if err != nil {
		panic(err)
	}
	return val
}
