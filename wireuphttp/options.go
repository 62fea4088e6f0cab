package wireuphttp

import (
	"github.com/tkrause/wireup"
	"github.com/tkrause/wireup/internal/errors"
)

// ScopeMiddlewareOption configures the request-scope step when calling
// [NewRequestScopeMiddleware], [RegisterInjector], or
// [RegisterAllMiddleware].
type ScopeMiddlewareOption interface {
	RegisterAllOption
	applyScopeMiddleware(*scopeMiddleware) error
}

// AdapterOption configures adapter stages when calling [RegisterMiddleware]
// or [RegisterAllMiddleware].
type AdapterOption interface {
	RegisterAllOption
	applyAdapter(*adapter) error
}

// RegisterAllOption configures [RegisterAllMiddleware]. Every
// [ScopeMiddlewareOption] and [AdapterOption] is a RegisterAllOption.
type RegisterAllOption interface {
	applyRegisterAll(*registerAllConfig) error
}

type registerAllConfig struct {
	scopeOpts   []ScopeMiddlewareOption
	adapterOpts []AdapterOption
}

// WithContainerOptions adds [wireup.ContainerOption]s to apply when
// creating each request scope, typically to register request-local
// services.
func WithContainerOptions(opts ...wireup.ContainerOption) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) error {
		m.opts = append(m.opts, opts...)
		return nil
	})
}

// WithNewScopeErrorHandler sets the handler invoked when a request scope
// cannot be created.
func WithNewScopeErrorHandler(h NewScopeErrorHandler) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) error {
		if h == nil {
			return errors.New("WithNewScopeErrorHandler: h is nil")
		}

		m.newScopeHandler = h
		return nil
	})
}

// WithScopeCloseErrorHandler sets the handler invoked when closing a
// request scope returns an error.
func WithScopeCloseErrorHandler(h ScopeCloseErrorHandler) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) error {
		if h == nil {
			return errors.New("WithScopeCloseErrorHandler: h is nil")
		}

		m.closeHandler = h
		return nil
	})
}

// WithResolveErrorHandler sets the handler invoked when an adapter stage
// cannot resolve its middleware component.
func WithResolveErrorHandler(h ResolveErrorHandler) AdapterOption {
	return adapterOption(func(a *adapter) error {
		if h == nil {
			return errors.New("WithResolveErrorHandler: h is nil")
		}

		a.errHandler = h
		return nil
	})
}

type scopeMiddlewareOption func(*scopeMiddleware) error

func (o scopeMiddlewareOption) applyScopeMiddleware(m *scopeMiddleware) error {
	return o(m)
}

func (o scopeMiddlewareOption) applyRegisterAll(c *registerAllConfig) error {
	c.scopeOpts = append(c.scopeOpts, o)
	return nil
}

type adapterOption func(*adapter) error

func (o adapterOption) applyAdapter(a *adapter) error {
	return o(a)
}

func (o adapterOption) applyRegisterAll(c *registerAllConfig) error {
	c.adapterOpts = append(c.adapterOpts, o)
	return nil
}

// applyAll applies f to each option and joins any errors.
func applyAll[O any](opts []O, f func(O) error) error {
	var errs []error

	for _, o := range opts {
		if err := f(o); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
