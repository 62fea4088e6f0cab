package wireuphttp

import (
	"log/slog"
	"net/http"
	"reflect"

	"github.com/tkrause/wireup"
	"github.com/tkrause/wireup/internal/errors"
	"github.com/tkrause/wireup/wireupctx"
)

// Handler is the capability implemented by middleware components that are
// registered with a [wireup.Container] and installed as pipeline stages.
//
// ServeMiddleware may run logic before and after delegating to next, and
// may choose not to call next at all.
type Handler interface {
	ServeMiddleware(w http.ResponseWriter, r *http.Request, next http.Handler)
}

var handlerType = reflect.TypeFor[Handler]()

// ResolveErrorHandler writes an error response when an adapter stage cannot
// resolve its middleware component. The downstream pipeline is not invoked.
//
// The default handler logs to [slog.Default] and writes a 500 response.
type ResolveErrorHandler = func(w http.ResponseWriter, r *http.Request, err error)

func defaultResolveErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error resolving middleware", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// RegisterMiddleware installs an adapter stage for the middleware
// capability T and returns the builder for chaining.
//
// On each request the adapter resolves T from the request scope and
// delegates to it. Install the request-scope step (see [RegisterInjector])
// before this stage; with no scope on the context the adapter fails the
// request through its [ResolveErrorHandler].
//
// A capability installed with RegisterMiddleware is skipped by
// [RegisterAllMiddleware] on the same builder, so an explicit registration
// wins over auto-wiring.
//
// Available options:
//   - [WithResolveErrorHandler] handles resolution errors.
func RegisterMiddleware[T Handler](b *Builder, opts ...AdapterOption) (*Builder, error) {
	if b == nil {
		return nil, errors.New("wireuphttp.RegisterMiddleware: builder is nil")
	}

	a := &adapter{
		key:        capabilityKey{Type: reflect.TypeFor[T]()},
		errHandler: defaultResolveErrorHandler,
	}

	err := applyAll(opts, func(opt AdapterOption) error {
		return opt.applyAdapter(a)
	})
	if err != nil {
		return nil, errors.Wrap(err, "wireuphttp.RegisterMiddleware")
	}

	b.markInstalled(a.key)
	b.Use(a.wrap)
	return b, nil
}

// RegisterAllMiddleware installs the request-scope step (if the builder
// does not have it yet) followed by one adapter stage for every middleware
// capability known to root, and returns the builder for chaining.
//
// A registration is a middleware capability if its declared type is
// assignable to [Handler]; the bare Handler interface itself is skipped, as
// are capabilities already installed on the builder with
// [RegisterMiddleware]. Stages install in the order
// [wireup.Container.Registrations] enumerates them. If nothing qualifies
// the pipeline is left unchanged.
//
// Adapters installed this way fall back to resolving from root when a
// request carries no scope.
//
// Returns an error, without modifying the pipeline, if b or root is nil or
// an option is invalid.
//
// Available options:
//   - [WithContainerOptions] adds container options for each request scope.
//   - [WithNewScopeErrorHandler] handles scope creation errors.
//   - [WithScopeCloseErrorHandler] handles scope close errors.
//   - [WithResolveErrorHandler] handles adapter resolution errors.
func RegisterAllMiddleware(b *Builder, root *wireup.Container, opts ...RegisterAllOption) (*Builder, error) {
	if b == nil {
		return nil, errors.New("wireuphttp.RegisterAllMiddleware: builder is nil")
	}
	if root == nil {
		return nil, errors.New("wireuphttp.RegisterAllMiddleware: root is nil")
	}

	cfg := &registerAllConfig{}
	err := applyAll(opts, func(opt RegisterAllOption) error {
		return opt.applyRegisterAll(cfg)
	})
	if err != nil {
		return nil, errors.Wrap(err, "wireuphttp.RegisterAllMiddleware")
	}

	// Validate adapter options against a template before touching the
	// pipeline, so an invalid option cannot leave it half-built.
	tmpl := adapter{
		fallback:   root,
		errHandler: defaultResolveErrorHandler,
	}
	err = applyAll(cfg.adapterOpts, func(opt AdapterOption) error {
		return opt.applyAdapter(&tmpl)
	})
	if err != nil {
		return nil, errors.Wrap(err, "wireuphttp.RegisterAllMiddleware")
	}

	err = registerInjector(b, root, cfg.scopeOpts)
	if err != nil {
		return nil, errors.Wrap(err, "wireuphttp.RegisterAllMiddleware")
	}

	for _, reg := range root.Registrations() {
		if reg.Type == handlerType || !reg.Type.AssignableTo(handlerType) {
			continue
		}

		key := capabilityKey{Type: reg.Type, Tag: reg.Tag}
		if b.isInstalled(key) {
			continue
		}

		a := tmpl
		a.key = key

		b.markInstalled(key)
		b.Use(a.wrap)
	}

	return b, nil
}

// adapter is a pipeline stage that resolves a middleware component from the
// request scope on each invocation and delegates to it.
type adapter struct {
	key        capabilityKey
	fallback   wireup.Scope
	errHandler ResolveErrorHandler
}

func (a *adapter) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.serve(w, r, next)
	})
}

func (a *adapter) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := r.Context()

	scope := wireupctx.Scope(ctx)
	if scope == nil {
		scope = a.fallback
	}
	if scope == nil {
		a.errHandler(w, r, errors.Errorf(
			"middleware %s: no request scope on context: install the scope injector first", a.key.Type))
		return
	}

	var opts []wireup.ResolveOption
	if a.key.Tag != nil {
		opts = append(opts, wireup.WithTag(a.key.Tag))
	}

	val, err := scope.Resolve(ctx, a.key.Type, opts...)
	if err != nil {
		a.errHandler(w, r, errors.Wrapf(err, "middleware %s", a.key.Type))
		return
	}

	val.(Handler).ServeMiddleware(w, r, next)
}
