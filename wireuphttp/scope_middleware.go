package wireuphttp

import (
	"log/slog"
	"net/http"

	"github.com/tkrause/wireup"
	"github.com/tkrause/wireup/internal/errors"
	"github.com/tkrause/wireup/wireupctx"
)

// NewRequestScopeMiddleware returns a [Middleware] that opens a child scope
// of parent for each request and closes it after the request completes.
//
// The *http.Request is registered with the scope, so it can be a dependency
// of scoped services. The scope is carried on the request context and is
// available downstream through [wireupctx.Scope], [wireupctx.Resolve], and
// [wireupctx.MustResolve].
//
// The scope is closed on every exit path: normal completion, a panic in a
// downstream handler, and request cancellation.
//
// Available options:
//   - [WithContainerOptions] adds container options for each request scope.
//   - [WithNewScopeErrorHandler] handles scope creation errors.
//   - [WithScopeCloseErrorHandler] handles scope close errors.
func NewRequestScopeMiddleware(parent *wireup.Container, opts ...ScopeMiddlewareOption) (Middleware, error) {
	if parent == nil {
		return nil, errors.New("wireuphttp.NewRequestScopeMiddleware: parent is nil")
	}

	mw, err := newScopeMiddleware(parent, opts)
	if err != nil {
		return nil, errors.Wrap(err, "wireuphttp.NewRequestScopeMiddleware")
	}

	return mw.wrap, nil
}

// NewScopeErrorHandler writes an error response when a request scope cannot
// be created. The downstream handler is not invoked.
//
// The default handler logs to [slog.Default] and writes a 500 response.
type NewScopeErrorHandler = func(w http.ResponseWriter, r *http.Request, err error)

func defaultNewScopeErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error creating request scope", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// ScopeCloseErrorHandler handles errors from closing the request scope
// after the request has completed. The response has usually been written by
// this point, so the handler cannot report the error to the client.
//
// The default handler logs to [slog.Default].
type ScopeCloseErrorHandler = func(r *http.Request, err error)

func defaultScopeCloseErrorHandler(r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error closing request scope", "error", err)
}

type scopeMiddleware struct {
	parent          *wireup.Container
	opts            []wireup.ContainerOption
	newScopeHandler NewScopeErrorHandler
	closeHandler    ScopeCloseErrorHandler
}

func newScopeMiddleware(parent *wireup.Container, opts []ScopeMiddlewareOption) (*scopeMiddleware, error) {
	mw := &scopeMiddleware{
		parent:          parent,
		newScopeHandler: defaultNewScopeErrorHandler,
		closeHandler:    defaultScopeCloseErrorHandler,
	}

	err := applyAll(opts, func(opt ScopeMiddlewareOption) error {
		return opt.applyScopeMiddleware(mw)
	})
	if err != nil {
		return nil, err
	}

	return mw, nil
}

func (m *scopeMiddleware) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.serve(w, r, next)
	})
}

func (m *scopeMiddleware) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	// Build a fresh option slice per request; the configured slice is
	// shared by concurrent requests.
	opts := make([]wireup.ContainerOption, 0, len(m.opts)+1)
	opts = append(opts, m.opts...)
	opts = append(opts, wireup.WithService(r))

	scope, err := m.parent.NewScope(opts...)
	if err != nil {
		m.newScopeHandler(w, r, err)
		return
	}

	ctx := wireupctx.WithScope(r.Context(), scope)

	// Close the scope on every exit path, including downstream panics.
	defer func() {
		if closeErr := scope.Close(ctx); closeErr != nil {
			m.closeHandler(r, closeErr)
		}
	}()

	next.ServeHTTP(w, r.WithContext(ctx))
}
