package wireuphttp

import (
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/tkrause/wireup"
	"github.com/tkrause/wireup/internal/errors"
)

// injectors records which builders have the request-scope step installed.
// Markers are set with an atomic check-and-set so concurrent setup paths
// install the step at most once, and are never cleared.
var injectors = xsync.NewMapOf[*Builder, *wireup.Container]()

// IsInjectorRegistered reports whether the request-scope step has been
// installed on the builder by [RegisterInjector] or
// [RegisterAllMiddleware].
//
// Returns an error if b is nil.
func IsInjectorRegistered(b *Builder) (bool, error) {
	if b == nil {
		return false, errors.New("wireuphttp.IsInjectorRegistered: builder is nil")
	}

	_, ok := injectors.Load(b)
	return ok, nil
}

// RegisterInjector installs the request-scope step on the builder, using
// root as the parent scope for each request, and returns the builder for
// chaining.
//
// The step is installed at most once per builder: if another setup path has
// already registered it, the builder is returned unchanged. Install it
// before any stage that resolves services from the request scope.
//
// Returns an error, without modifying the pipeline, if b or root is nil or
// an option is invalid.
//
// Available options:
//   - [WithContainerOptions] adds container options for each request scope.
//   - [WithNewScopeErrorHandler] handles scope creation errors.
//   - [WithScopeCloseErrorHandler] handles scope close errors.
func RegisterInjector(b *Builder, root *wireup.Container, opts ...ScopeMiddlewareOption) (*Builder, error) {
	if b == nil {
		return nil, errors.New("wireuphttp.RegisterInjector: builder is nil")
	}
	if root == nil {
		return nil, errors.New("wireuphttp.RegisterInjector: root is nil")
	}

	err := registerInjector(b, root, opts)
	if err != nil {
		return nil, errors.Wrap(err, "wireuphttp.RegisterInjector")
	}

	return b, nil
}

func registerInjector(b *Builder, root *wireup.Container, opts []ScopeMiddlewareOption) error {
	mw, err := newScopeMiddleware(root, opts)
	if err != nil {
		return err
	}

	if _, loaded := injectors.LoadOrStore(b, root); loaded {
		// Already installed by another setup path.
		return nil
	}

	b.Use(mw.wrap)
	return nil
}
