package wireuphttp_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkrause/wireup"
	"github.com/tkrause/wireup/internal/errors"
	"github.com/tkrause/wireup/internal/testtypes"
	"github.com/tkrause/wireup/internal/testutils"
	"github.com/tkrause/wireup/wireupctx"
	"github.com/tkrause/wireup/wireuphttp"
)

func Test_NewRequestScopeMiddleware(t *testing.T) {
	t.Run("nil parent", func(t *testing.T) {
		mw, err := wireuphttp.NewRequestScopeMiddleware(nil)
		testutils.LogError(t, err)

		assert.Nil(t, mw)
		assert.EqualError(t, err, "wireuphttp.NewRequestScopeMiddleware: parent is nil")
	})

	t.Run("nil new scope error handler", func(t *testing.T) {
		c, err := wireup.NewContainer()
		require.NoError(t, err)

		mw, err := wireuphttp.NewRequestScopeMiddleware(c,
			wireuphttp.WithNewScopeErrorHandler(nil),
		)
		testutils.LogError(t, err)

		assert.Nil(t, mw)
		assert.EqualError(t, err, "wireuphttp.NewRequestScopeMiddleware: WithNewScopeErrorHandler: h is nil")
	})

	t.Run("nil scope close error handler", func(t *testing.T) {
		c, err := wireup.NewContainer()
		require.NoError(t, err)

		mw, err := wireuphttp.NewRequestScopeMiddleware(c,
			wireuphttp.WithScopeCloseErrorHandler(nil),
		)
		testutils.LogError(t, err)

		assert.Nil(t, mw)
		assert.EqualError(t, err, "wireuphttp.NewRequestScopeMiddleware: WithScopeCloseErrorHandler: h is nil")
	})

	t.Run("multiple wrapped handlers", func(t *testing.T) {
		c, err := wireup.NewContainer()
		require.NoError(t, err)

		mw, err := wireuphttp.NewRequestScopeMiddleware(c)
		require.NoError(t, err)

		handlerA := mw(http.NotFoundHandler())
		handlerB := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		assert.Equal(t, http.StatusNotFound, RunRequest(t, handlerA, "/").Code)
		assert.Equal(t, http.StatusInternalServerError, RunRequest(t, handlerB, "/").Code)
	})
}

func Test_RequestScopeMiddleware(t *testing.T) {
	t.Run("scoped service", func(t *testing.T) {
		c, err := wireup.NewContainer(
			wireup.WithService(testtypes.NewServiceA),
			wireup.WithService(testtypes.NewServiceB, wireup.Scoped),
		)
		require.NoError(t, err)

		mw, err := wireuphttp.NewRequestScopeMiddleware(c)
		require.NoError(t, err)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, resolveErr := wireupctx.Resolve[testtypes.ServiceB](r.Context())
			assert.NoError(t, resolveErr)
			assert.NotNil(t, b)

			w.WriteHeader(http.StatusOK)
		})

		res := RunRequest(t, mw(handler), "/")
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("request resolvable from scope", func(t *testing.T) {
		c, err := wireup.NewContainer()
		require.NoError(t, err)

		mw, err := wireuphttp.NewRequestScopeMiddleware(c)
		require.NoError(t, err)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			req, resolveErr := wireupctx.Resolve[*http.Request](ctx)

			assert.NoError(t, resolveErr)
			assert.Equal(t, r, req.WithContext(ctx))

			w.WriteHeader(http.StatusOK)
		})

		res := RunRequest(t, mw(handler), "/")
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("with container options", func(t *testing.T) {
		c, err := wireup.NewContainer(
			wireup.WithService(testtypes.NewServiceA),
		)
		require.NoError(t, err)

		mw, err := wireuphttp.NewRequestScopeMiddleware(c,
			wireuphttp.WithContainerOptions(
				wireup.WithService(testtypes.NewServiceB),
			),
		)
		require.NoError(t, err)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, resolveErr := wireupctx.Resolve[testtypes.ServiceB](r.Context())
			assert.NoError(t, resolveErr)
			assert.NotNil(t, b)

			w.WriteHeader(http.StatusOK)
		})

		res := RunRequest(t, mw(handler), "/")
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("scope released after request", func(t *testing.T) {
		rec := testtypes.NewCloseRecorder(nil)

		c, err := wireup.NewContainer(
			wireup.WithService(func() *testtypes.CloseRecorder { return rec }, wireup.Scoped),
		)
		require.NoError(t, err)

		mw, err := wireuphttp.NewRequestScopeMiddleware(c)
		require.NoError(t, err)

		var scope wireup.Scope
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope = wireupctx.Scope(r.Context())

			got, resolveErr := wireupctx.Resolve[*testtypes.CloseRecorder](r.Context())
			assert.NoError(t, resolveErr)
			assert.Same(t, rec, got)

			w.WriteHeader(http.StatusOK)
		})

		res := RunRequest(t, mw(handler), "/")
		require.Equal(t, http.StatusOK, res.Code)

		require.NotNil(t, scope)
		assert.Equal(t, 1, rec.CloseCount())

		// The scope is closed, not merely emptied.
		_, err = wireup.Resolve[*testtypes.CloseRecorder](context.Background(), scope)
		assert.ErrorIs(t, err, wireup.ErrContainerClosed)
	})

	t.Run("scope released on downstream panic", func(t *testing.T) {
		rec := testtypes.NewCloseRecorder(nil)

		c, err := wireup.NewContainer(
			wireup.WithService(func() *testtypes.CloseRecorder { return rec }, wireup.Scoped),
		)
		require.NoError(t, err)

		mw, err := wireuphttp.NewRequestScopeMiddleware(c)
		require.NoError(t, err)

		handler := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			_ = wireupctx.MustResolve[*testtypes.CloseRecorder](r.Context())
			panic("downstream failure")
		})

		assert.Panics(t, func() {
			RunRequest(t, mw(handler), "/")
		})

		assert.Equal(t, 1, rec.CloseCount())
	})

	t.Run("scope isolation and singleton sharing", func(t *testing.T) {
		c, err := wireup.NewContainer(
			wireup.WithService(testtypes.NewServiceA),
			wireup.WithService(testtypes.NewServiceB, wireup.Scoped),
		)
		require.NoError(t, err)

		mw, err := wireuphttp.NewRequestScopeMiddleware(c)
		require.NoError(t, err)

		var singletons []testtypes.ServiceA
		var scoped []testtypes.ServiceB

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			singletons = append(singletons, wireupctx.MustResolve[testtypes.ServiceA](r.Context()))
			scoped = append(scoped, wireupctx.MustResolve[testtypes.ServiceB](r.Context()))
			w.WriteHeader(http.StatusOK)
		})
		h := mw(handler)

		RunRequest(t, h, "/")
		RunRequest(t, h, "/")

		require.Len(t, singletons, 2)
		require.Len(t, scoped, 2)
		assert.Same(t, singletons[0], singletons[1])
		assert.NotSame(t, scoped[0], scoped[1])
	})

	t.Run("concurrent requests", func(t *testing.T) {
		// Each request's scope injects that request into a scoped service.
		// The resolved service must match the request it was created for.
		const concurrency = 1000

		c, err := wireup.NewContainer(
			wireup.WithService(func(r *http.Request) *testtypes.StructA {
				return &testtypes.StructA{Tag: r.URL.Path}
			}, wireup.Scoped),
		)
		require.NoError(t, err)

		mw, err := wireuphttp.NewRequestScopeMiddleware(c)
		require.NoError(t, err)

		tags := make(chan any, concurrency)
		expected := make(chan any, concurrency)

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, resolveErr := wireupctx.Resolve[*testtypes.StructA](r.Context())
			if !assert.NoError(t, resolveErr) {
				return
			}

			assert.Equal(t, r.URL.Path, a.Tag)
			tags <- a.Tag
		}))

		testutils.RunParallel(concurrency, func(i int) {
			path := fmt.Sprintf("/%d", i)
			expected <- path

			RunRequest(t, handler, path)
		})

		close(tags)
		close(expected)

		assert.ElementsMatch(t, testutils.CollectChannel(expected), testutils.CollectChannel(tags))
	})

	t.Run("new scope error", func(t *testing.T) {
		c, err := wireup.NewContainer()
		require.NoError(t, err)

		called := false

		mw, err := wireuphttp.NewRequestScopeMiddleware(c,
			wireuphttp.WithContainerOptions(
				wireup.WithService(nil),
			),
			wireuphttp.WithNewScopeErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				assert.NotNil(t, w)
				assert.NotNil(t, r)
				assert.EqualError(t, err, "wireup.Container.NewScope: with service: funcOrValue is nil")
				called = true

				w.WriteHeader(599)
			}),
		)
		require.NoError(t, err)

		handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			assert.Fail(t, "handler should not get called")
		})

		res := RunRequest(t, mw(handler), "/")
		assert.Equal(t, 599, res.Code)
		assert.True(t, called)
	})

	t.Run("close error", func(t *testing.T) {
		c, err := wireup.NewContainer(
			wireup.WithService(func() *testtypes.CloseRecorder {
				return testtypes.NewCloseRecorder(errors.New("close failed"))
			}, wireup.Transient),
		)
		require.NoError(t, err)

		called := false

		mw, err := wireuphttp.NewRequestScopeMiddleware(c,
			wireuphttp.WithScopeCloseErrorHandler(func(r *http.Request, err error) {
				assert.NotNil(t, r)
				assert.EqualError(t, err, "wireup.Container.Close: close failed")
				called = true
			}),
		)
		require.NoError(t, err)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec, resolveErr := wireupctx.Resolve[*testtypes.CloseRecorder](r.Context())
			assert.NoError(t, resolveErr)
			assert.NotNil(t, rec)

			w.WriteHeader(http.StatusOK)
		})

		res := RunRequest(t, mw(handler), "/")
		assert.Equal(t, http.StatusOK, res.Code)
		assert.True(t, called)
	})
}
