package wireup_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkrause/wireup"
	"github.com/tkrause/wireup/internal/errors"
	"github.com/tkrause/wireup/internal/testtypes"
	"github.com/tkrause/wireup/internal/testutils"
)

func Test_Invoke(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves parameters", func(t *testing.T) {
		c, err := wireup.NewContainer(
			wireup.WithService(testtypes.NewServiceA),
			wireup.WithService(testtypes.NewServiceB),
		)
		require.NoError(t, err)

		var gotA testtypes.ServiceA
		var gotB testtypes.ServiceB

		err = wireup.Invoke(ctx, c, func(a testtypes.ServiceA, b testtypes.ServiceB) {
			gotA = a
			gotB = b
		})

		assert.NoError(t, err)
		assert.NotNil(t, gotA)
		assert.NotNil(t, gotB)
	})

	t.Run("context and scope parameters", func(t *testing.T) {
		c, err := wireup.NewContainer()
		require.NoError(t, err)

		err = wireup.Invoke(ctx, c, func(fnCtx context.Context, s wireup.Scope) {
			assert.Equal(t, ctx, fnCtx)
			assert.Equal(t, wireup.Scope(c), s)
		})
		assert.NoError(t, err)
	})

	t.Run("error returned", func(t *testing.T) {
		c, err := wireup.NewContainer()
		require.NoError(t, err)

		wantErr := errors.New("invoke failed")
		err = wireup.Invoke(ctx, c, func() error { return wantErr })

		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("unresolvable parameter", func(t *testing.T) {
		c, err := wireup.NewContainer()
		require.NoError(t, err)

		err = wireup.Invoke(ctx, c, func(testtypes.ServiceA) {})
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, wireup.ErrServiceNotRegistered)
	})

	t.Run("not a function", func(t *testing.T) {
		c, err := wireup.NewContainer()
		require.NoError(t, err)

		err = wireup.Invoke(ctx, c, "not a function")
		testutils.LogError(t, err)

		assert.ErrorContains(t, err, "fn must be a function")
	})

	t.Run("tagged parameter", func(t *testing.T) {
		c, err := wireup.NewContainer(
			wireup.WithService(func() *testtypes.StructA {
				return &testtypes.StructA{Tag: "primary"}
			}, wireup.WithTag("primary")),
		)
		require.NoError(t, err)

		err = wireup.Invoke(ctx, c, func(a *testtypes.StructA) {
			assert.Equal(t, "primary", a.Tag)
		}, wireup.WithTagged[*testtypes.StructA]("primary"))

		assert.NoError(t, err)
	})
}
