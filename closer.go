package wireup

import (
	"context"
	"reflect"

	"github.com/tkrause/wireup/internal/errors"
)

// Closer is implemented by services that need teardown when their owning
// Container is closed.
//
// Any of these Close method signatures are recognized:
//
//	Close(context.Context) error
//	Close(context.Context)
//	Close() error
//	Close()
//
// See related options:
//   - [WithCloser]
//   - [IgnoreCloser]
//   - [WithCloseFunc]
type Closer interface {
	Close(ctx context.Context) error
}

type closerFactory func(val any) Closer

// WithCloser marks a service to be closed when the Container is closed, if
// it implements [Closer] or a compatible Close method signature.
//
// This is the default for constructor services. Value services are not
// closed by default because the Container did not create them; use this
// option to hand their teardown to the Container.
func WithCloser() ServiceOption {
	return serviceOption(func(s service) error {
		s.setCloserFactory(closerFor)
		return nil
	})
}

// IgnoreCloser keeps the Container from closing a service that implements
// [Closer] or a compatible Close method signature.
//
// Use this when the service lifecycle is managed outside the Container.
func IgnoreCloser() ServiceOption {
	return serviceOption(func(s service) error {
		s.setCloserFactory(nil)
		return nil
	})
}

// WithCloseFunc sets a custom teardown function for a service.
//
// Use this when a service's teardown method is named Shutdown or Stop
// rather than Close:
//
//	wireup.WithCloseFunc(func(ctx context.Context, s *http.Server) error {
//		return s.Shutdown(ctx)
//	})
//
// Returns an error during registration if the service type is not
// assignable to T.
func WithCloseFunc[T any](f func(context.Context, T) error) ServiceOption {
	return serviceOption(func(s service) error {
		svcType := s.Type()
		closeType := reflect.TypeFor[T]()

		if !svcType.AssignableTo(closeType) {
			return errors.Errorf("service type %s is not assignable to close func type %s",
				svcType, closeType)
		}

		s.setCloserFactory(func(val any) Closer {
			return closeFunc(func(ctx context.Context) error {
				return f(ctx, val.(T))
			})
		})
		return nil
	})
}

// closerFor adapts val to a Closer if it implements any recognized Close
// method signature.
func closerFor(val any) Closer {
	switch c := val.(type) {
	case Closer:
		return c
	case interface{ Close(context.Context) }:
		return closeFunc(func(ctx context.Context) error {
			c.Close(ctx)
			return nil
		})
	case interface{ Close() error }:
		return closeFunc(func(context.Context) error {
			return c.Close()
		})
	case interface{ Close() }:
		return closeFunc(func(context.Context) error {
			c.Close()
			return nil
		})
	default:
		return nil
	}
}

type closeFunc func(context.Context) error

func (f closeFunc) Close(ctx context.Context) error {
	return f(ctx)
}
