package wireup

import "reflect"

// As registers an additional type for a service when calling [WithService].
//
// The service type must be assignable to T. A service registered with one
// or more aliases is resolvable under each alias but not under its own
// type, matching the declared capability rather than the implementation:
//
//	c, err := wireup.NewContainer(
//		// Resolvable as Store, not as *PostgresStore
//		wireup.WithService(NewPostgresStore, wireup.As[Store]()),
//	)
func As[T any]() ServiceOption {
	return serviceOption(func(s service) error {
		return s.addAlias(reflect.TypeFor[T]())
	})
}
