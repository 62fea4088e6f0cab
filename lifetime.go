package wireup

import "fmt"

// Lifetime controls when instances of a service are created.
//
// Available lifetimes:
//   - [Singleton] creates the instance once per Container tree.
//   - [Scoped] creates one instance per child scope.
//   - [Transient] creates a new instance for every resolution.
//
// A Lifetime can be used directly as a [ServiceOption]:
//
//	c, err := wireup.NewContainer(
//		wireup.WithService(NewRequestLog, wireup.Scoped),
//	)
type Lifetime uint8

const (
	// Singleton services are created once and shared by every scope.
	// This is the default lifetime.
	Singleton Lifetime = iota

	// Scoped services are created once per child scope.
	//
	// They cannot be resolved directly from the scope that registered them.
	Scoped

	// Transient services are created anew for every resolution.
	Transient
)

func (l Lifetime) applyService(s service) error {
	return s.setLifetime(l)
}

var _ ServiceOption = Singleton

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "Singleton"
	case Scoped:
		return "Scoped"
	case Transient:
		return "Transient"
	default:
		return fmt.Sprintf("Unknown Lifetime %d", l)
	}
}
