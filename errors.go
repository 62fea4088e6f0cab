package wireup

import "errors"

var (
	// ErrServiceNotRegistered is returned when resolving a type that has
	// not been registered with the Container or any of its parents.
	ErrServiceNotRegistered = errors.New("service not registered")

	// ErrDependencyCycle is returned when resolving a service whose
	// dependencies form a cycle.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrContainerClosed is returned when using a Container after Close.
	ErrContainerClosed = errors.New("container closed")
)
