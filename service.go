package wireup

import (
	"fmt"
	"reflect"

	"github.com/tkrause/wireup/internal/errors"
)

// serviceKey identifies a registration by declared type and optional tag.
type serviceKey struct {
	Type reflect.Type
	Tag  any
}

func (k serviceKey) String() string {
	if k.Tag == nil {
		return k.Type.String()
	}
	return fmt.Sprintf("%s (Tag %v)", k.Type, k.Tag)
}

// service describes a registered service and how to build instances of it.
type service interface {
	// Type returns the type the service was registered from.
	Type() reflect.Type

	// Lifetime returns the lifetime of the service.
	Lifetime() Lifetime
	setLifetime(Lifetime) error

	// Tag returns the tag associated with the service, or nil.
	Tag() any
	setTag(any)

	// Aliases returns additional types the service is registered under.
	Aliases() []reflect.Type
	addAlias(reflect.Type) error

	// Scope returns the Container the service was registered with.
	Scope() *Container
	setScope(*Container)

	// Dependencies returns the keys of the services this service depends on.
	Dependencies() []serviceKey

	// New builds an instance of the service from resolved dependencies.
	New(deps []reflect.Value) (any, error)

	// CloserFor returns a Closer for a resolved instance, or nil if the
	// instance should not be closed by the Container.
	CloserFor(val any) Closer
	setCloserFactory(closerFactory)
}

// ServiceOption configures a service registration made with [WithService].
//
// Available options:
//   - [Singleton], [Scoped], [Transient] set the service lifetime.
//   - [As] registers an additional type for the service.
//   - [WithTag] associates a tag with the service.
//   - [WithTagged] associates a tag with a dependency.
//   - [WithCloser], [IgnoreCloser], [WithCloseFunc] control teardown.
type ServiceOption interface {
	applyService(service) error
}

type serviceOption func(service) error

func (o serviceOption) applyService(s service) error {
	return o(s)
}

func validateServiceType(t reflect.Type) error {
	switch t {
	// The special types used by the Container cannot be services.
	case typeError, typeContext, typeScope:
		return errors.Errorf("invalid service type %s", t)
	}

	switch t.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Struct:
		return nil
	}

	return errors.Errorf("invalid service type %s", t)
}
