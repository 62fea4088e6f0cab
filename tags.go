package wireup

import (
	"reflect"

	"github.com/tkrause/wireup/internal/errors"
)

// WithTag associates a tag with a service to differentiate registrations of
// the same type. The tag must be comparable since it is part of the lookup
// key.
//
// WithTag can be used with:
//   - [WithService]
//   - [Resolve] / [MustResolve]
//   - [Container.Resolve]
//   - [Container.Contains]
func WithTag(tag any) ServiceTagOption {
	return tagOption{tag: tag}
}

// WithTagged selects a tagged registration for a dependency of type
// Dependency when calling [WithService] or [Invoke].
//
// The option can be repeated to tag multiple dependencies:
//
//	c, err := wireup.NewContainer(
//		wireup.WithService(db.NewPrimary, wireup.WithTag(db.PrimaryTag)),
//		wireup.WithService(db.NewReplica, wireup.WithTag(db.ReplicaTag)),
//		wireup.WithService(NewWriter, wireup.WithTagged[*db.DB](db.PrimaryTag)),
//		wireup.WithService(NewReader, wireup.WithTagged[*db.DB](db.ReplicaTag)),
//	)
//
// Returns an error during registration if the function has no untagged
// dependency of type Dependency.
func WithTagged[Dependency any](tag any) DependencyTagOption {
	return depTagOption{
		t:   reflect.TypeFor[Dependency](),
		tag: tag,
	}
}

// ServiceTagOption associates a tag with a service registration or lookup.
type ServiceTagOption interface {
	ServiceOption
	ResolveOption
}

// DependencyTagOption selects a tagged registration for a dependency.
type DependencyTagOption interface {
	ServiceOption
	InvokeOption
}

type tagOption struct {
	tag any
}

func (o tagOption) applyService(s service) error {
	if o.tag != nil && !reflect.TypeOf(o.tag).Comparable() {
		return errors.Errorf("with tag: tag type %T is not comparable", o.tag)
	}

	s.setTag(o.tag)
	return nil
}

func (o tagOption) applyServiceKey(key serviceKey) serviceKey {
	return serviceKey{
		Type: key.Type,
		Tag:  o.tag,
	}
}

var _ ServiceTagOption = tagOption{}

type depTagOption struct {
	t   reflect.Type
	tag any
}

// applyDeps tags the first dependency of the right type that has not been
// tagged yet. The slice is modified in place.
func (o depTagOption) applyDeps(deps []serviceKey) error {
	for i := range deps {
		if deps[i].Type == o.t && deps[i].Tag == nil {
			deps[i].Tag = o.tag
			return nil
		}
	}
	return errors.Errorf("with tagged %s: parameter not found", o.t)
}

func (o depTagOption) applyService(s service) error {
	return o.applyDeps(s.Dependencies())
}

func (o depTagOption) applyInvokeConfig(c *invokeConfig) error {
	return o.applyDeps(c.deps)
}

var _ DependencyTagOption = depTagOption{}
