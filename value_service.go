package wireup

import (
	"reflect"

	"github.com/tkrause/wireup/internal/errors"
)

// valueService returns an existing value as the service instance.
type valueService struct {
	t             reflect.Type
	val           any
	tag           any
	aliases       []reflect.Type
	scope         *Container
	closerFactory closerFactory
}

func newValueService(val any, opts ...ServiceOption) (*valueService, error) {
	t := reflect.TypeOf(val)

	if err := validateServiceType(t); err != nil {
		return nil, err
	}

	svc := &valueService{
		t:   t,
		val: val,
	}

	err := applyOptions(opts, func(opt ServiceOption) error {
		return opt.applyService(svc)
	})
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func (s *valueService) Type() reflect.Type {
	return s.t
}

func (s *valueService) Lifetime() Lifetime {
	return Singleton
}

func (s *valueService) setLifetime(l Lifetime) error {
	if l != Singleton {
		return errors.Errorf("value services are always %s", Singleton)
	}
	return nil
}

func (s *valueService) Tag() any {
	return s.tag
}

func (s *valueService) setTag(tag any) {
	s.tag = tag
}

func (s *valueService) Aliases() []reflect.Type {
	return s.aliases
}

func (s *valueService) addAlias(alias reflect.Type) error {
	if !s.t.AssignableTo(alias) {
		return errors.Errorf("type %s not assignable to %s", s.t, alias)
	}

	s.aliases = append(s.aliases, alias)
	return nil
}

func (s *valueService) Scope() *Container {
	return s.scope
}

func (s *valueService) setScope(c *Container) {
	s.scope = c
}

func (*valueService) Dependencies() []serviceKey {
	return nil
}

func (s *valueService) New([]reflect.Value) (any, error) {
	return s.val, nil
}

func (s *valueService) CloserFor(val any) Closer {
	// The Container did not create this value so it does not close it by
	// default. WithCloser or WithCloseFunc opt in.
	if val == nil || s.closerFactory == nil {
		return nil
	}

	return s.closerFactory(val)
}

func (s *valueService) setCloserFactory(cf closerFactory) {
	s.closerFactory = cf
}

var _ service = (*valueService)(nil)
