package wireup

import (
	"reflect"

	"github.com/tkrause/wireup/internal/errors"
)

// funcService builds instances by calling a constructor function.
type funcService struct {
	t             reflect.Type
	fn            reflect.Value
	tag           any
	lifetime      Lifetime
	aliases       []reflect.Type
	deps          []serviceKey
	scope         *Container
	closerFactory closerFactory
}

func newFuncService(fn any, opts ...ServiceOption) (*funcService, error) {
	fnType := reflect.TypeOf(fn)
	fnVal := reflect.ValueOf(fn)

	// The constructor must return T or (T, error)
	var t reflect.Type
	switch {
	case fnType.NumOut() == 1 && fnType.Out(0) != typeError:
		t = fnType.Out(0)
	case fnType.NumOut() == 2 && fnType.Out(1) == typeError:
		t = fnType.Out(0)
	default:
		return nil, errors.New("function must return Service or (Service, error)")
	}

	if err := validateServiceType(t); err != nil {
		return nil, err
	}

	if fnType.IsVariadic() {
		return nil, errors.New("variadic functions are not supported")
	}

	var deps []serviceKey
	if fnType.NumIn() > 0 {
		deps = make([]serviceKey, fnType.NumIn())
		for i := range fnType.NumIn() {
			deps[i] = serviceKey{Type: fnType.In(i)}
		}
	}

	svc := &funcService{
		t:             t,
		fn:            fnVal,
		deps:          deps,
		closerFactory: closerFor,
	}

	err := applyOptions(opts, func(opt ServiceOption) error {
		return opt.applyService(svc)
	})
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func (s *funcService) Type() reflect.Type {
	return s.t
}

func (s *funcService) Lifetime() Lifetime {
	return s.lifetime
}

func (s *funcService) setLifetime(l Lifetime) error {
	s.lifetime = l
	return nil
}

func (s *funcService) Tag() any {
	return s.tag
}

func (s *funcService) setTag(tag any) {
	s.tag = tag
}

func (s *funcService) Aliases() []reflect.Type {
	return s.aliases
}

func (s *funcService) addAlias(alias reflect.Type) error {
	if !s.t.AssignableTo(alias) {
		return errors.Errorf("type %s not assignable to %s", s.t, alias)
	}

	s.aliases = append(s.aliases, alias)
	return nil
}

func (s *funcService) Scope() *Container {
	return s.scope
}

func (s *funcService) setScope(c *Container) {
	s.scope = c
}

func (s *funcService) Dependencies() []serviceKey {
	return s.deps
}

func (s *funcService) New(deps []reflect.Value) (any, error) {
	out := s.fn.Call(deps)

	val := out[0].Interface()

	var err error
	if len(out) == 2 && !out[1].IsNil() {
		err = out[1].Interface().(error)
	}

	return val, err
}

func (s *funcService) CloserFor(val any) Closer {
	if val == nil || s.closerFactory == nil {
		return nil
	}

	return s.closerFactory(val)
}

func (s *funcService) setCloserFactory(cf closerFactory) {
	s.closerFactory = cf
}

var _ service = (*funcService)(nil)
