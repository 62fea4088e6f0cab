package wireup

import (
	"context"
	"reflect"

	"github.com/tkrause/wireup/internal/errors"
)

// Types with special meaning to the Container.
var (
	typeError   = reflect.TypeFor[error]()
	typeContext = reflect.TypeFor[context.Context]()
	typeScope   = reflect.TypeFor[Scope]()
)

// safeReflectValue converts val to a reflect.Value that can be passed to a
// constructor, producing a typed zero value when val is nil.
func safeReflectValue(t reflect.Type, val any) reflect.Value {
	if val == nil {
		return reflect.Zero(t)
	}

	return reflect.ValueOf(val)
}

// applyOptions applies f to each option and joins any errors.
func applyOptions[O any](opts []O, f func(O) error) error {
	var errs []error

	for _, o := range opts {
		if err := f(o); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
