package wireup

import (
	"context"
	"reflect"

	"github.com/tkrause/wireup/internal/errors"
)

// Invoke calls fn with parameters resolved from the provided [Scope].
//
// fn may take any number of parameters, which are resolved from the Scope.
// It may also accept a [context.Context] or a [wireup.Scope]. An error
// return value is passed through; other return values are ignored.
//
// Available options:
//   - [WithTagged] selects a tagged registration for a parameter.
func Invoke(ctx context.Context, s Scope, fn any, opts ...InvokeOption) error {
	fnType := reflect.TypeOf(fn)
	fnVal := reflect.ValueOf(fn)

	if fnType == nil || fnType.Kind() != reflect.Func {
		return errors.Errorf("wireup.Invoke %T: fn must be a function", fn)
	}

	deps := make([]serviceKey, fnType.NumIn())
	for i := range fnType.NumIn() {
		deps[i] = serviceKey{Type: fnType.In(i)}
	}

	config := &invokeConfig{deps: deps}

	err := applyOptions(opts, func(opt InvokeOption) error {
		return opt.applyInvokeConfig(config)
	})
	if err != nil {
		return errors.Wrapf(err, "wireup.Invoke %T", fn)
	}

	in := make([]reflect.Value, len(config.deps))
	for i, dep := range config.deps {
		var depVal any
		var depErr error

		switch {
		case dep.Type == typeContext:
			depVal = ctx
		case dep.Type == typeScope:
			depVal = s
		case dep.Tag != nil:
			depVal, depErr = s.Resolve(ctx, dep.Type, WithTag(dep.Tag))
		default:
			depVal, depErr = s.Resolve(ctx, dep.Type)
		}

		if depErr != nil {
			return errors.Wrapf(depErr, "wireup.Invoke %T: parameter %s", fn, dep)
		}
		in[i] = safeReflectValue(dep.Type, depVal)
	}

	out := fnVal.Call(in)

	for i := range out {
		if out[i].Type() == typeError && !out[i].IsNil() {
			return out[i].Interface().(error)
		}
	}

	return nil
}

// InvokeOption configures a call to [Invoke].
type InvokeOption interface {
	applyInvokeConfig(*invokeConfig) error
}

type invokeConfig struct {
	deps []serviceKey
}
