package wireup

import "slices"

// A Module is a reusable group of container options, typically exported by
// a package to register its related services together.
//
// Example:
//
//	var StorageModule = wireup.Module{
//		wireup.WithService(NewDB),
//		wireup.WithService(NewStore),
//	}
type Module []ContainerOption

func (Module) applyContainer(*Container) error { return nil }
func (Module) order() optionOrder              { return orderService }

// WithModule applies the options in a [Module] when calling [NewContainer]
// or [Container.NewScope].
//
// Example:
//
//	c, err := wireup.NewContainer(
//		wireup.WithModule(StorageModule),
//		wireup.WithService(NewHandler),
//	)
func WithModule(m Module) ContainerOption {
	return m
}

// flattenModules expands modules, including modules nested within modules,
// preserving option order.
func flattenModules(opts []ContainerOption) []ContainerOption {
	for i := 0; i < len(opts); i++ {
		if mod, ok := opts[i].(Module); ok {
			opts = slices.Insert(opts, i+1, mod...)
		}
	}

	return opts
}
