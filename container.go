package wireup

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/tkrause/wireup/internal/errors"
)

// Container is a dependency injection container. It resolves services by
// first resolving their dependencies, and closes the services it created
// when the Container is closed.
//
// A Container is safe for concurrent resolution once built. Registration
// happens only through [NewContainer] and [Container.NewScope] options.
type Container struct {
	parent     *Container
	services   map[serviceKey][]service
	order      []serviceKey
	resolved   map[service]resolveResult
	closers    []Closer
	resolvedMu sync.RWMutex
	closersMu  sync.Mutex
	closedMu   sync.RWMutex
	closed     bool
}

var _ Scope = (*Container)(nil)

// NewContainer creates a new root [Container] with the provided options.
//
// Available options:
//   - [WithService] registers a service from a constructor function or value.
//   - [WithModule] applies a reusable group of options.
//   - [WithDependencyValidation] checks registrations for missing
//     dependencies and cycles.
func NewContainer(opts ...ContainerOption) (*Container, error) {
	c := &Container{
		services: make(map[serviceKey][]service),
		resolved: make(map[service]resolveResult),
	}

	err := c.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "wireup.NewContainer")
	}

	return c, nil
}

// ContainerOption configures a [Container] when calling [NewContainer] or
// [Container.NewScope].
type ContainerOption interface {
	order() optionOrder
	applyContainer(*Container) error
}

func (c *Container) applyOptions(opts []ContainerOption) error {
	opts = flattenModules(opts)

	// Stable sort by precedence so registrations apply before validation
	// while the registration order itself is preserved.
	slices.SortStableFunc(opts, func(a, b ContainerOption) int {
		return cmp.Compare(a.order(), b.order())
	})

	var errs []error
	for _, o := range opts {
		if err := o.applyContainer(c); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// WithService registers a service with a new [Container].
//
// If funcOrValue is a function, it is treated as a constructor and called
// when the service is resolved. The function may take any number of
// parameters, which are resolved from the Container as dependencies. It may
// also accept a [context.Context] or a [wireup.Scope]. It must return the
// service, or the service and an error.
//
// Any other value is registered as an already-built singleton under its
// concrete type.
//
// If a resolved service implements [Closer], or a compatible Close method
// signature, it is closed when the Container closes.
//
// Available options:
//   - [Singleton], [Scoped], [Transient] set the lifetime.
//   - [As] registers the service under an additional type.
//   - [WithTag] differentiates services of the same type.
//   - [WithTagged] selects a tagged registration for a dependency.
//   - [WithCloser], [IgnoreCloser], [WithCloseFunc] control teardown.
func WithService(funcOrValue any, opts ...ServiceOption) ContainerOption {
	return newContainerOption(orderService, func(c *Container) error {
		if funcOrValue == nil {
			return errors.New("with service: funcOrValue is nil")
		}

		if _, ok := funcOrValue.(ServiceOption); ok {
			return errors.Errorf("with service %T: unexpected ServiceOption as funcOrValue", funcOrValue)
		}

		var svc service
		var err error
		if reflect.TypeOf(funcOrValue).Kind() == reflect.Func {
			svc, err = newFuncService(funcOrValue, opts...)
		} else {
			svc, err = newValueService(funcOrValue, opts...)
		}

		if err != nil {
			return errors.Wrapf(err, "with service %T", funcOrValue)
		}

		c.register(svc)
		return nil
	})
}

func (c *Container) register(svc service) {
	svc.setScope(c)

	if aliases := svc.Aliases(); len(aliases) > 0 {
		for _, alias := range aliases {
			c.registerType(alias, svc)
		}
	} else {
		c.registerType(svc.Type(), svc)
	}

	// Value services are created up front, so their closers are recorded at
	// registration. No locks needed: registration is single-threaded.
	if vs, ok := svc.(*valueService); ok {
		if closer := svc.CloserFor(vs.val); closer != nil {
			c.closers = append(c.closers, closer)
		}
	}
}

func (c *Container) registerType(t reflect.Type, svc service) {
	key := serviceKey{
		Type: t,
		Tag:  svc.Tag(),
	}

	if _, seen := c.services[key]; !seen {
		c.order = append(c.order, key)
	}
	c.services[key] = append(c.services[key], svc)
}

// lookupService finds the registration for key, walking up parent scopes.
// The last registration for a key wins.
func (c *Container) lookupService(key serviceKey) service {
	for scope := c; scope != nil; scope = scope.parent {
		if svcs, ok := scope.services[key]; ok {
			return svcs[len(svcs)-1]
		}
	}

	return nil
}

// NewScope creates a child [Container].
//
// The child inherits the parent's registrations and may add scope-local
// ones, isolated from the parent and from sibling scopes. Closing the child
// closes only the services the child created.
//
// Available options:
//   - [WithService] registers a scope-local service.
//   - [WithModule] applies a reusable group of options.
//   - [WithDependencyValidation] checks registrations for missing
//     dependencies and cycles.
func (c *Container) NewScope(opts ...ContainerOption) (*Container, error) {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return nil, errors.Wrap(ErrContainerClosed, "wireup.Container.NewScope")
	}

	scope := &Container{
		parent:   c,
		services: make(map[serviceKey][]service),
		resolved: make(map[service]resolveResult),
	}

	err := scope.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "wireup.Container.NewScope")
	}

	return scope, nil
}

// Contains reports whether a service of the given type is registered with
// the Container or any of its parents.
//
// Available options:
//   - [WithTag] specifies the tag associated with the service.
func (c *Container) Contains(t reflect.Type, opts ...ResolveOption) bool {
	key := serviceKey{Type: t}
	for _, opt := range opts {
		key = opt.applyServiceKey(key)
	}

	for scope := c; scope != nil; scope = scope.parent {
		if _, ok := scope.services[key]; ok {
			return true
		}
	}

	return false
}

// ResolveOption configures a lookup when calling [Resolve], [MustResolve],
// [Container.Resolve], or [Container.Contains].
//
// Available options:
//   - [WithTag]
type ResolveOption interface {
	applyServiceKey(serviceKey) serviceKey
}

// Resolve returns a service of the given type, creating it and its
// dependencies as needed.
//
// Returns an error wrapping [ErrServiceNotRegistered] if the type is not
// registered, [ErrDependencyCycle] if the dependency graph has a cycle, and
// [ErrContainerClosed] if the Container has been closed.
//
// Available options:
//   - [WithTag] specifies the tag associated with the service.
func (c *Container) Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error) {
	key := serviceKey{Type: t}
	for _, opt := range opts {
		key = opt.applyServiceKey(key)
	}

	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return nil, errors.Wrapf(ErrContainerClosed, "wireup.Container.Resolve %s", key)
	}

	val, err := resolveKey(ctx, c, key, make(resolveVisitor))
	if err != nil {
		return val, errors.Wrapf(err, "wireup.Container.Resolve %s", key)
	}

	return val, nil
}

func resolveKey(ctx context.Context, scope *Container, key serviceKey, visitor resolveVisitor) (any, error) {
	svc := scope.lookupService(key)
	if svc == nil {
		return nil, ErrServiceNotRegistered
	}

	return resolveService(ctx, scope, key, svc, visitor)
}

func resolveService(
	ctx context.Context,
	scope *Container,
	key serviceKey,
	svc service,
	visitor resolveVisitor,
) (val any, err error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Singletons live in the scope that registered them. Scoped services
	// live in the resolving scope, and must not be resolved directly from
	// the registering scope since nothing would ever close them there.
	lifetime := svc.Lifetime()
	if lifetime == Singleton {
		scope = svc.Scope()
	} else if lifetime == Scoped && scope == svc.Scope() {
		return nil, errors.Errorf("scoped service must be resolved from a child scope")
	}

	if lifetime != Transient {
		scope.resolvedMu.RLock()
		res, exists := scope.resolved[svc]
		scope.resolvedMu.RUnlock()

		if exists {
			return res.val, res.err
		}
	}

	if !visitor.Enter(svc) {
		return nil, ErrDependencyCycle
	}
	defer visitor.Leave(svc)

	var depVals []reflect.Value

	deps := svc.Dependencies()
	if len(deps) > 0 {
		depVals = make([]reflect.Value, len(deps))
		for i, depKey := range deps {
			var depVal any
			var depErr error

			switch depKey.Type {
			case typeContext:
				depVal = ctx

			case typeScope:
				var ready func()
				depVal, ready = newInjectedScope(scope, key)
				defer ready()

			default:
				depVal, depErr = resolveKey(ctx, scope, depKey, visitor)
			}

			if depErr != nil {
				return nil, errors.Wrapf(depErr, "dependency %s", depKey)
			}
			depVals[i] = safeReflectValue(depKey.Type, depVal)
		}
	}

	if lifetime != Transient {
		// Lock before creating so the service is not created twice.
		scope.resolvedMu.Lock()
		defer scope.resolvedMu.Unlock()

		// Another goroutine may have resolved it since the last check.
		if res, exists := scope.resolved[svc]; exists {
			return res.val, res.err
		}

		defer func() {
			scope.resolved[svc] = resolveResult{val, err}
		}()
	}

	val, err = svc.New(depVals)
	if err != nil {
		return val, err
	}

	// Value-service closers are recorded at registration; recording them
	// again here would close the instance twice.
	if _, isValue := svc.(*valueService); !isValue {
		if closer := svc.CloserFor(val); closer != nil {
			scope.closersMu.Lock()
			scope.closers = append(scope.closers, closer)
			scope.closersMu.Unlock()
		}
	}

	return val, nil
}

// Close closes the Container and the services it created.
//
// Services are closed in the reverse of their creation order, so services
// close before their dependencies. Errors from individual services are
// joined together.
//
// Close returns an error wrapping [ErrContainerClosed] if called more than
// once.
func (c *Container) Close(ctx context.Context) error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return errors.Wrap(ErrContainerClosed, "wireup.Container.Close: closed already")
	}
	c.closed = true

	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return errors.Wrap(err, "wireup.Container.Close")
	}

	return nil
}

// WithDependencyValidation checks registrations when the [Container] is
// created: every dependency must be registered and the dependency graph
// must be acyclic. Returns an error describing each problem found.
//
// On a root Container, scoped services are skipped because their
// dependencies may be registered with a child scope; validating a child
// scope checks them against that scope.
func WithDependencyValidation() ContainerOption {
	return newContainerOption(orderValidation, func(c *Container) error {
		if err := c.validateDependencies(); err != nil {
			return errors.Wrap(err, "with dependency validation")
		}

		return nil
	})
}

func (c *Container) validateDependencies() error {
	var errs []error
	problems := make(map[service]string)

	for _, svcs := range c.services {
		for _, svc := range svcs {
			if svc.Lifetime() == Scoped && c.parent == nil {
				continue
			}

			if prob := c.validateService(svc, problems, make(resolveVisitor)); prob != "" {
				errs = append(errs, errors.Errorf("service %s: %s", svc.Type(), prob))
			}
		}
	}

	if c.parent != nil {
		// Scoped services registered with ancestors resolve against this
		// scope, so they are validated here.
		for p := c.parent; p != nil; p = p.parent {
			for _, svcs := range p.services {
				for _, svc := range svcs {
					if svc.Lifetime() != Scoped {
						continue
					}

					if prob := c.validateService(svc, problems, make(resolveVisitor)); prob != "" {
						errs = append(errs, errors.Errorf("service %s: %s", svc.Type(), prob))
					}
				}
			}
		}
	}

	return errors.Join(errs...)
}

func (c *Container) validateService(svc service, problems map[service]string, visitor resolveVisitor) string {
	if prob, ok := problems[svc]; ok {
		return prob
	}

	deps := svc.Dependencies()
	if len(deps) == 0 {
		problems[svc] = ""
		return ""
	}

	if !visitor.Enter(svc) {
		return ErrDependencyCycle.Error()
	}
	defer visitor.Leave(svc)

	var found []string
	for _, depKey := range deps {
		if depKey.Type == typeContext || depKey.Type == typeScope {
			continue
		}

		depSvc := c.lookupService(depKey)
		if depSvc == nil {
			found = append(found, fmt.Sprintf("dependency %s: service not registered", depKey))
			continue
		}

		if prob := c.validateService(depSvc, problems, visitor); prob != "" {
			found = append(found, fmt.Sprintf("dependency %s: %s", depKey, prob))
		}
	}

	probs := strings.Join(found, "; ")
	problems[svc] = probs
	return probs
}

type optionOrder int8

const (
	orderService optionOrder = iota
	orderValidation
)

func newContainerOption(order optionOrder, fn func(*Container) error) ContainerOption {
	return containerOption{fn: fn, ord: order}
}

type containerOption struct {
	fn  func(*Container) error
	ord optionOrder
}

func (o containerOption) order() optionOrder {
	return o.ord
}

func (o containerOption) applyContainer(c *Container) error {
	return o.fn(c)
}

type resolveResult struct {
	val any
	err error
}

// resolveVisitor tracks the services on the current resolution path to
// detect dependency cycles.
type resolveVisitor map[service]struct{}

func (v resolveVisitor) Enter(svc service) bool {
	if _, exists := v[svc]; exists {
		return false
	}

	v[svc] = struct{}{}
	return true
}

func (v resolveVisitor) Leave(svc service) {
	delete(v, svc)
}
