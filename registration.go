package wireup

import "reflect"

// Registration describes a declared service mapping: the type a service is
// resolvable under, its tag, and its lifetime.
type Registration struct {
	Type     reflect.Type
	Tag      any
	Lifetime Lifetime
}

// Registrations enumerates the service mappings known to the Container.
//
// Mappings are keyed by declared type and tag, so a service registered
// under multiple aliases yields one entry per alias, and multiple
// registrations for the same key yield a single entry describing the
// registration that wins lookups.
//
// Entries appear in first-registration order, local scope first and then
// ancestors, with keys shadowed by a child scope omitted from the parent's
// portion. This order is stable for a given registration sequence.
func (c *Container) Registrations() []Registration {
	var regs []Registration
	seen := make(map[serviceKey]struct{})

	for scope := c; scope != nil; scope = scope.parent {
		for _, key := range scope.order {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			svcs := scope.services[key]
			svc := svcs[len(svcs)-1]

			regs = append(regs, Registration{
				Type:     key.Type,
				Tag:      key.Tag,
				Lifetime: svc.Lifetime(),
			})
		}
	}

	return regs
}
