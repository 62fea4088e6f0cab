package wireuphttp

import (
	"net/http"
	"reflect"
)

// Middleware wraps an [http.Handler] with an additional pipeline stage.
//
// The type is an alias so middleware written for chi, or any other
// func(http.Handler) http.Handler based router, can be used directly.
type Middleware = func(http.Handler) http.Handler

// Builder accumulates an ordered middleware pipeline.
//
// Stages are appended during setup with [Use], [RegisterInjector],
// [RegisterMiddleware], or [RegisterAllMiddleware], and composed into a
// handler with [Build]. A Builder must not be mutated once it is serving
// requests.
type Builder struct {
	stages    []Middleware
	installed map[capabilityKey]struct{}
}

// capabilityKey identifies an installed adapter stage by the declared
// capability type and tag it resolves.
type capabilityKey struct {
	Type reflect.Type
	Tag  any
}

// NewBuilder returns an empty pipeline [Builder].
func NewBuilder() *Builder {
	return &Builder{
		installed: make(map[capabilityKey]struct{}),
	}
}

// Use appends stages to the pipeline and returns the Builder for chaining.
func (b *Builder) Use(stages ...Middleware) *Builder {
	b.stages = append(b.stages, stages...)
	return b
}

// Len returns the number of stages in the pipeline.
func (b *Builder) Len() int {
	return len(b.stages)
}

// Build composes the pipeline around final. Stages run in the order they
// were appended. A nil final defaults to [http.DefaultServeMux].
func (b *Builder) Build(final http.Handler) http.Handler {
	if final == nil {
		final = http.DefaultServeMux
	}

	h := final
	for i := len(b.stages) - 1; i >= 0; i-- {
		h = b.stages[i](h)
	}

	return h
}

func (b *Builder) markInstalled(key capabilityKey) {
	if b.installed == nil {
		b.installed = make(map[capabilityKey]struct{})
	}
	b.installed[key] = struct{}{}
}

func (b *Builder) isInstalled(key capabilityKey) bool {
	_, ok := b.installed[key]
	return ok
}
