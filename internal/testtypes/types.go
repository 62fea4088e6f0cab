package testtypes

import "context"

// The four services cover every Close method signature the container
// recognizes, and form a small dependency chain A <- B <- C <- D.

type ServiceA interface {
	A()
	Close(ctx context.Context) error
}

type ServiceB interface {
	B()
	Close(ctx context.Context)
}

type ServiceC interface {
	C()
	Close() error
}

type ServiceD interface {
	D()
	Close()
}

type StructA struct {
	// Tag carries an arbitrary per-instance marker for identity asserts.
	Tag any
}

func (*StructA) A()                          {}
func (*StructA) Close(context.Context) error { return nil }

type StructB struct{}

func (*StructB) B()                    {}
func (*StructB) Close(context.Context) {}

type StructC struct{}

func (*StructC) C()           {}
func (*StructC) Close() error { return nil }

type StructD struct{}

func (*StructD) D()     {}
func (*StructD) Close() {}

func NewServiceA() ServiceA {
	return &StructA{}
}

func NewStructA() *StructA {
	return &StructA{}
}

func NewServiceB(ServiceA) ServiceB {
	return &StructB{}
}

func NewServiceC(ServiceA, ServiceB) ServiceC {
	return &StructC{}
}

func NewServiceD(ServiceA, ServiceB, ServiceC) ServiceD {
	return &StructD{}
}
