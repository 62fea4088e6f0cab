package testtypes

import (
	"context"
	"sync"
)

// CloseRecorder counts Close calls and returns a configured error.
type CloseRecorder struct {
	mu     sync.Mutex
	closed int
	err    error
}

func NewCloseRecorder(err error) *CloseRecorder {
	return &CloseRecorder{err: err}
}

func (r *CloseRecorder) Close(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed++
	return r.err
}

// CloseCount returns how many times Close has been called.
func (r *CloseRecorder) CloseCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.closed
}

// CloseLog records the order services were closed in.
type CloseLog struct {
	mu    sync.Mutex
	names []string
}

func (l *CloseLog) record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.names = append(l.names, name)
}

// Names returns the recorded close order.
func (l *CloseLog) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.names...)
}

// NewTracked returns a service that reports its Close to the log.
func (l *CloseLog) NewTracked(name string) *Tracked {
	return &Tracked{name: name, log: l}
}

type Tracked struct {
	name string
	log  *CloseLog
}

func (t *Tracked) Name() string { return t.name }

func (t *Tracked) Close(context.Context) error {
	t.log.record(t.name)
	return nil
}
