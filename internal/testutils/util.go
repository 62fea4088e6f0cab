package testutils

import (
	"sync"
	"testing"
)

// LogError logs a non-nil error message.
//
// Used in tests that assert on error text so the full message shows up in
// verbose output. Helps keep the error messages helpful and informative.
func LogError(t *testing.T, err error) {
	if err == nil {
		return
	}

	t.Helper()
	t.Logf("error message:\n%v", err)
}

// RunParallel runs f from the given number of goroutines and waits for all
// of them to finish. The goroutine index is passed to f.
func RunParallel(concurrency int, f func(int)) {
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := range concurrency {
		go func() {
			defer wg.Done()
			f(i)
		}()
	}

	wg.Wait()
}

// CollectChannel drains ch and returns the received values in order.
func CollectChannel[V any](ch <-chan V) []V {
	var values []V
	for v := range ch {
		values = append(values, v)
	}

	return values
}
