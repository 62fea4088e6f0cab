package wireuphttp_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tkrause/wireup/wireuphttp"
)

// stageA and stageB are middleware capability types: distinct declared
// types sharing the same concrete implementation.
type stageA interface{ wireuphttp.Handler }

type stageB interface{ wireuphttp.Handler }

// headerStage stamps a response header and delegates.
type headerStage struct {
	name string
}

func (s *headerStage) ServeMiddleware(w http.ResponseWriter, r *http.Request, next http.Handler) {
	w.Header().Add("X-Stage", s.name)
	next.ServeHTTP(w, r)
}

func newStageA() stageA { return &headerStage{name: "a"} }
func newStageB() stageB { return &headerStage{name: "b"} }

// countingStage counts constructions so lifetime behavior is observable.
type countingStage struct {
	constructed *atomic.Int32
}

func (s *countingStage) ServeMiddleware(w http.ResponseWriter, r *http.Request, next http.Handler) {
	next.ServeHTTP(w, r)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func RunRequest(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	res := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, path, http.NoBody)
	require.NoError(t, err)

	h.ServeHTTP(res, req)
	return res
}
