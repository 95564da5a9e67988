package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/adfharrison1/bookreport/pkg/api"
	"github.com/adfharrison1/bookreport/pkg/storage"
)

func newTestServer(t *testing.T) (*Server, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	handler := api.NewHandler(storage.NewStorageEngine(), "books", logger)
	return NewServer(handler, logger), logs
}

func TestServer_LogsRequests(t *testing.T) {
	srv, logs := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	entries := logs.FilterMessageSnippet("Request GET /health returned 200").All()
	assert.Len(t, entries, 1)
}

func TestServer_NotFound(t *testing.T) {
	srv, logs := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, 1, logs.FilterMessageSnippet("No route found for GET /nowhere").Len())
}

func TestServer_ListenAndServeShutsDown(t *testing.T) {
	srv, logs := newTestServer(t)

	// find a free port
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Equal(t, 1, logs.FilterMessage("Server exited").Len())
}

func TestServer_ListenAndServeBadAddr(t *testing.T) {
	srv, _ := newTestServer(t)
	err := srv.ListenAndServe(context.Background(), "256.0.0.1:bad")
	assert.Error(t, err)
}
