package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chainreaction/internal/testutil"
)

func TestIsStreamPath(t *testing.T) {
	assert.True(t, isStreamPath("/games/abc/events"))
	assert.True(t, isStreamPath("/games/abc/ws"))
	assert.False(t, isStreamPath("/api/v1/games/abc"))
	assert.False(t, isStreamPath("/api/v1/games/abc/moves"))
}

func TestLiftStreamDeadlinePassesThrough(t *testing.T) {
	called := false
	h := liftStreamDeadline(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/games/abc/events", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusAccepted, rr.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := NewServer(http.NotFoundHandler(), ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ShutdownTimeout: time.Second,
	}, testutil.NopLogger())

	hookCalled := make(chan struct{})
	srv.OnShutdown(func() { close(hookCalled) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	select {
	case <-hookCalled:
	case <-time.After(time.Second):
		t.Fatal("shutdown hook not called")
	}
}
