package cli

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chainreaction/internal/api/apierr"
)

func TestClientSendsSeatToken(t *testing.T) {
	var auth, agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		agent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	health, err := pollHealth(NewClient(srv.URL+"/", "1.secret"), 0, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "Bearer 1.secret", auth)
	assert.Equal(t, userAgent, agent)
}

func TestClientDecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-ID", "req-7")
		apierr.WriteError(w, apierr.NewUnauthorizedError())
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").Post("/api/v1/games/g/moves", map[string]int{"row": 0}, nil)
	require.Error(t, err)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.Status)
	assert.Equal(t, apierr.CodeUnauthorized, reqErr.Code)
	assert.Contains(t, err.Error(), "UNAUTHORIZED")
	assert.Contains(t, err.Error(), "req-7")
}

func TestClientPlainErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").Get("/api/v1/health", nil)
	require.Error(t, err)
	assert.Equal(t, "HTTP 502: upstream down", err.Error())
}

func TestPollHealthGivesUpAfterWait(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := pollHealth(NewClient(url, ""), 50*time.Millisecond, 10*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not healthy")
}

func TestTokenFileRoundTrip(t *testing.T) {
	c := &Config{TokenFile: filepath.Join(t.TempDir(), "nested", "token")}

	require.NoError(t, c.LoadToken())
	assert.Empty(t, c.Token)

	require.NoError(t, c.SaveToken("2.abcdef"))
	loaded := &Config{TokenFile: c.TokenFile}
	require.NoError(t, loaded.LoadToken())
	assert.Equal(t, "2.abcdef", loaded.Token)
}

func TestTokenFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("not-a-token"), 0o600))

	c := &Config{TokenFile: path}
	assert.Error(t, c.LoadToken())
	assert.Error(t, c.SaveToken("nope"))
}

func TestExplicitTokenSkipsFile(t *testing.T) {
	c := &Config{Token: "3.x", TokenFile: filepath.Join(t.TempDir(), "missing")}
	require.NoError(t, c.LoadToken())
	assert.Equal(t, "3.x", c.Token)
}
