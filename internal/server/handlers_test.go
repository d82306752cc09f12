package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhamSammich/dexbee-docs/internal/config"
	"github.com/AhamSammich/dexbee-docs/internal/logging"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	srv := New(cfg, logging.NewNop())
	t.Cleanup(func() { srv.sessions.Close() })
	return srv
}

func do(t *testing.T, srv *Server, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func createSession(t *testing.T, srv *Server) string {
	t.Helper()
	code, body := do(t, srv, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, code)
	sid, ok := body["id"].(string)
	require.True(t, ok)
	return sid
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	code, body := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	sid := createSession(t, srv)

	code, body := do(t, srv, http.MethodGet, "/api/sessions/"+sid, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "uninitialized", body["state"])

	code, body = do(t, srv, http.MethodPost, "/api/sessions/"+sid+"/initialize", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["accepted"])
	assert.Equal(t, "ready", body["state"])

	code, body = do(t, srv, http.MethodPost, "/api/sessions/"+sid+"/run", map[string]string{
		"source": "const completed = await db.table('orders').where(eq('status', 'completed')); console.log(completed.length);",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["accepted"])
	assert.Equal(t, false, body["failed"])
	assert.Equal(t, "4", body["output"])
	assert.Equal(t, "ready", body["state"])

	code, body = do(t, srv, http.MethodPost, "/api/sessions/"+sid+"/reset", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["accepted"])

	code, body = do(t, srv, http.MethodDelete, "/api/sessions/"+sid, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["released"])

	code, _ = do(t, srv, http.MethodGet, "/api/sessions/"+sid, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRunBeforeInitializeIsRejectedSilently(t *testing.T) {
	srv := newTestServer(t)
	sid := createSession(t, srv)

	code, body := do(t, srv, http.MethodPost, "/api/sessions/"+sid+"/run", map[string]string{
		"source": "console.log(1)",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["accepted"])
	assert.Equal(t, "uninitialized", body["state"])
	assert.NotContains(t, body, "error")
}

func TestRunFailureCapturedInOutput(t *testing.T) {
	srv := newTestServer(t)
	sid := createSession(t, srv)
	do(t, srv, http.MethodPost, "/api/sessions/"+sid+"/initialize", nil)

	code, body := do(t, srv, http.MethodPost, "/api/sessions/"+sid+"/run", map[string]string{
		"source": "throw new Error('boom')",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["accepted"])
	assert.Equal(t, true, body["failed"])
	assert.Contains(t, body["output"], "boom")
	assert.Equal(t, "ready", body["state"])
}

func TestRunRequiresSource(t *testing.T) {
	srv := newTestServer(t)
	sid := createSession(t, srv)
	do(t, srv, http.MethodPost, "/api/sessions/"+sid+"/initialize", nil)

	code, _ := do(t, srv, http.MethodPost, "/api/sessions/"+sid+"/run", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUnknownSession(t *testing.T) {
	srv := newTestServer(t)
	code, _ := do(t, srv, http.MethodPost, "/api/sessions/nope/run", map[string]string{"source": "1"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestThemeEndpoints(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodGet, "/api/theme", nil)
	require.Equal(t, http.StatusOK, code)
	initial := body["isDark"].(bool)

	code, body = do(t, srv, http.MethodPost, "/api/theme/toggle", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, !initial, body["isDark"])

	code, body = do(t, srv, http.MethodGet, "/api/theme", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, !initial, body["isDark"])
}
