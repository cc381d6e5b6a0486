package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"accounts-core/internal/account"
	"accounts-core/internal/account/memstore"
	"accounts-core/internal/token"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	store := memstore.New()
	tokens := token.NewService(token.Config{Secret: []byte("router-test-secret")}, store)
	svc := account.NewService(store, token.BcryptHasher{Cost: 4}, tokens)
	return RegisterRoutes(zap.NewNop().Sugar(), svc, tokens)
}

func postJSON(t *testing.T, h http.Handler, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestCORS(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://app.example.com")
	h := newTestHandler(t)

	// preflight from an allowed origin
	req := httptest.NewRequest(http.MethodOptions, "/api/token", nil)
	req.Header.Set("Origin", "http://app.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	// unknown origins get no CORS grant
	req = httptest.NewRequest(http.MethodOptions, "/api/token", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

// TestAccountFlowOverHTTP drives the full lifecycle through the mounted
// routes: register, login, token check, read, self-delete, read again.
func TestAccountFlowOverHTTP(t *testing.T) {
	h := newTestHandler(t)

	w := postJSON(t, h, "/api/register", map[string]any{
		"email": "a@x.com", "username": "a", "group": "users", "password": "p1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, h, "/api/token", map[string]string{"email": "a@x.com", "password": "p1"})
	require.Equal(t, http.StatusOK, w.Code)
	var tokenResp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))
	tok := tokenResp["token"]
	require.NotEmpty(t, tok)

	w = postJSON(t, h, "/api/access", map[string]string{"token": tok})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"access":"success"}`, w.Body.String())

	w = postJSON(t, h, "/api/users/1", map[string]string{"token": tok})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, h, "/api/users/delete", map[string]string{"token": tok})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	// token died with the account; a fresh read is forbidden now
	w = postJSON(t, h, "/api/users/1", map[string]string{"token": tok})
	require.Equal(t, http.StatusForbidden, w.Code)
}
