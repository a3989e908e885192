package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"socialfeed/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLogin(t *testing.T) {
	t.Parallel()

	_, app := setupTestServer(t)

	resp := postJSON(t, app, "/api/auth/signup", "", map[string]any{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": "Sup3rsecret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var signupBody map[string]any
	decodeJSON(t, resp, &signupBody)
	assert.NotEmpty(t, signupBody["token"])

	// password hash never leaves the API
	user, ok := signupBody["user"].(map[string]any)
	require.True(t, ok)
	_, hasPassword := user["password"]
	assert.False(t, hasPassword)

	// duplicate email
	resp = postJSON(t, app, "/api/auth/signup", "", map[string]any{
		"username": "otheruser",
		"email":    "newuser@example.com",
		"password": "Sup3rsecret",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/login", "", map[string]any{
		"email":    "newuser@example.com",
		"password": "Sup3rsecret",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginBody map[string]any
	decodeJSON(t, resp, &loginBody)
	assert.NotEmpty(t, loginBody["token"])

	resp = postJSON(t, app, "/api/auth/login", "", map[string]any{
		"email":    "newuser@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/login", "", map[string]any{
		"email":    "nobody@example.com",
		"password": "Sup3rsecret",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()

	_, app := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing fields", map[string]any{"username": "x"}},
		{"bad username", map[string]any{"username": "a!", "email": "a@b.co", "password": "Sup3rsecret"}},
		{"bad email", map[string]any{"username": "alice", "email": "nope", "password": "Sup3rsecret"}},
		{"weak password", map[string]any{"username": "alice", "email": "a@b.co", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/auth/signup", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAuthRequired_RejectsBadTokens(t *testing.T) {
	t.Parallel()

	s, app := setupTestServer(t)

	// no header
	resp := postJSON(t, app, "/api/feeds", "", map[string]any{"text_content": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// garbage token
	resp = postJSON(t, app, "/api/feeds", "Bearer not-a-token", map[string]any{"text_content": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// token signed with a different secret
	other := *s.config
	other.JWTSecret = "some-other-secret"
	otherServer := &Server{config: &other}
	token, err := otherServer.generateToken(1, "spoof")
	require.NoError(t, err)
	resp = postJSON(t, app, "/api/feeds", "Bearer "+token, map[string]any{"text_content": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Not parallel: the server publishes its Redis client to the shared cache
// package, which must not leak into concurrently running tests.
func TestLogout_RevokesToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s, app := setupTestServerRedis(t, rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	user := createHandlerTestUser(t, s, "leaver")
	auth := bearerFor(t, s, user)

	// token works before logout
	req := httptest.NewRequest(http.MethodGet, "/api/feeds", nil)
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/logout", auth, map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Equal(t, "Logged out successfully", body["message"])

	// the blacklisted token is rejected everywhere
	req = httptest.NewRequest(http.MethodGet, "/api/feeds", nil)
	req.Header.Set("Authorization", auth)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// a second logout with the revoked token is rejected too
	resp = postJSON(t, app, "/api/auth/logout", auth, map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
