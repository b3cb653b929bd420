package rest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	w := ts.post("/api/auth/register", map[string]string{
		"email": "alice@example.com", "nickname": "alice", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeBody(t, w)
	assert.Equal(t, "alice@example.com", resp["email"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{
		"email": "alice@example.com", "nickname": "alice", "password": "password123",
	}
	require.Equal(t, http.StatusCreated, ts.post("/api/auth/register", body).Code)

	body["nickname"] = "alice2"
	assert.Equal(t, http.StatusConflict, ts.post("/api/auth/register", body).Code)
}

func TestRegister_WeakPassword(t *testing.T) {
	ts := newTestServer(t)
	w := ts.post("/api/auth/register", map[string]string{
		"email": "bob@example.com", "nickname": "bob", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")
	assert.NotEmpty(t, token)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "alice@example.com", "alice")

	w := ts.post("/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	ts := newTestServer(t)
	w := ts.post("/api/auth/login", map[string]string{
		"email": "nobody@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")

	w := ts.post("/api/auth/logout", nil, bearer(token)...)
	assert.Equal(t, http.StatusOK, w.Code)

	// Session removed: the token no longer works.
	w = ts.post("/api/auth/logout", nil, bearer(token)...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_RotatesToken(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")

	w := ts.post("/api/auth/refresh", nil, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)
	newToken := decodeBody(t, w)["token"].(string)
	assert.NotEmpty(t, newToken)
	assert.NotEqual(t, token, newToken)

	// Old token is invalidated, new one works.
	assert.Equal(t, http.StatusUnauthorized, ts.get("/api/character", bearer(token)...).Code)
	assert.Equal(t, http.StatusOK, ts.get("/api/character", bearer(newToken)...).Code)
}

func TestProtectedRoute_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, ts.get("/api/character").Code)
	assert.Equal(t, http.StatusUnauthorized, ts.get("/api/quests").Code)
}
