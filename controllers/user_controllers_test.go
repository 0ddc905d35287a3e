package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queue-app/middlewares"
)

func TestLoginSetsCookieAndMe(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ADMIN@restaurant.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var cookieFound bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middlewares.AuthCookieName && c.Value != "" {
			cookieFound = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, cookieFound)

	token := login(t, r, adminEmail)
	w = doJSON(r, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	decode(t, w, &me)
	assert.Equal(t, adminEmail, me.Email)
	assert.Equal(t, "admin", me.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := setupTestRouter(t)
	w := doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": adminEmail, "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w, nil)
	assert.False(t, env.Status)
	assert.Equal(t, "invalid credentials", env.Message)
}

func TestLogoutRevokesToken(t *testing.T) {
	r, _ := setupTestRouter(t)
	token := login(t, r, staffEmail)

	w := doJSON(r, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterRoleRules(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "new@restaurant.com", "password": "secret1", "role": "staff",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "boss@restaurant.com", "password": "secret1", "role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := login(t, r, adminEmail)
	w = doJSON(r, http.MethodPost, "/api/auth/register", admin, map[string]string{
		"email": "boss@restaurant.com", "password": "secret1", "role": "admin",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/register", admin, map[string]string{
		"email": "dev2@restaurant.com", "password": "secret1", "role": "developer",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "new@restaurant.com", "password": "secret1", "role": "staff",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "norole@restaurant.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"role":"staff"`)
}

func TestListUsersAdminOnly(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/users", login(t, r, staffEmail), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodGet, "/api/users", login(t, r, devEmail), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []map[string]interface{}
	decode(t, w, &users)
	assert.Len(t, users, 3)
	_, hasPassword := users[0]["password"]
	assert.False(t, hasPassword)
}

func TestProtectedRoutesNeedAuth(t *testing.T) {
	r, _ := setupTestRouter(t)
	w := doJSON(r, http.MethodGet, "/api/tokens", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/tokens", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
