package integrationtests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// Auth flow: register, me, logout, login
func TestAuthFlow(t *testing.T) {
	env := SetupTestEnv(t)

	t.Run("register_sets_session", func(t *testing.T) {
		cookie := env.RegisterUser(t, "Alice", "alice@example.com")

		w := ExecuteRequest(t, env.Router, http.MethodGet, "/auth/me", nil, cookie)
		require.Equal(t, http.StatusOK, w.Code)

		data := ParseResponse(t, w)["data"].(map[string]any)
		require.Equal(t, "alice@example.com", data["email"])
		require.Equal(t, "user", data["role"])
	})

	t.Run("me_requires_session", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodGet, "/auth/me", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("register_validates_payload", func(t *testing.T) {
		// password below minimum length
		w := ExecuteRequest(t, env.Router, http.MethodPost, "/auth/register", map[string]any{
			"name":     "Bob",
			"email":    "bob@example.com",
			"phone":    "555-0101",
			"password": "short",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate_email_rejected", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodPost, "/auth/register", map[string]any{
			"name":     "Other Alice",
			"email":    "alice@example.com",
			"phone":    "555-0102",
			"password": "integration-pass",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, ParseResponse(t, w)["message"], "email already registered")
	})

	t.Run("login_round_trip", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodPost, "/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "integration-pass",
		})
		require.Equal(t, http.StatusOK, w.Code)
		cookie := sessionCookie(t, w)

		w = ExecuteRequest(t, env.Router, http.MethodGet, "/auth/me", nil, cookie)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("login_wrong_password", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodPost, "/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "wrong-pass",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Contains(t, ParseResponse(t, w)["message"], "invalid email or password")
	})

	t.Run("logout_clears_cookie", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodPost, "/auth/logout", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var cleared bool
		for _, c := range w.Result().Cookies() {
			if c.Name == "auth_token" && c.Value == "" && c.MaxAge < 0 {
				cleared = true
			}
		}
		require.True(t, cleared, "logout must expire the auth cookie")
	})

	t.Run("tampered_cookie_is_ignored", func(t *testing.T) {
		w := ExecuteRequest(t, env.Router, http.MethodGet, "/auth/me", nil,
			&http.Cookie{Name: "auth_token", Value: "tampered.token.value"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
