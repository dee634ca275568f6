package admin_test

import (
	"net/http"
	"testing"
	"time"

	"assistante-suite/api/admin"
	"assistante-suite/api/apitest"

	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	h := apitest.New(t)

	resp := h.Do(t, http.MethodPost, admin.LoginPath, admin.LoginPayload{Email: "ADMIN@example.fr", Password: apitest.AdminPassword}, "")
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	_, login := apitest.Decode[admin.LoginResponse](t, resp)
	require.NotEmpty(t, login.Token)
	require.True(t, login.ExpiresAt.Equal(apitest.Now.Add(12*time.Hour)))

	resp = h.Do(t, http.MethodGet, "/api/admin/me", nil, login.Token)
	require.Equal(t, http.StatusOK, resp.Status)
	_, me := apitest.Decode[string](t, resp)
	require.Equal(t, apitest.AdminEmail, *me)

	resp = h.Do(t, http.MethodPost, "/api/admin/logout", nil, login.Token)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = h.Do(t, http.MethodGet, "/api/admin/me", nil, login.Token)
	require.Equal(t, http.StatusUnauthorized, resp.Status)
}

func TestLoginFailures(t *testing.T) {
	h := apitest.New(t)
	cases := map[string]struct {
		payload admin.LoginPayload
		status  int
	}{
		"wrong password": {admin.LoginPayload{Email: apitest.AdminEmail, Password: "nope"}, http.StatusUnauthorized},
		"wrong email":    {admin.LoginPayload{Email: "other@example.fr", Password: apitest.AdminPassword}, http.StatusUnauthorized},
		"bad email":      {admin.LoginPayload{Email: "admin", Password: apitest.AdminPassword}, http.StatusUnprocessableEntity},
		"no password":    {admin.LoginPayload{Email: apitest.AdminEmail}, http.StatusUnprocessableEntity},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := h.Do(t, http.MethodPost, admin.LoginPath, tc.payload, "")
			require.Equal(t, tc.status, resp.Status, string(resp.Body))
		})
	}
}

func TestLoginRateLimit(t *testing.T) {
	h := apitest.New(t)
	bad := admin.LoginPayload{Email: apitest.AdminEmail, Password: "nope"}
	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusUnauthorized, h.Do(t, http.MethodPost, admin.LoginPath, bad, "").Status)
	}
	resp := h.Do(t, http.MethodPost, admin.LoginPath, admin.LoginPayload{Email: apitest.AdminEmail, Password: apitest.AdminPassword}, "")
	require.Equal(t, http.StatusTooManyRequests, resp.Status)
}
