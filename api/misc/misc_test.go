package misc_test

import (
	"net/http"
	"testing"

	"assistante-suite/api/apitest"
	"assistante-suite/config"
	appAPIHelper "assistante-suite/utils/api"
	redisManager "assistante-suite/utils/database/redis"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
)

type healthBody struct {
	Status       string            `json:"status"`
	Time         int64             `json:"time"`
	Dependencies map[string]string `json:"dependencies"`
}

func TestHealth(t *testing.T) {
	h := apitest.New(t)
	resp := h.Do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.Status)

	var body healthBody
	require.NoError(t, sonic.Unmarshal(resp.Body, &body))
	require.Equal(t, "ok", body.Status)
	require.Equal(t, apitest.Now.Unix(), body.Time)
	require.Empty(t, body.Dependencies)
}

func TestHealthDegraded(t *testing.T) {
	h := apitest.New(t, func(helper *appAPIHelper.RouterHelpers) {
		// nothing listens on port 1
		helper.DBManager.Redis = redisManager.NewRedisClient(config.RedisConfig{Host: "127.0.0.1", Port: 1})
	})
	t.Cleanup(func() { _ = h.Helper.DBManager.Redis.Close() })

	resp := h.Do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, resp.Status)

	var body healthBody
	require.NoError(t, sonic.Unmarshal(resp.Body, &body))
	require.Equal(t, "degraded", body.Status)
	require.NotEqual(t, "ok", body.Dependencies["redis"])
}

func TestRuntimeNeedsAdmin(t *testing.T) {
	h := apitest.New(t)
	require.Equal(t, http.StatusUnauthorized, h.Do(t, http.MethodGet, "/api/admin/runtime", nil, "").Status)

	token := h.Login(t)
	resp := h.Do(t, http.MethodGet, "/api/admin/runtime", nil, token)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Contains(t, string(resp.Body), `"goroutines"`)

	resp = h.Do(t, http.MethodPost, "/api/admin/runtime/freemem", nil, token)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Contains(t, string(resp.Body), `"freed_mb"`)
}
