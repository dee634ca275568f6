package cloudflare

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"assistante-suite/config"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
)

func newSiteverify(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		_ = sonic.Unmarshal(body, &payload)
		w.Header().Set("Content-Type", "application/json")
		if payload["secret"] == "s3cret" && payload["response"] == "good" {
			_, _ = w.Write([]byte(`{"success":true,"hostname":"example.fr"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerify(t *testing.T) {
	srv := newSiteverify(t)
	v := NewTurnstileVerifier(config.TurnstileConfig{Enabled: true, Secret: "s3cret"}).WithVerifyURL(srv.URL)

	require.NoError(t, v.Verify(context.Background(), "good", "203.0.113.4"))

	err := v.Verify(context.Background(), "bad", "")
	require.ErrorIs(t, err, ErrChallengeFailed)
	require.Contains(t, err.Error(), "invalid-input-response")
}

func TestVerifyMissingToken(t *testing.T) {
	v := NewTurnstileVerifier(config.TurnstileConfig{Secret: "s3cret"}).WithVerifyURL("http://127.0.0.1:1")
	require.ErrorIs(t, v.Verify(context.Background(), "  ", ""), ErrChallengeFailed)
}
