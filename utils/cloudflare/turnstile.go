package cloudflare

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"assistante-suite/config"
	appLogger "assistante-suite/utils/logger"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

var ErrChallengeFailed = errors.New("turnstile challenge failed")

type TurnstileResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
	Action      string   `json:"action,omitempty"`
	Cdata       string   `json:"cdata,omitempty"`
}

type TurnstileVerifier struct {
	secret    string
	verifyURL string
	client    *resty.Client
}

func NewTurnstileVerifier(cfg config.TurnstileConfig) *TurnstileVerifier {
	return &TurnstileVerifier{
		secret:    cfg.Secret,
		verifyURL: DefaultVerifyURL,
		client:    resty.New().SetTimeout(5 * time.Second),
	}
}

// WithVerifyURL points the verifier at another siteverify endpoint.
func (v *TurnstileVerifier) WithVerifyURL(url string) *TurnstileVerifier {
	v.verifyURL = url
	return v
}

func (v *TurnstileVerifier) ValidateTurnstile(ctx context.Context, response, remoteIP string) (*TurnstileResponse, error) {
	payload := map[string]string{
		"secret":   v.secret,
		"response": response,
	}
	if remoteIP != "" {
		payload["remoteip"] = remoteIP
	}
	body, _ := sonic.Marshal(payload)
	resp, err := v.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(v.verifyURL)
	if err != nil {
		appLogger.Errorf("Turnstile request failed: %v", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	var result TurnstileResponse
	if err := sonic.Unmarshal(resp.Body(), &result); err != nil {
		appLogger.Errorf("Turnstile response decode failed: %v, body: %s", err, string(resp.Body()))
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return &result, nil
}

// Verify succeeds only when Cloudflare accepts the token.
func (v *TurnstileVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: missing token", ErrChallengeFailed)
	}
	result, err := v.ValidateTurnstile(ctx, token, remoteIP)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("%w: %s", ErrChallengeFailed, strings.Join(result.ErrorCodes, ","))
	}
	return nil
}
