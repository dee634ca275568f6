package api

import (
	"context"
	"time"

	"assistante-suite/config"
	"assistante-suite/utils"
	"assistante-suite/utils/database"
	redisManager "assistante-suite/utils/database/redis"
	appLogger "assistante-suite/utils/logger"
	"assistante-suite/utils/markdown"

	"github.com/gofiber/fiber/v3"
)

// Cache is the response cache used by public routes.
type Cache interface {
	GetCache(ctx context.Context, key string, out any) (bool, error)
	SetCache(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Mailer interface {
	Send(to []string, subject, body string, displayName string) error
}

type ChallengeVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type RouterHelpers struct {
	Router         fiber.Router
	AdminRouter    fiber.Router
	Config         config.Config
	DBManager      *database.DBManager
	Blog           utils.BlogRepository
	Newsletter     utils.NewsletterRepository
	Appointments   utils.AppointmentRepository
	Cache          Cache
	RateLimiter    RateLimiter
	Mailer         Mailer
	Challenge      ChallengeVerifier
	Markdown       *markdown.Renderer
	SessionHandler *SessionHandler
	Now            func() time.Time
}

func (h *RouterHelpers) Clock() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// RateLimited counts one hit for the client IP under scope. A missing or
// failing limiter lets the request through.
func (h *RouterHelpers) RateLimited(c fiber.Ctx, scope string, limit int, window time.Duration) bool {
	if h.RateLimiter == nil || limit <= 0 {
		return false
	}
	allowed, err := h.RateLimiter.Allow(c.Context(), redisManager.BuildRateLimitKey(scope, c.IP()), limit, window)
	if err != nil {
		appLogger.Warnf("rate limiter unavailable for %s: %v", scope, err)
		return false
	}
	return !allowed
}

// VerifyChallenge checks a Turnstile token when a verifier is configured.
func (h *RouterHelpers) VerifyChallenge(c fiber.Ctx, token string) error {
	if h.Challenge == nil {
		return nil
	}
	return h.Challenge.Verify(c.Context(), token, c.IP())
}
