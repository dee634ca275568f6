package admin

import (
	"strings"
	"time"

	appAPIHelper "assistante-suite/utils/api"
	appLogger "assistante-suite/utils/logger"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/crypto/bcrypt"
)

const LoginPath = "/api/admin/login"

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func handleLogin(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		if apiHelper.RateLimited(c, "admin-login", 10, 15*time.Minute) {
			return appAPIHelper.ErrorTooManyRequests(c, "too many login attempts")
		}
		var payload LoginPayload
		if err := c.Bind().Body(&payload); err != nil {
			return appAPIHelper.BindError(c, err)
		}

		cfg := apiHelper.Config.Admin
		emailMatches := strings.EqualFold(strings.TrimSpace(payload.Email), cfg.Email)
		// compare the hash even for an unknown email so both cases take as long
		hashErr := bcrypt.CompareHashAndPassword([]byte(cfg.PasswordHash), []byte(payload.Password))
		if !emailMatches || hashErr != nil {
			appLogger.Warnf("Admin login failed for %s from %s", payload.Email, c.IP())
			return appAPIHelper.ErrorUnauthorized(c, "Invalid email or password")
		}

		token, err := apiHelper.SessionHandler.IssueSession(c.Context(), cfg.Email)
		if err != nil {
			appLogger.Errorf("Could not issue admin session: %v", err)
			return appAPIHelper.ErrorInternal(c, "Could not issue session")
		}
		resp := LoginResponse{Token: token, ExpiresAt: apiHelper.Clock().Add(apiHelper.SessionHandler.TTL)}
		return appAPIHelper.SuccessResponse(c, "Login succeeded", &resp)
	}
}

func handleLogout(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := apiHelper.SessionHandler.RevokeSession(c); err != nil {
			appLogger.Errorf("Could not revoke admin session: %v", err)
			return appAPIHelper.ErrorInternal(c, "Could not end session")
		}
		return appAPIHelper.SuccessResponse[string](c, "Logged out", nil)
	}
}

func handleMe() fiber.Handler {
	return func(c fiber.Ctx) error {
		email := appAPIHelper.UserID(c)
		return appAPIHelper.SuccessResponse(c, "ok", &email)
	}
}

func RegisterAdminRoutes(apiHelper *appAPIHelper.RouterHelpers) {
	apiHelper.AdminRouter.Post("/login", handleLogin(apiHelper))
	apiHelper.AdminRouter.Post("/logout", handleLogout(apiHelper))
	apiHelper.AdminRouter.Get("/me", handleMe())
}
