package newsletter

import (
	"errors"
	"strings"
	"time"

	"assistante-suite/utils"
	appAPIHelper "assistante-suite/utils/api"
	appLogger "assistante-suite/utils/logger"
	"assistante-suite/utils/smtp"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type SubscribePayload struct {
	Email          string `json:"email" validate:"required,email,max=254"`
	TurnstileToken string `json:"turnstile_token"`
}

type SubscriptionResponse struct {
	Email  string                 `json:"email"`
	Status utils.SubscriberStatus `json:"status"`
}

func linkWithToken(base, token string) string {
	return strings.TrimRight(base, "/") + "/" + token
}

func sendConfirmation(apiHelper *appAPIHelper.RouterHelpers, subscriber *utils.Subscriber) error {
	if apiHelper.Mailer == nil {
		appLogger.Warnf("No mailer configured, confirmation for %s not sent", subscriber.Email)
		return nil
	}
	cfg := apiHelper.Config
	body := smtp.Render(smtp.NewsletterConfirmTemplate, map[string]string{
		"SITE_NAME":       cfg.SMTP.DisplayName,
		"CONFIRM_URL":     linkWithToken(cfg.Newsletter.ConfirmURL, subscriber.Token),
		"UNSUBSCRIBE_URL": linkWithToken(cfg.Newsletter.UnsubscribeURL, subscriber.Token),
	})
	return apiHelper.Mailer.Send([]string{subscriber.Email}, smtp.NewsletterConfirmSubject, body, cfg.SMTP.DisplayName)
}

func handleSubscribe(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		var payload SubscribePayload
		if err := c.Bind().Body(&payload); err != nil {
			return appAPIHelper.BindError(c, err)
		}
		if apiHelper.RateLimited(c, "newsletter", apiHelper.Config.Newsletter.SubscribeLimitPerHour, time.Hour) {
			return appAPIHelper.ErrorTooManyRequests(c, "too many subscription attempts")
		}
		if err := apiHelper.VerifyChallenge(c, payload.TurnstileToken); err != nil {
			appLogger.Warnf("Newsletter challenge rejected for %s: %v", c.IP(), err)
			return appAPIHelper.ErrorForbidden(c, "challenge verification failed")
		}

		email := strings.ToLower(strings.TrimSpace(payload.Email))
		subscriber, err := apiHelper.Newsletter.UpsertPending(c.Context(), email, uuid.NewString())
		if err != nil {
			appLogger.Errorf("Newsletter upsert for %s: %v", email, err)
			return appAPIHelper.ErrorInternal(c, "could not register subscription")
		}
		resp := &SubscriptionResponse{Email: subscriber.Email, Status: subscriber.Status}
		if subscriber.Status == utils.SubscriberStatusConfirmed {
			return appAPIHelper.SuccessResponse(c, "already subscribed", resp)
		}
		if err := sendConfirmation(apiHelper, subscriber); err != nil {
			appLogger.Errorf("Newsletter confirmation mail to %s: %v", email, err)
			return appAPIHelper.ErrorInternal(c, "could not send confirmation email")
		}
		return appAPIHelper.SuccessResponse(c, "confirmation email sent", resp)
	}
}

func setStatus(apiHelper *appAPIHelper.RouterHelpers, status utils.SubscriberStatus, message string) fiber.Handler {
	return func(c fiber.Ctx) error {
		subscriber, err := apiHelper.Newsletter.SetStatusByToken(c.Context(), c.Params("token"), status)
		if errors.Is(err, utils.ErrNotFound) {
			return appAPIHelper.ErrorNotFound(c, "unknown token")
		}
		if err != nil {
			appLogger.Errorf("Newsletter status %s: %v", status, err)
			return appAPIHelper.ErrorInternal(c, "could not update subscription")
		}
		return appAPIHelper.SuccessResponse(c, message, &SubscriptionResponse{Email: subscriber.Email, Status: subscriber.Status})
	}
}

func handleListSubscribers(apiHelper *appAPIHelper.RouterHelpers) fiber.Handler {
	return func(c fiber.Ctx) error {
		var status utils.SubscriberStatus
		if raw := c.Query("status"); raw != "" {
			parsed, err := utils.ParseSubscriberStatus(raw)
			if err != nil {
				return appAPIHelper.ErrorBadRequest(c, err.Error())
			}
			status = parsed
		}
		subscribers, err := apiHelper.Newsletter.ListSubscribers(c.Context(), status)
		if err != nil {
			appLogger.Errorf("List subscribers: %v", err)
			return appAPIHelper.ErrorInternal(c, "could not list subscribers")
		}
		return appAPIHelper.SuccessResponse(c, "ok", &subscribers)
	}
}

func RegisterNewsletterRoutes(apiHelper *appAPIHelper.RouterHelpers) {
	public := apiHelper.Router.Group("/api/newsletter")
	public.Post("/subscribe", handleSubscribe(apiHelper))
	public.Get("/confirm/:token", setStatus(apiHelper, utils.SubscriberStatusConfirmed, "subscription confirmed"))
	public.Post("/unsubscribe/:token", setStatus(apiHelper, utils.SubscriberStatusUnsubscribed, "unsubscribed"))

	apiHelper.AdminRouter.Get("/newsletter/subscribers", handleListSubscribers(apiHelper))
}
