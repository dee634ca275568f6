package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"assistante-suite/utils"
	appLogger "assistante-suite/utils/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ====================== Response Functions ======================

func NewResponse[T any](status int, message string, data *T) *GenericResponse[T] {
	return &GenericResponse[T]{
		Status:      status,
		Message:     message,
		UpdatedData: data,
	}
}

func UpdatedDataResponse[T any](c fiber.Ctx, status int, message string, data *T) error {
	return c.Status(status).JSON(NewResponse(status, message, data))
}

func ResponseWithStruct[T any](c fiber.Ctx, status int, data T) error {
	return c.Status(status).JSON(data)
}

// ====================== Error Response Functions ======================

func ErrorBadRequest(c fiber.Ctx, message string) error {
	return UpdatedDataResponse[string](c, fiber.StatusBadRequest, message, nil)
}

func ErrorUnauthorized(c fiber.Ctx, message string) error {
	return UpdatedDataResponse[string](c, fiber.StatusUnauthorized, message, nil)
}

func ErrorForbidden(c fiber.Ctx, message string) error {
	return UpdatedDataResponse[string](c, fiber.StatusForbidden, message, nil)
}

func ErrorNotFound(c fiber.Ctx, message string) error {
	return UpdatedDataResponse[string](c, fiber.StatusNotFound, message, nil)
}

func ErrorConflict(c fiber.Ctx, message string) error {
	return UpdatedDataResponse[string](c, fiber.StatusConflict, message, nil)
}

func ErrorUnprocessable(c fiber.Ctx, message string) error {
	return UpdatedDataResponse[string](c, fiber.StatusUnprocessableEntity, message, nil)
}

func ErrorTooManyRequests(c fiber.Ctx, message string) error {
	return UpdatedDataResponse[string](c, fiber.StatusTooManyRequests, message, nil)
}

func ErrorInternal(c fiber.Ctx, message string) error {
	return UpdatedDataResponse[string](c, fiber.StatusInternalServerError, message, nil)
}

// SuccessResponse returns a 200 OK response with optional data
func SuccessResponse[T any](c fiber.Ctx, message string, data *T) error {
	return UpdatedDataResponse(c, fiber.StatusOK, message, data)
}

func CreatedResponse[T any](c fiber.Ctx, message string, data *T) error {
	return UpdatedDataResponse(c, fiber.StatusCreated, message, data)
}

// ====================== Session Helper Functions ======================

type SessionHandler struct {
	Store          SessionStore
	SessionSignKey string
	TTL            time.Duration
}

func NewSessionHandler(store SessionStore, sessionSignKey string, ttl time.Duration) *SessionHandler {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionHandler{
		Store:          store,
		SessionSignKey: sessionSignKey,
		TTL:            ttl,
	}
}

func (s *SessionHandler) IssueSession(ctx context.Context, userID string) (string, error) {
	sessionToken := uuid.NewString()
	if err := s.Store.Create(ctx, userID, sessionToken, s.TTL); err != nil {
		return "", err
	}
	claims := SessionClaims{
		UserID:       userID,
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.TTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.SessionSignKey))
}

func (s *SessionHandler) ParseSession(tokenStr string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.SessionSignKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}

func (s *SessionHandler) VerifySessionToken(c fiber.Ctx) error {
	auth := c.Get("Authorization")
	if auth == "" {
		return ErrorUnauthorized(c, "missing token")
	}
	tokenStr := strings.TrimPrefix(auth, "Bearer ")

	claims, err := s.ParseSession(tokenStr)
	if err != nil {
		appLogger.Warnf("Invalid session token: %v", err)
		return ErrorUnauthorized(c, "invalid token")
	}

	exists, err := s.Store.Exists(c.Context(), claims.UserID, claims.SessionToken)
	if err != nil {
		appLogger.Errorf("Session store error: %v", err)
		return ErrorUnauthorized(c, "invalid session")
	}
	if !exists {
		return ErrorUnauthorized(c, "invalid session")
	}

	c.Locals("userID", claims.UserID)
	c.Locals("sessionToken", claims.SessionToken)
	return c.Next()
}

// Middleware verifies every request except the listed paths.
func (s *SessionHandler) Middleware(publicPaths ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if utils.ArrayContains(publicPaths, c.Path()) {
			return c.Next()
		}
		return s.VerifySessionToken(c)
	}
}

// RevokeSession forgets the session carried by an already verified request.
func (s *SessionHandler) RevokeSession(c fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	token, _ := c.Locals("sessionToken").(string)
	if userID == "" || token == "" {
		return errors.New("request has no verified session")
	}
	return s.Store.Delete(c.Context(), userID, token)
}

// ====================== Other Helper Functions ======================

// UserID returns the admin id stored by VerifySessionToken.
func UserID(c fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
