package api

import (
	"errors"

	appLogger "assistante-suite/utils/logger"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v3"
)

// FiberConfig is the server configuration shared by main and the handler
// tests: sonic for JSON, validator/v10 behind c.Bind() and errors rendered as
// GenericResponse.
func FiberConfig(bodyLimitMB int) fiber.Config {
	if bodyLimitMB <= 0 {
		bodyLimitMB = 4
	}
	return fiber.Config{
		BodyLimit:       bodyLimitMB * 1024 * 1024,
		JSONEncoder:     sonic.Marshal,
		JSONDecoder:     sonic.Unmarshal,
		StructValidator: NewStructValidator(),
		ErrorHandler:    errorHandler,
	}
}

func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		appLogger.Errorf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return UpdatedDataResponse[string](c, code, message, nil)
}
