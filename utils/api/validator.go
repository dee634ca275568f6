package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// StructValidator plugs validator/v10 into fiber's binder.
type StructValidator struct {
	validate *validator.Validate
}

func NewStructValidator() *StructValidator {
	return &StructValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *StructValidator) Validate(out any) error {
	return v.validate.Struct(out)
}

// BindError answers a failed c.Bind() call: 422 with the offending fields for
// validation failures, 400 for anything else.
func BindError(c fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return ErrorUnprocessable(c, "invalid fields: "+strings.Join(fields, ", "))
	}
	return ErrorBadRequest(c, "invalid request body")
}
