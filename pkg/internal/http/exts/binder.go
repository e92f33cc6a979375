package exts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validation = validator.New(validator.WithRequiredStructEnabled())

func init() {
	if err := validation.RegisterValidation("emoji", func(fl validator.FieldLevel) bool {
		return IsEmoji(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// FieldError names one request field that failed one validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError carries the per-field outcome of a failed payload
// check. The server's error handler turns it into a 400 response.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", field.Field, field.Rule))
	}
	return "invalid request payload: " + strings.Join(parts, ", ")
}

// BindAndValidate decodes the request body into data and runs the
// declarative checks from its validate tags. It touches nothing but the
// request, so a failure here is guaranteed to have no side effects.
func BindAndValidate(c *fiber.Ctx, data any) error {
	if err := c.BodyParser(data); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unable to parse request payload: %v", err))
	}

	if err := validation.Struct(data); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			out := &ValidationError{}
			for _, field := range fields {
				out.Fields = append(out.Fields, FieldError{
					Field: strings.ToLower(field.Field()),
					Rule:  field.Tag(),
				})
			}
			return out
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return nil
}
