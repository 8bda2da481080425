package helper

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	logsvc "dancestudio_backend/internals/services/logger"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs struct validation with json field names.
func Validate(v any) error { return validate.Struct(v) }

// FromServiceError renders a service error. *fiber.Error keeps its code and
// message; anything else is logged, reported and answered with a generic 500.
func FromServiceError(c *fiber.Ctx, tag string, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	logsvc.Error(tag, err, map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	})
	return JsonError(c, fiber.StatusInternalServerError, "Internal server error")
}

// ErrorHandler is the app-wide Fiber error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	return FromServiceError(c, "ErrorHandler", err)
}

// ParseAndValidate binds a JSON body into dst and runs struct validation.
// On failure it has already written the response; callers return its error.
func ParseAndValidate(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := validate.Struct(dst); err != nil {
		return false, ValidationError(c, err)
	}
	return true, nil
}

// ValidationError renders validator.ValidationErrors as a field map.
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return JsonError(c, fiber.StatusBadRequest, "Invalid input")
	}
	fields := make(map[string][]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = append(fields[fe.Field()], fe.Tag())
	}
	return JsonValidationError(c, fields)
}
