// Package validators holds the helpers shared by the per-area request validators.
package validators

import (
	"coursemaster/middleware"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s against its validate tags and returns a field -> message map.
// The map is empty when s is valid.
func Struct(s interface{}) map[string]string {
	out := make(map[string]string)
	err := validate.Struct(s)
	if err == nil {
		return out
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["body"] = "Invalid request body!"
		return out
	}
	for _, fe := range ve {
		key := fieldKey(fe)
		if _, seen := out[key]; !seen {
			out[key] = message(fe)
		}
	}
	return out
}

// fieldKey drops the root struct name from the namespace: lessons[0].title
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", field)
	case "email":
		return "Invalid email format!"
	case "url":
		return fmt.Sprintf("%s must be a valid URL!", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long!", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items!", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s!", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long!", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s items!", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s!", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long!", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s!", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gtefield", "gtfield":
		return fmt.Sprintf("%s must not be before %s!", field, strings.ToLower(toSnake(fe.Param())))
	default:
		return fmt.Sprintf("%s is invalid!", field)
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseBody decodes the JSON body into dst and validates it.
// It writes the error response itself and reports whether the handler should continue.
func ParseBody(c *fiber.Ctx, dst interface{}, normalize func()) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if normalize != nil {
		normalize()
	}
	if errs := Struct(dst); len(errs) > 0 {
		return false, middleware.ValidationErrorResponse(c, errs)
	}
	return true, nil
}

// ParseID reads a positive integer path parameter
func ParseID(c *fiber.Ctx, param string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Params(param)), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// IDParams parses each named path parameter into a uint local of the same name
func IDParams(params ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, p := range params {
			id, ok := ParseID(c, p)
			if !ok {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, fmt.Sprintf("Invalid %s!", p), nil)
			}
			c.Locals(p, id)
		}
		return c.Next()
	}
}

// ID returns a path id stored by IDParams
func ID(c *fiber.Ctx, param string) uint {
	id, _ := c.Locals(param).(uint)
	return id
}
