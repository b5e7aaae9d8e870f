package userValidator

import (
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/services"
	"coursemaster/validators"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// List validates the admin user list filters
func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		errors := make(map[string]string)
		filter := services.UserFilter{
			Search: strings.TrimSpace(c.Query("search")),
			Role:   strings.ToLower(strings.TrimSpace(c.Query("role"))),
		}
		if filter.Role != "" {
			valid := false
			for _, r := range models.ValidRoles {
				valid = valid || r == filter.Role
			}
			if !valid {
				errors["role"] = "Role must be one of: student, instructor, admin!"
			}
		}
		if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
			active, err := strconv.ParseBool(raw)
			if err != nil {
				errors["is_active"] = "is_active must be true or false!"
			} else {
				filter.Active = &active
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedUserFilter", filter)
		return c.Next()
	}
}

// User validates the admin create and update body
func User() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.UserInput)
		ok, err := validators.ParseBody(c, reqData, func() {
			reqData.Name = strings.TrimSpace(reqData.Name)
			reqData.Email = strings.TrimSpace(reqData.Email)
			reqData.Role = strings.ToLower(strings.TrimSpace(reqData.Role))
		})
		if !ok {
			return err
		}
		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

func ResetPassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ResetPasswordRequest)
		ok, err := validators.ParseBody(c, reqData, nil)
		if !ok {
			return err
		}
		c.Locals("validatedResetPassword", reqData)
		return c.Next()
	}
}
