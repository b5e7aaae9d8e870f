package authValidator

import (
	"coursemaster/services"
	"coursemaster/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register validator middleware
func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.RegisterInput)
		ok, err := validators.ParseBody(c, reqData, func() {
			reqData.Name = strings.TrimSpace(reqData.Name)
			reqData.Email = strings.TrimSpace(reqData.Email)
			reqData.Role = strings.ToLower(strings.TrimSpace(reqData.Role))
		})
		if !ok {
			return err
		}

		c.Locals("validatedRegister", reqData)
		return c.Next()
	}
}

func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)
		ok, err := validators.ParseBody(c, reqData, func() {
			reqData.Email = strings.TrimSpace(reqData.Email)
		})
		if !ok {
			return err
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}
