package authRoutes

import (
	authController "coursemaster/controllers/auth"
	authValidator "coursemaster/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(api fiber.Router, jwt fiber.Handler, ctl *authController.AuthController) {
	authGroup := api.Group("/auth")

	authGroup.Post("/register", authValidator.Register(), ctl.Register)
	authGroup.Post("/login", authValidator.Login(), ctl.Login)
	authGroup.Get("/me", jwt, ctl.Me)
	authGroup.Get("/login/history", jwt, ctl.LoginHistory)
	authGroup.Post("/logout", jwt, ctl.Logout)
}
