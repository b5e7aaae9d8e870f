package authController

import (
	"coursemaster/config"
	"coursemaster/middleware"
	"coursemaster/services"
	"coursemaster/utils"
	authValidator "coursemaster/validators/auth"
	"time"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	users *services.UserService
	cfg   *config.Config
}

func NewAuthController(users *services.UserService, cfg *config.Config) *AuthController {
	return &AuthController{users: users, cfg: cfg}
}

func (ctl *AuthController) Register(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRegister").(*services.RegisterInput)

	user, err := ctl.users.Register(c.UserContext(), *reqData)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", user)
}

func (ctl *AuthController) Login(c *fiber.Ctx) error {
	reqData := c.Locals("validatedLogin").(*authValidator.LoginRequest)

	user, err := ctl.users.Login(c.UserContext(), reqData.Email, reqData.Password)
	if err != nil {
		return err
	}

	ctl.users.RecordLogin(c.UserContext(), user.ID, c.IP(), c.Get(fiber.HeaderUserAgent))

	token, err := middleware.GenerateJWT(ctl.cfg.JWTKey, ctl.cfg.JWTExpiry, user.ID, user.Role)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ctl.cfg.JWTExpiry),
		HTTPOnly: true,
		Secure:   ctl.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (ctl *AuthController) Me(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	user, err := ctl.users.Active(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User details.", user)
}

func (ctl *AuthController) LoginHistory(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	p := utils.GetPagination(c, 10)
	entries, total, err := ctl.users.LoginHistory(c.UserContext(), userID, p)
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Login history fetched successfully.", entries, p.Meta(total))
}

func (ctl *AuthController) Logout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.TokenCookie)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully.", nil)
}
