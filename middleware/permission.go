package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireRoles lets the request through only when the authenticated role is one of roles.
// It must run after JWTMiddleware.
func RequireRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}
		if !allowed[role] {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}
		return c.Next()
	}
}

// Caller returns the authenticated user id and role
func Caller(c *fiber.Ctx) (uint, string) {
	userID, _ := c.Locals("userId").(uint)
	role, _ := c.Locals("role").(string)
	return userID, role
}
