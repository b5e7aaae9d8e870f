package adminController

import (
	"coursemaster/middleware"
	"coursemaster/services"

	"github.com/gofiber/fiber/v2"
)

// AdminController serves the /api/admin surface
type AdminController struct {
	courses   *services.CourseService
	users     *services.UserService
	analytics *services.AnalyticsService
}

func NewAdminController(courses *services.CourseService, users *services.UserService, analytics *services.AnalyticsService) *AdminController {
	return &AdminController{courses: courses, users: users, analytics: analytics}
}

func (ctl *AdminController) Stats(c *fiber.Ctx) error {
	stats, err := ctl.analytics.PlatformStats(c.UserContext())
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Platform stats fetched successfully.", stats)
}
