package analyticsRoutes

import (
	analyticsController "coursemaster/controllers/analytics"
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/validators"

	"github.com/gofiber/fiber/v2"
)

func SetupAnalyticsRoutes(api fiber.Router, jwt fiber.Handler, ctl *analyticsController.AnalyticsController) {
	analyticsGroup := api.Group("/analytics", jwt)

	analyticsGroup.Get("/dashboard", middleware.RequireRoles(models.RoleAdmin), ctl.Dashboard)
	analyticsGroup.Get("/users", middleware.RequireRoles(models.RoleAdmin), ctl.Users)
	analyticsGroup.Get("/courses/:courseId", middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin), validators.IDParams("courseId"), ctl.Course)
}
