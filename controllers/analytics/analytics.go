package analyticsController

import (
	"coursemaster/middleware"
	"coursemaster/services"
	"coursemaster/validators"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsController struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsController(analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

func (ctl *AnalyticsController) Dashboard(c *fiber.Ctx) error {
	dashboard, err := ctl.analytics.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully.", dashboard)
}

func (ctl *AnalyticsController) Course(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	report, err := ctl.analytics.CourseAnalytics(c.UserContext(), userID, role, validators.ID(c, "courseId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course analytics fetched successfully.", report)
}

func (ctl *AnalyticsController) Users(c *fiber.Ctx) error {
	report, err := ctl.analytics.UserAnalytics(c.UserContext())
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User analytics fetched successfully.", report)
}
