package adminController

import (
	"coursemaster/middleware"
	"coursemaster/utils"
	"coursemaster/validators"

	"github.com/gofiber/fiber/v2"
)

const reportPageSize = 20

func (ctl *AdminController) EnrollmentStats(c *fiber.Ctx) error {
	stats, err := ctl.analytics.EnrollmentStats(c.UserContext())
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment stats fetched successfully.", stats)
}

func (ctl *AdminController) CourseEnrollments(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	p := utils.GetPagination(c, reportPageSize)
	enrollments, total, err := ctl.analytics.CourseEnrollments(c.UserContext(), userID, role, validators.ID(c, "courseId"), p)
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Enrollments fetched successfully.", enrollments, p.Meta(total))
}

func (ctl *AdminController) BatchEnrollments(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	p := utils.GetPagination(c, reportPageSize)
	enrollments, total, err := ctl.analytics.BatchEnrollments(c.UserContext(), userID, role,
		validators.ID(c, "courseId"), validators.ID(c, "batchId"), p)
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Enrollments fetched successfully.", enrollments, p.Meta(total))
}

func (ctl *AdminController) CourseEnrollmentStats(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	stats, err := ctl.analytics.CourseEnrollmentStats(c.UserContext(), userID, role, validators.ID(c, "courseId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course enrollment stats fetched successfully.", stats)
}
