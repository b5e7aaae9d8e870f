package adminController

import (
	"coursemaster/middleware"
	"coursemaster/services"
	"coursemaster/validators"

	"github.com/gofiber/fiber/v2"
)

func (ctl *AdminController) CreateCourse(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	reqData := c.Locals("validatedCourse").(*services.CourseInput)

	course, err := ctl.courses.Create(c.UserContext(), userID, role, *reqData)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully.", course)
}

func (ctl *AdminController) EditCourse(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	course, err := ctl.courses.DetailForEdit(c.UserContext(), userID, role, validators.ID(c, "courseId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", course)
}

func (ctl *AdminController) UpdateCourse(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	reqData := c.Locals("validatedCourse").(*services.CourseInput)

	course, err := ctl.courses.Update(c.UserContext(), userID, role, validators.ID(c, "courseId"), *reqData)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully.", course)
}

func (ctl *AdminController) DeleteCourse(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	if err := ctl.courses.Delete(c.UserContext(), userID, role, validators.ID(c, "courseId")); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully.", nil)
}
