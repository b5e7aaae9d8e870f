package enrollmentController

import (
	"coursemaster/middleware"
	"coursemaster/services"
	"coursemaster/utils"
	"coursemaster/validators"

	"github.com/gofiber/fiber/v2"
)

type EnrollmentController struct {
	enrollments *services.EnrollmentService
}

func NewEnrollmentController(enrollments *services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{enrollments: enrollments}
}

func (ctl *EnrollmentController) Enroll(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	enrollment, err := ctl.enrollments.Enroll(c.UserContext(), userID, validators.ID(c, "courseId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully.", enrollment)
}

func (ctl *EnrollmentController) EnrollInBatch(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	enrollment, err := ctl.enrollments.EnrollInBatch(c.UserContext(), userID, validators.ID(c, "courseId"), validators.ID(c, "batchId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in batch successfully.", enrollment)
}

func (ctl *EnrollmentController) List(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	p := utils.GetPagination(c, 10)
	enrollments, total, err := ctl.enrollments.ListForStudent(c.UserContext(), userID, p)
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Enrollments fetched successfully.", enrollments, p.Meta(total))
}

func (ctl *EnrollmentController) Detail(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	enrollment, err := ctl.enrollments.GetForStudent(c.UserContext(), userID, validators.ID(c, "enrollmentId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment fetched successfully.", enrollment)
}

func (ctl *EnrollmentController) CompleteLesson(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	enrollment, err := ctl.enrollments.CompleteLesson(c.UserContext(), userID, validators.ID(c, "enrollmentId"), validators.ID(c, "lessonId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as completed.", enrollment)
}
