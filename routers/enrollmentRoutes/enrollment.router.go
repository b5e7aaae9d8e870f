package enrollmentRoutes

import (
	enrollmentController "coursemaster/controllers/enrollment"
	"coursemaster/validators"

	"github.com/gofiber/fiber/v2"
)

func SetupEnrollmentRoutes(api fiber.Router, jwt fiber.Handler, ctl *enrollmentController.EnrollmentController) {
	studentGroup := api.Group("/students", jwt)

	studentGroup.Post("/enrollments/:courseId", validators.IDParams("courseId"), ctl.Enroll)
	studentGroup.Get("/enrollments", ctl.List)
	studentGroup.Get("/enrollments/:enrollmentId", validators.IDParams("enrollmentId"), ctl.Detail)
	studentGroup.Put("/enrollments/:enrollmentId/lessons/:lessonId", validators.IDParams("enrollmentId", "lessonId"), ctl.CompleteLesson)
}
