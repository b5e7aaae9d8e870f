package batchRoutes

import (
	batchController "coursemaster/controllers/batch"
	enrollmentController "coursemaster/controllers/enrollment"
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/validators"
	courseValidator "coursemaster/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupBatchRoutes(api fiber.Router, jwt fiber.Handler, ctl *batchController.BatchController, enrollments *enrollmentController.EnrollmentController) {
	batchGroup := api.Group("/batches", jwt)
	staff := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)

	batchGroup.Post("/courses/:courseId", staff, validators.IDParams("courseId"), courseValidator.Batch(), ctl.Create)
	batchGroup.Get("/courses/:courseId", validators.IDParams("courseId"), ctl.List)
	batchGroup.Put("/courses/:courseId/:batchId", staff, validators.IDParams("courseId", "batchId"), courseValidator.Batch(), ctl.Update)
	batchGroup.Delete("/courses/:courseId/:batchId", staff, validators.IDParams("courseId", "batchId"), ctl.Delete)
	batchGroup.Get("/courses/:courseId/:batchId/students", staff, validators.IDParams("courseId", "batchId"), ctl.Students)
	batchGroup.Post("/courses/:courseId/:batchId/enroll", validators.IDParams("courseId", "batchId"), enrollments.EnrollInBatch)
}
