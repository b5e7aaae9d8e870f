package adminRoutes

import (
	adminController "coursemaster/controllers/admin"
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/validators"
	courseValidator "coursemaster/validators/course"
	userValidator "coursemaster/validators/user"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(api fiber.Router, jwt fiber.Handler, ctl *adminController.AdminController) {
	adminGroup := api.Group("/admin", jwt)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)

	adminGroup.Get("/stats", adminOnly, ctl.Stats)

	// Course management, owner checks happen in the service
	adminGroup.Post("/courses", staff, courseValidator.Course(), ctl.CreateCourse)
	adminGroup.Get("/courses/:courseId/edit", staff, validators.IDParams("courseId"), ctl.EditCourse)
	adminGroup.Put("/courses/:courseId", staff, validators.IDParams("courseId"), courseValidator.Course(), ctl.UpdateCourse)
	adminGroup.Delete("/courses/:courseId", staff, validators.IDParams("courseId"), ctl.DeleteCourse)

	// Enrollment reports
	adminGroup.Get("/enrollments/stats", adminOnly, ctl.EnrollmentStats)
	adminGroup.Get("/enrollments/courses/:courseId", staff, validators.IDParams("courseId"), ctl.CourseEnrollments)
	adminGroup.Get("/enrollments/courses/:courseId/stats", staff, validators.IDParams("courseId"), ctl.CourseEnrollmentStats)
	adminGroup.Get("/enrollments/courses/:courseId/batches/:batchId", staff, validators.IDParams("courseId", "batchId"), ctl.BatchEnrollments)

	// Users
	adminGroup.Get("/users", adminOnly, userValidator.List(), ctl.ListUsers)
	adminGroup.Post("/users", adminOnly, userValidator.User(), ctl.CreateUser)
	adminGroup.Get("/users/:userId", adminOnly, validators.IDParams("userId"), ctl.UserDetails)
	adminGroup.Put("/users/:userId", adminOnly, validators.IDParams("userId"), userValidator.User(), ctl.UpdateUser)
	adminGroup.Delete("/users/:userId", adminOnly, validators.IDParams("userId"), ctl.DeleteUser)
	adminGroup.Post("/users/:userId/reset-password", adminOnly, validators.IDParams("userId"), userValidator.ResetPassword(), ctl.ResetPassword)
}
