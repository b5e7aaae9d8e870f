package assignmentRoutes

import (
	assignmentController "coursemaster/controllers/assignment"
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/validators"
	assignmentValidator "coursemaster/validators/assignment"

	"github.com/gofiber/fiber/v2"
)

func SetupAssignmentRoutes(api fiber.Router, jwt fiber.Handler, ctl *assignmentController.AssignmentController) {
	assignmentGroup := api.Group("/assignments", jwt)
	staff := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)

	assignmentGroup.Get("/", assignmentValidator.CourseQuery(), ctl.List)
	assignmentGroup.Post("/courses/:courseId", staff, validators.IDParams("courseId"), assignmentValidator.Create(), ctl.Create)
	assignmentGroup.Get("/courses/:courseId/submissions", validators.IDParams("courseId"), ctl.MySubmissions)
	assignmentGroup.Post("/submissions/:submissionId/grade", staff, validators.IDParams("submissionId"), assignmentValidator.Grade(), ctl.Grade)
	assignmentGroup.Post("/:assignmentId/submit", validators.IDParams("assignmentId"), assignmentValidator.Submit(), ctl.Submit)
	assignmentGroup.Get("/:assignmentId/submissions", staff, validators.IDParams("assignmentId"), ctl.Submissions)
}
