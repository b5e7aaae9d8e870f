package quizRoutes

import (
	quizController "coursemaster/controllers/quiz"
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/validators"
	quizValidator "coursemaster/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

func SetupQuizRoutes(api fiber.Router, jwt fiber.Handler, ctl *quizController.QuizController) {
	quizGroup := api.Group("/quizzes", jwt)
	staff := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)

	quizGroup.Post("/courses/:courseId", staff, validators.IDParams("courseId"), quizValidator.Create(), ctl.Create)
	quizGroup.Get("/:quizId", validators.IDParams("quizId"), ctl.Get)
	quizGroup.Post("/:quizId/submit", validators.IDParams("quizId"), quizValidator.Submit(), ctl.Submit)
	quizGroup.Get("/:quizId/attempts", staff, validators.IDParams("quizId"), ctl.Attempts)
	quizGroup.Get("/:quizId/myattempt", validators.IDParams("quizId"), ctl.MyAttempt)
}
