package courseRoutes

import (
	catalogController "coursemaster/controllers/catalog"
	quizController "coursemaster/controllers/quiz"
	"coursemaster/validators"
	courseValidator "coursemaster/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes registers the public catalog and the per-course quiz list.
// The quiz list takes jwt per route so the catalog stays public.
func SetupCourseRoutes(api fiber.Router, jwt fiber.Handler, catalog *catalogController.CatalogController, quizzes *quizController.QuizController) {
	courseGroup := api.Group("/courses")

	courseGroup.Get("/", courseValidator.CatalogQuery(), catalog.List)
	courseGroup.Get("/:courseId", validators.IDParams("courseId"), catalog.Detail)
	courseGroup.Get("/:courseId/quizzes", jwt, validators.IDParams("courseId"), quizzes.ListForCourse)
}
