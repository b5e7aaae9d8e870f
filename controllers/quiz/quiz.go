package quizController

import (
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/services"
	"coursemaster/validators"
	quizValidator "coursemaster/validators/quiz"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type QuizController struct {
	quizzes *services.QuizService
}

func NewQuizController(quizzes *services.QuizService) *QuizController {
	return &QuizController{quizzes: quizzes}
}

func (ctl *QuizController) Create(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	reqData := c.Locals("validatedQuiz").(*quizValidator.CreateRequest)

	quiz, err := ctl.quizzes.CreateQuiz(c.UserContext(), userID, role, &models.Quiz{
		CourseID:     validators.ID(c, "courseId"),
		LessonID:     reqData.LessonID,
		Title:        reqData.Title,
		Description:  reqData.Description,
		PassingScore: *reqData.PassingScore,
		Questions:    datatypes.NewJSONType(reqData.ToQuestions()),
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully.", quiz)
}

// Get hides the answer key from everyone but the course owner
func (ctl *QuizController) Get(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	quiz, owner, err := ctl.quizzes.Get(c.UserContext(), userID, role, validators.ID(c, "quizId"))
	if err != nil {
		return err
	}
	if owner {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully.", quiz)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully.", services.Sanitize(quiz))
}

func (ctl *QuizController) ListForCourse(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	quizzes, owner, err := ctl.quizzes.ListForCourse(c.UserContext(), userID, role, validators.ID(c, "courseId"))
	if err != nil {
		return err
	}
	if owner {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes fetched successfully.", quizzes)
	}
	views := make([]services.SanitizedQuiz, 0, len(quizzes))
	for i := range quizzes {
		views = append(views, services.Sanitize(&quizzes[i]))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes fetched successfully.", views)
}

func (ctl *QuizController) Submit(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	reqData := c.Locals("validatedQuizSubmit").(*quizValidator.SubmitRequest)

	attempt, err := ctl.quizzes.Submit(c.UserContext(), userID, validators.ID(c, "quizId"), reqData.Answers)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz submitted successfully.", attempt)
}

func (ctl *QuizController) Attempts(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	attempts, err := ctl.quizzes.Attempts(c.UserContext(), userID, role, validators.ID(c, "quizId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz attempts fetched successfully.", attempts)
}

func (ctl *QuizController) MyAttempt(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	attempt, err := ctl.quizzes.BestAttempt(c.UserContext(), userID, validators.ID(c, "quizId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Best attempt fetched successfully.", attempt)
}
