package quizValidator

import (
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/validators"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type OptionRequest struct {
	Text      string `json:"text" validate:"required,max=500"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionRequest struct {
	Question    string          `json:"question" validate:"required,max=2000"`
	Options     []OptionRequest `json:"options" validate:"min=2,max=10,dive"`
	Explanation string          `json:"explanation" validate:"max=2000"`
}

type CreateRequest struct {
	Title        string            `json:"title" validate:"required,min=3,max=200"`
	Description  string            `json:"description" validate:"max=5000"`
	LessonID     *uint             `json:"lesson_id" validate:"omitempty,min=1"`
	PassingScore *int              `json:"passing_score" validate:"omitempty,min=0,max=100"`
	Questions    []QuestionRequest `json:"questions" validate:"required,min=1,max=100,dive"`
}

type SubmitRequest struct {
	Answers []models.QuizAnswer `json:"answers" validate:"required"`
}

// ToQuestions converts the request into stored questions
func (r *CreateRequest) ToQuestions() []models.QuizQuestion {
	out := make([]models.QuizQuestion, 0, len(r.Questions))
	for _, q := range r.Questions {
		question := models.QuizQuestion{Question: q.Question, Explanation: q.Explanation}
		for _, o := range q.Options {
			question.Options = append(question.Options, models.QuizOption{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		out = append(out, question)
	}
	return out
}

func Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateRequest)
		ok, err := validators.ParseBody(c, reqData, func() {
			reqData.Title = strings.TrimSpace(reqData.Title)
			reqData.Description = strings.TrimSpace(reqData.Description)
			for i := range reqData.Questions {
				q := &reqData.Questions[i]
				q.Question = strings.TrimSpace(q.Question)
				for j := range q.Options {
					q.Options[j].Text = strings.TrimSpace(q.Options[j].Text)
				}
			}
		})
		if !ok {
			return err
		}

		errors := make(map[string]string)
		for i, q := range reqData.Questions {
			seen := make(map[string]bool, len(q.Options))
			correct := 0
			for _, o := range q.Options {
				if seen[o.Text] {
					errors[fmt.Sprintf("questions[%d].options", i)] = "Option texts must be unique!"
				}
				seen[o.Text] = true
				if o.IsCorrect {
					correct++
				}
			}
			if correct == 0 {
				errors[fmt.Sprintf("questions[%d].options", i)] = "At least one option must be correct!"
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		if reqData.PassingScore == nil {
			score := models.DefaultPassingScore
			reqData.PassingScore = &score
		}
		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

func Submit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitRequest)
		ok, err := validators.ParseBody(c, reqData, func() {
			for i := range reqData.Answers {
				reqData.Answers[i].SelectedOption = strings.TrimSpace(reqData.Answers[i].SelectedOption)
			}
		})
		if !ok {
			return err
		}
		c.Locals("validatedQuizSubmit", reqData)
		return c.Next()
	}
}
