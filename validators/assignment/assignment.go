package assignmentValidator

import (
	"coursemaster/middleware"
	"coursemaster/validators"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type CreateRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	LessonID    *uint      `json:"lesson_id" validate:"omitempty,min=1"`
	DueDate     *time.Time `json:"due_date"`
}

type SubmitRequest struct {
	SubmissionText string `json:"submission_text" validate:"max=20000"`
	SubmissionLink string `json:"submission_link" validate:"omitempty,url,max=2048"`
}

type GradeRequest struct {
	Grade    *int   `json:"grade" validate:"required,min=0,max=100"`
	Feedback string `json:"feedback" validate:"max=5000"`
}

func Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateRequest)
		ok, err := validators.ParseBody(c, reqData, func() {
			reqData.Title = strings.TrimSpace(reqData.Title)
			reqData.Description = strings.TrimSpace(reqData.Description)
		})
		if !ok {
			return err
		}
		c.Locals("validatedAssignment", reqData)
		return c.Next()
	}
}

// Submit requires a text answer, a link, or both
func Submit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitRequest)
		ok, err := validators.ParseBody(c, reqData, func() {
			reqData.SubmissionText = strings.TrimSpace(reqData.SubmissionText)
			reqData.SubmissionLink = strings.TrimSpace(reqData.SubmissionLink)
		})
		if !ok {
			return err
		}
		if reqData.SubmissionText == "" && reqData.SubmissionLink == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"submission_text": "Submission text or link is required!",
			})
		}
		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}

func Grade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(GradeRequest)
		ok, err := validators.ParseBody(c, reqData, func() {
			reqData.Feedback = strings.TrimSpace(reqData.Feedback)
		})
		if !ok {
			return err
		}
		c.Locals("validatedGrade", reqData)
		return c.Next()
	}
}

// CourseQuery reads the required course_id query parameter
func CourseQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(strings.TrimSpace(c.Query("course_id")), 10, 64)
		if err != nil || id == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"course_id": "course_id is required!"})
		}
		c.Locals("courseId", uint(id))
		return c.Next()
	}
}
