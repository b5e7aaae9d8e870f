package assignmentController

import (
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/services"
	"coursemaster/utils"
	"coursemaster/validators"
	assignmentValidator "coursemaster/validators/assignment"

	"github.com/gofiber/fiber/v2"
)

type AssignmentController struct {
	assignments *services.AssignmentService
}

func NewAssignmentController(assignments *services.AssignmentService) *AssignmentController {
	return &AssignmentController{assignments: assignments}
}

func (ctl *AssignmentController) Create(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	reqData := c.Locals("validatedAssignment").(*assignmentValidator.CreateRequest)

	assignment, err := ctl.assignments.Create(c.UserContext(), userID, role, &models.Assignment{
		CourseID:    validators.ID(c, "courseId"),
		LessonID:    reqData.LessonID,
		Title:       reqData.Title,
		Description: reqData.Description,
		DueDate:     reqData.DueDate,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assignment created successfully.", assignment)
}

func (ctl *AssignmentController) List(c *fiber.Ctx) error {
	assignments, err := ctl.assignments.ListForCourse(c.UserContext(), c.Locals("courseId").(uint))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignments fetched successfully.", assignments)
}

func (ctl *AssignmentController) Submit(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	reqData := c.Locals("validatedSubmission").(*assignmentValidator.SubmitRequest)

	submission, err := ctl.assignments.Submit(c.UserContext(), userID, validators.ID(c, "assignmentId"), reqData.SubmissionText, reqData.SubmissionLink)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment submitted successfully.", submission)
}

func (ctl *AssignmentController) Submissions(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	p := utils.GetPagination(c, 20)
	submissions, total, err := ctl.assignments.Submissions(c.UserContext(), userID, role, validators.ID(c, "assignmentId"), p)
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Submissions fetched successfully.", submissions, p.Meta(total))
}

func (ctl *AssignmentController) Grade(c *fiber.Ctx) error {
	userID, role := middleware.Caller(c)
	reqData := c.Locals("validatedGrade").(*assignmentValidator.GradeRequest)

	submission, err := ctl.assignments.Grade(c.UserContext(), userID, role, validators.ID(c, "submissionId"), *reqData.Grade, reqData.Feedback)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission graded successfully.", submission)
}

func (ctl *AssignmentController) MySubmissions(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	submissions, err := ctl.assignments.StudentSubmissions(c.UserContext(), userID, validators.ID(c, "courseId"))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully.", submissions)
}
