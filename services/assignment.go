package services

import (
	"context"
	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/models"
	"coursemaster/utils"
	"errors"
	"time"

	"gorm.io/gorm"
)

type AssignmentService struct {
	db          *gorm.DB
	log         *logger.Logger
	enrollments *EnrollmentService
	now         func() time.Time
}

func NewAssignmentService(db *gorm.DB, log *logger.Logger, enrollments *EnrollmentService) *AssignmentService {
	return &AssignmentService{db: db, log: log, enrollments: enrollments, now: time.Now}
}

// Create adds an assignment to a course the caller owns
func (s *AssignmentService) Create(ctx context.Context, callerID uint, role string, assignment *models.Assignment) (*models.Assignment, error) {
	db := s.db.WithContext(ctx)
	if _, err := findOwnedCourse(db, assignment.CourseID, callerID, role); err != nil {
		return nil, err
	}
	if assignment.LessonID != nil {
		if err := ensureLessonInCourse(db, assignment.CourseID, *assignment.LessonID); err != nil {
			return nil, err
		}
	}
	if err := db.Create(assignment).Error; err != nil {
		return nil, apperr.Wrap(err, "create assignment")
	}
	return assignment, nil
}

// ListForCourse returns the assignments of a course, soonest due first
func (s *AssignmentService) ListForCourse(ctx context.Context, courseID uint) ([]models.Assignment, error) {
	if _, err := findCourse(s.db.WithContext(ctx), courseID); err != nil {
		return nil, err
	}
	assignments := []models.Assignment{}
	if err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("due_date IS NULL, due_date ASC, id ASC").
		Find(&assignments).Error; err != nil {
		return nil, apperr.Wrap(err, "list assignments")
	}
	return assignments, nil
}

// Submit stores the student's submission. A resubmission replaces the content
// and clears any grade already given.
func (s *AssignmentService) Submit(ctx context.Context, studentID, assignmentID uint, text, link string) (*models.Submission, error) {
	if text == "" && link == "" {
		return nil, apperr.Validation(map[string]string{"submission": "Submission text or link is required!"})
	}

	var assignment models.Assignment
	if err := s.db.WithContext(ctx).First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Assignment not found")
		}
		return nil, apperr.Wrap(err, "load assignment")
	}
	enrolled, err := s.enrollments.IsEnrolled(ctx, studentID, assignment.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperr.Forbidden("Enroll in the course to submit this assignment")
	}

	var submission models.Submission
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("student_id = ? AND assignment_id = ?", studentID, assignmentID).Limit(1).Find(&submission)
		if res.Error != nil {
			return apperr.Wrap(res.Error, "find submission")
		}
		if res.RowsAffected == 0 {
			submission = models.Submission{
				StudentID:      studentID,
				AssignmentID:   assignmentID,
				SubmissionText: text,
				SubmissionLink: link,
				SubmittedAt:    s.now(),
			}
			if err := tx.Create(&submission).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperr.Conflict("Submission already exists, try again")
				}
				return apperr.Wrap(err, "create submission")
			}
			return nil
		}

		if err := tx.Model(&submission).Updates(map[string]interface{}{
			"submission_text": text,
			"submission_link": link,
			"submitted_at":    s.now(),
			"grade":           nil,
			"feedback":        "",
			"graded_at":       nil,
			"graded_by":       nil,
		}).Error; err != nil {
			return apperr.Wrap(err, "update submission")
		}
		return tx.First(&submission, submission.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// Grade records a 0-100 grade by the course owner
func (s *AssignmentService) Grade(ctx context.Context, callerID uint, role string, submissionID uint, grade int, feedback string) (*models.Submission, error) {
	if grade < 0 || grade > 100 {
		return nil, apperr.Validation(map[string]string{"grade": "Grade must be between 0 and 100!"})
	}

	db := s.db.WithContext(ctx)
	var submission models.Submission
	if err := db.Preload("Assignment").First(&submission, submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Submission not found")
		}
		return nil, apperr.Wrap(err, "load submission")
	}
	if submission.Assignment == nil {
		return nil, apperr.NotFound("Assignment not found")
	}
	if _, err := findOwnedCourse(db, submission.Assignment.CourseID, callerID, role); err != nil {
		return nil, err
	}

	now := s.now()
	if err := db.Model(&submission).Updates(map[string]interface{}{
		"grade":     grade,
		"feedback":  feedback,
		"graded_at": now,
		"graded_by": callerID,
	}).Error; err != nil {
		return nil, apperr.Wrap(err, "grade submission")
	}
	submission.Grade = &grade
	submission.Feedback = feedback
	submission.GradedAt = &now
	submission.GradedBy = &callerID

	s.log.Info("submission graded", "submission_id", submission.ID, "grade", grade)
	return &submission, nil
}

// Submissions lists the submissions of an assignment for the course owner
func (s *AssignmentService) Submissions(ctx context.Context, callerID uint, role string, assignmentID uint, p utils.Pagination) ([]models.Submission, int64, error) {
	db := s.db.WithContext(ctx)
	var assignment models.Assignment
	if err := db.First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperr.NotFound("Assignment not found")
		}
		return nil, 0, apperr.Wrap(err, "load assignment")
	}
	if _, err := findOwnedCourse(db, assignment.CourseID, callerID, role); err != nil {
		return nil, 0, err
	}

	query := db.Model(&models.Submission{}).Where("assignment_id = ?", assignmentID).Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "count submissions")
	}
	submissions := []models.Submission{}
	if err := query.Preload("Student").
		Order("submitted_at DESC, id DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&submissions).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "list submissions")
	}
	return submissions, total, nil
}

// StudentSubmissions returns the student's own submissions within a course
func (s *AssignmentService) StudentSubmissions(ctx context.Context, studentID, courseID uint) ([]models.Submission, error) {
	submissions := []models.Submission{}
	if err := s.db.WithContext(ctx).
		Preload("Assignment").
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Where("submissions.student_id = ? AND assignments.course_id = ?", studentID, courseID).
		Order("submissions.submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, apperr.Wrap(err, "list student submissions")
	}
	return submissions, nil
}
