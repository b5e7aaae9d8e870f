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
	"gorm.io/gorm/clause"
)

// EnrollmentService owns enrollment creation and lesson progress
type EnrollmentService struct {
	db       *gorm.DB
	log      *logger.Logger
	notifier utils.Notifier
	now      func() time.Time
}

func NewEnrollmentService(db *gorm.DB, log *logger.Logger, notifier utils.Notifier) *EnrollmentService {
	return &EnrollmentService{db: db, log: log, notifier: notifier, now: time.Now}
}

// Enroll creates a direct enrollment for the student
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	var course *models.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if course, err = loadCourseWithLessons(tx, courseID); err != nil {
			return err
		}
		enrollment, err = s.create(tx, studentID, course, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("enrollment created", "enrollment_id", enrollment.ID, "course_id", courseID, "student_id", studentID)
	s.notifyEnrolled(ctx, studentID, course)
	return enrollment, nil
}

// EnrollInBatch creates an enrollment scoped to a batch that is running and not full.
// The batch row is locked while seats are counted.
func (s *EnrollmentService) EnrollInBatch(ctx context.Context, studentID, courseID, batchID uint) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	var course *models.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if course, err = loadCourseWithLessons(tx, courseID); err != nil {
			return err
		}

		var batch models.Batch
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND course_id = ?", batchID, courseID).
			First(&batch).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Batch not found")
			}
			return apperr.Wrap(err, "load batch")
		}
		if !batch.ActiveAt(s.now()) {
			return apperr.Conflict("Batch is not currently active")
		}
		if err := ensureNotEnrolled(tx, studentID, courseID); err != nil {
			return err
		}

		if batch.MaxStudents != nil {
			var seats int64
			if err := tx.Model(&models.Enrollment{}).
				Where("course_id = ? AND batch_id = ?", courseID, batchID).
				Count(&seats).Error; err != nil {
				return apperr.Wrap(err, "count batch enrollments")
			}
			if seats >= int64(*batch.MaxStudents) {
				return apperr.Conflict("Batch is full")
			}
		}

		enrollment, err = s.create(tx, studentID, course, &batch.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("batch enrollment created", "enrollment_id", enrollment.ID, "course_id", courseID, "batch_id", batchID)
	s.notifyEnrolled(ctx, studentID, course)
	return enrollment, nil
}

// ensureEnrollment returns the student's enrollment in the course, creating it if needed.
// It runs inside the caller's transaction; a concurrent insert of the same pair counts as existing.
func (s *EnrollmentService) ensureEnrollment(tx *gorm.DB, studentID, courseID uint) (*models.Enrollment, bool, error) {
	var existing models.Enrollment
	res := tx.Where("student_id = ? AND course_id = ?", studentID, courseID).Limit(1).Find(&existing)
	if res.Error != nil {
		return nil, false, apperr.Wrap(res.Error, "find enrollment")
	}
	if res.RowsAffected > 0 {
		return &existing, false, nil
	}

	course, err := loadCourseWithLessons(tx, courseID)
	if err != nil {
		return nil, false, err
	}

	var created *models.Enrollment
	err = tx.Transaction(func(sp *gorm.DB) error {
		var err error
		created, err = s.create(sp, studentID, course, nil)
		return err
	})
	if apperr.Is(err, apperr.KindConflict) {
		if err := tx.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&existing).Error; err != nil {
			return nil, false, apperr.Wrap(err, "reload enrollment")
		}
		return &existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (s *EnrollmentService) create(tx *gorm.DB, studentID uint, course *models.Course, batchID *uint) (*models.Enrollment, error) {
	if err := ensureNotEnrolled(tx, studentID, course.ID); err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{
		StudentID:           studentID,
		CourseID:            course.ID,
		BatchID:             batchID,
		EnrolledAt:          s.now(),
		PercentageCompleted: 0,
		Status:              models.EnrollmentActive,
		Progress:            utils.InitializeProgress(course.Lessons),
	}
	if err := tx.Create(enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Already enrolled in this course")
		}
		return nil, apperr.Wrap(err, "create enrollment")
	}
	return enrollment, nil
}

// CompleteLesson marks one lesson of the student's enrollment as completed.
// Repeating the call is a no-op that returns the current state.
func (s *EnrollmentService) CompleteLesson(ctx context.Context, studentID, enrollmentID, lessonID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&enrollment, enrollmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Enrollment not found")
			}
			return apperr.Wrap(err, "load enrollment")
		}
		if enrollment.StudentID != studentID {
			return apperr.Forbidden("You can only update your own enrollment")
		}

		res := tx.Model(&models.ProgressEntry{}).
			Where("enrollment_id = ? AND lesson_id = ? AND completed = ?", enrollment.ID, lessonID, false).
			Updates(map[string]interface{}{"completed": true, "completed_at": s.now()})
		if res.Error != nil {
			return apperr.Wrap(res.Error, "complete lesson")
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.ProgressEntry{}).
				Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lessonID).
				Count(&count).Error; err != nil {
				return apperr.Wrap(err, "find progress entry")
			}
			if count == 0 {
				return apperr.NotFound("Lesson not found in this enrollment")
			}
		}

		if err := tx.Where("enrollment_id = ?", enrollment.ID).Order(models.ProgressOrder).Find(&enrollment.Progress).Error; err != nil {
			return apperr.Wrap(err, "load progress")
		}
		percentage := utils.CalculateProgress(enrollment.Progress)
		status := enrollment.Status
		if percentage == 100 {
			status = models.EnrollmentCompleted
		}
		if percentage == enrollment.PercentageCompleted && status == enrollment.Status {
			return nil
		}

		if err := tx.Model(&enrollment).Updates(map[string]interface{}{
			"percentage_completed": percentage,
			"status":               status,
		}).Error; err != nil {
			return apperr.Wrap(err, "update enrollment progress")
		}
		if status == models.EnrollmentCompleted && enrollment.Status != models.EnrollmentCompleted {
			s.log.Info("course completed", "enrollment_id", enrollment.ID, "course_id", enrollment.CourseID)
		}
		enrollment.PercentageCompleted = percentage
		enrollment.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// GetForStudent returns the enrollment with its progress and course, if owned by the student
func (s *EnrollmentService) GetForStudent(ctx context.Context, studentID, enrollmentID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Progress", func(db *gorm.DB) *gorm.DB { return db.Order(models.ProgressOrder) }).
		Preload("Course").
		Preload("Course.Lessons", func(db *gorm.DB) *gorm.DB { return db.Order(models.LessonOrder) }).
		Preload("Batch").
		First(&enrollment, enrollmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Enrollment not found")
		}
		return nil, apperr.Wrap(err, "load enrollment")
	}
	if enrollment.StudentID != studentID {
		return nil, apperr.Forbidden("You can only view your own enrollment")
	}
	return &enrollment, nil
}

// ListForStudent returns a page of the student's enrollments, newest first
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID uint, p utils.Pagination) ([]models.Enrollment, int64, error) {
	var total int64
	db := s.db.WithContext(ctx).Model(&models.Enrollment{}).Where("student_id = ?", studentID).Session(&gorm.Session{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "count enrollments")
	}

	enrollments := []models.Enrollment{}
	if err := db.Preload("Course").Preload("Batch").
		Order("enrolled_at DESC, id DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&enrollments).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "list enrollments")
	}
	return enrollments, total, nil
}

// IsEnrolled reports whether the student has an enrollment in the course
func (s *EnrollmentService) IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error; err != nil {
		return false, apperr.Wrap(err, "check enrollment")
	}
	return count > 0, nil
}

func (s *EnrollmentService) notifyEnrolled(ctx context.Context, studentID uint, course *models.Course) {
	var student models.User
	if err := s.db.WithContext(ctx).First(&student, studentID).Error; err != nil {
		s.log.Warn("enrollment email skipped", "student_id", studentID, "error", err)
		return
	}
	s.notifier.SendEnrollmentEmail(student.Email, student.Name, course.Title)
}

func ensureNotEnrolled(tx *gorm.DB, studentID, courseID uint) error {
	var count int64
	if err := tx.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error; err != nil {
		return apperr.Wrap(err, "check enrollment")
	}
	if count > 0 {
		return apperr.Conflict("Already enrolled in this course")
	}
	return nil
}

func loadCourseWithLessons(tx *gorm.DB, courseID uint) (*models.Course, error) {
	var course models.Course
	err := tx.Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order(models.LessonOrder) }).
		First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Course not found")
		}
		return nil, apperr.Wrap(err, "load course")
	}
	return &course, nil
}
