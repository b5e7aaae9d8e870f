package services

import (
	"context"
	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/models"
	"errors"
	"time"

	"gorm.io/gorm"
)

type BatchService struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewBatchService(db *gorm.DB, log *logger.Logger) *BatchService {
	return &BatchService{db: db, log: log, now: time.Now}
}

func (s *BatchService) Create(ctx context.Context, callerID uint, role string, courseID uint, in BatchInput) (*models.Batch, error) {
	db := s.db.WithContext(ctx)
	if _, err := findOwnedCourse(db, courseID, callerID, role); err != nil {
		return nil, err
	}
	batch := &models.Batch{
		CourseID:    courseID,
		Name:        in.Name,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		MaxStudents: in.MaxStudents,
	}
	if err := db.Create(batch).Error; err != nil {
		return nil, apperr.Wrap(err, "create batch")
	}
	s.log.Info("batch created", "batch_id", batch.ID, "course_id", courseID)
	return batch, nil
}

// List returns the batches of a course. Callers who cannot manage the course
// only see batches running right now.
func (s *BatchService) List(ctx context.Context, callerID uint, role string, courseID uint) ([]models.Batch, error) {
	db := s.db.WithContext(ctx)
	course, err := findCourse(db, courseID)
	if err != nil {
		return nil, err
	}

	query := db.Where("course_id = ?", courseID)
	if !course.OwnedBy(callerID, role) {
		now := s.now()
		query = query.Where("start_date <= ? AND end_date >= ?", now, now)
	}
	batches := []models.Batch{}
	if err := query.Order("start_date ASC, id ASC").Find(&batches).Error; err != nil {
		return nil, apperr.Wrap(err, "list batches")
	}
	return batches, nil
}

func (s *BatchService) Update(ctx context.Context, callerID uint, role string, courseID, batchID uint, in BatchInput) (*models.Batch, error) {
	var batch *models.Batch
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if batch, err = findOwnedBatch(tx, courseID, batchID, callerID, role); err != nil {
			return err
		}

		if in.MaxStudents != nil {
			var taken int64
			if err := tx.Model(&models.Enrollment{}).Where("batch_id = ?", batchID).Count(&taken).Error; err != nil {
				return apperr.Wrap(err, "count batch enrollments")
			}
			if int64(*in.MaxStudents) < taken {
				return apperr.Validation(map[string]string{"max_students": "Cannot be lower than the current number of enrolled students!"})
			}
		}

		batch.Name = in.Name
		batch.StartDate = in.StartDate
		batch.EndDate = in.EndDate
		batch.MaxStudents = in.MaxStudents
		if err := tx.Select("name", "start_date", "end_date", "max_students").Save(batch).Error; err != nil {
			return apperr.Wrap(err, "update batch")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Delete removes a batch that nobody is enrolled in
func (s *BatchService) Delete(ctx context.Context, callerID uint, role string, courseID, batchID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batch, err := findOwnedBatch(tx, courseID, batchID, callerID, role)
		if err != nil {
			return err
		}
		var taken int64
		if err := tx.Model(&models.Enrollment{}).Where("batch_id = ?", batchID).Count(&taken).Error; err != nil {
			return apperr.Wrap(err, "count batch enrollments")
		}
		if taken > 0 {
			return apperr.Conflict("Cannot delete a batch with enrolled students")
		}
		if err := tx.Unscoped().Delete(batch).Error; err != nil {
			return apperr.Wrap(err, "delete batch")
		}
		s.log.Info("batch deleted", "batch_id", batchID, "course_id", courseID)
		return nil
	})
}

// Students lists the enrollments of a batch with their students
func (s *BatchService) Students(ctx context.Context, callerID uint, role string, courseID, batchID uint) ([]models.Enrollment, error) {
	db := s.db.WithContext(ctx)
	if _, err := findOwnedBatch(db, courseID, batchID, callerID, role); err != nil {
		return nil, err
	}
	enrollments := []models.Enrollment{}
	if err := db.Preload("Student").
		Where("course_id = ? AND batch_id = ?", courseID, batchID).
		Order("enrolled_at ASC, id ASC").
		Find(&enrollments).Error; err != nil {
		return nil, apperr.Wrap(err, "list batch students")
	}
	return enrollments, nil
}

func findOwnedBatch(db *gorm.DB, courseID, batchID, callerID uint, role string) (*models.Batch, error) {
	if _, err := findOwnedCourse(db, courseID, callerID, role); err != nil {
		return nil, err
	}
	var batch models.Batch
	if err := db.Where("id = ? AND course_id = ?", batchID, courseID).First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Batch not found")
		}
		return nil, apperr.Wrap(err, "load batch")
	}
	return &batch, nil
}
