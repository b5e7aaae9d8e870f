package services

import (
	"context"
	"coursemaster/apperr"
	"coursemaster/models"
	"coursemaster/utils"

	"gorm.io/gorm"
)

type EnrollmentStats struct {
	Total             int64            `json:"total"`
	StatusCounts      map[string]int64 `json:"status_counts"`
	AverageProgress   float64          `json:"average_progress"`
	RecentEnrollments int64            `json:"recent_enrollments"`
}

type BatchBreakdown struct {
	BatchID     uint   `json:"batch_id"`
	Name        string `json:"name"`
	Enrollments int64  `json:"enrollments"`
	MaxStudents *int   `json:"max_students"`
}

type CourseEnrollmentStats struct {
	EnrollmentStats
	CourseID uint             `json:"course_id"`
	Batches  []BatchBreakdown `json:"batches"`
}

// EnrollmentStats summarises enrollments across the platform
func (s *AnalyticsService) EnrollmentStats(ctx context.Context) (*EnrollmentStats, error) {
	db := s.db.WithContext(ctx)
	stats, err := enrollmentStats(db.Model(&models.Enrollment{}).Session(&gorm.Session{}))
	if err != nil {
		return nil, err
	}
	if err := db.Model(&models.Enrollment{}).
		Where("enrolled_at >= ?", s.now().Add(-recentWindow)).
		Count(&stats.RecentEnrollments).Error; err != nil {
		return nil, apperr.Wrap(err, "count recent enrollments")
	}
	return stats, nil
}

// CourseEnrollments lists a course's enrollments for its owner
func (s *AnalyticsService) CourseEnrollments(ctx context.Context, callerID uint, role string, courseID uint, p utils.Pagination) ([]models.Enrollment, int64, error) {
	db := s.db.WithContext(ctx)
	if _, err := findOwnedCourse(db, courseID, callerID, role); err != nil {
		return nil, 0, err
	}
	return pageEnrollments(db.Model(&models.Enrollment{}).Where("course_id = ?", courseID), p)
}

func (s *AnalyticsService) BatchEnrollments(ctx context.Context, callerID uint, role string, courseID, batchID uint, p utils.Pagination) ([]models.Enrollment, int64, error) {
	db := s.db.WithContext(ctx)
	if _, err := findOwnedBatch(db, courseID, batchID, callerID, role); err != nil {
		return nil, 0, err
	}
	return pageEnrollments(db.Model(&models.Enrollment{}).Where("course_id = ? AND batch_id = ?", courseID, batchID), p)
}

func (s *AnalyticsService) CourseEnrollmentStats(ctx context.Context, callerID uint, role string, courseID uint) (*CourseEnrollmentStats, error) {
	db := s.db.WithContext(ctx)
	if _, err := findOwnedCourse(db, courseID, callerID, role); err != nil {
		return nil, err
	}
	base, err := enrollmentStats(db.Model(&models.Enrollment{}).Where("course_id = ?", courseID).Session(&gorm.Session{}))
	if err != nil {
		return nil, err
	}
	if err := db.Model(&models.Enrollment{}).
		Where("course_id = ? AND enrolled_at >= ?", courseID, s.now().Add(-recentWindow)).
		Count(&base.RecentEnrollments).Error; err != nil {
		return nil, apperr.Wrap(err, "count recent enrollments")
	}

	out := &CourseEnrollmentStats{EnrollmentStats: *base, CourseID: courseID, Batches: []BatchBreakdown{}}
	if err := db.Table("batches").
		Select("batches.id AS batch_id, batches.name AS name, batches.max_students AS max_students, COUNT(enrollments.id) AS enrollments").
		Joins("LEFT JOIN enrollments ON enrollments.batch_id = batches.id").
		Where("batches.course_id = ?", courseID).
		Group("batches.id, batches.name, batches.max_students").
		Order("batches.id ASC").
		Scan(&out.Batches).Error; err != nil {
		return nil, apperr.Wrap(err, "batch breakdown")
	}
	return out, nil
}

func enrollmentStats(query *gorm.DB) (*EnrollmentStats, error) {
	stats := &EnrollmentStats{}
	var err error
	if stats.StatusCounts, err = groupCount(query, "status"); err != nil {
		return nil, err
	}
	for _, n := range stats.StatusCounts {
		stats.Total += n
	}
	if stats.Total > 0 {
		var avg float64
		if err := query.Select("COALESCE(AVG(percentage_completed), 0)").Scan(&avg).Error; err != nil {
			return nil, apperr.Wrap(err, "average progress")
		}
		stats.AverageProgress = roundTo2(avg)
	}
	return stats, nil
}

func pageEnrollments(query *gorm.DB, p utils.Pagination) ([]models.Enrollment, int64, error) {
	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "count enrollments")
	}
	enrollments := []models.Enrollment{}
	if err := query.Preload("Student").Preload("Batch").
		Order("enrolled_at DESC, id DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&enrollments).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "list enrollments")
	}
	return enrollments, total, nil
}
