package services

import (
	"coursemaster/apperr"
	"coursemaster/models"
	"errors"

	"gorm.io/gorm"
)

func findCourse(db *gorm.DB, courseID uint) (*models.Course, error) {
	var course models.Course
	if err := db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Course not found")
		}
		return nil, apperr.Wrap(err, "load course")
	}
	return &course, nil
}

// findOwnedCourse loads a course and checks that the caller may manage it
func findOwnedCourse(db *gorm.DB, courseID, callerID uint, role string) (*models.Course, error) {
	course, err := findCourse(db, courseID)
	if err != nil {
		return nil, err
	}
	if !course.OwnedBy(callerID, role) {
		return nil, apperr.Forbidden("You do not have permission to manage this course")
	}
	return course, nil
}

func ensureLessonInCourse(db *gorm.DB, courseID, lessonID uint) error {
	var count int64
	if err := db.Model(&models.Lesson{}).Where("id = ? AND course_id = ?", lessonID, courseID).Count(&count).Error; err != nil {
		return apperr.Wrap(err, "check lesson")
	}
	if count == 0 {
		return apperr.NotFound("Lesson not found in this course")
	}
	return nil
}
