package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	// EnrollmentDropped is part of the status set but nothing transitions into it yet.
	EnrollmentDropped = "dropped"
)

// Enrollment tracks a student's enrollment in a course.
// PercentageCompleted and Status are recomputed from Progress on every mutation.
type Enrollment struct {
	gorm.Model
	StudentID           uint            `json:"student_id" gorm:"not null;uniqueIndex:idx_enrollments_student_course"`
	CourseID            uint            `json:"course_id" gorm:"not null;index;uniqueIndex:idx_enrollments_student_course"`
	BatchID             *uint           `json:"batch_id" gorm:"index"`
	EnrolledAt          time.Time       `json:"enrolled_at"`
	PercentageCompleted int             `json:"percentage_completed" gorm:"not null"`
	Status              string          `json:"status" gorm:"not null;index"`
	Progress            []ProgressEntry `json:"progress,omitempty"`
	Student             *User           `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course              *Course         `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Batch               *Batch          `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
}

// ProgressEntry is the completion record of one lesson inside an enrollment
type ProgressEntry struct {
	ID           uint       `json:"-" gorm:"primaryKey"`
	EnrollmentID uint       `json:"-" gorm:"not null;uniqueIndex:idx_progress_enrollment_lesson"`
	LessonID     uint       `json:"lesson_id" gorm:"not null;uniqueIndex:idx_progress_enrollment_lesson"`
	Position     int        `json:"-" gorm:"not null"`
	Completed    bool       `json:"completed" gorm:"not null"`
	CompletedAt  *time.Time `json:"completed_at"`
}

// ProgressOrder keeps entries in the lesson order captured at enrollment
const ProgressOrder = "position ASC, id ASC"
