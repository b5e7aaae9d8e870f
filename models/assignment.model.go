package models

import (
	"time"

	"gorm.io/gorm"
)

type Assignment struct {
	gorm.Model
	CourseID    uint       `json:"course_id" gorm:"not null;index"`
	LessonID    *uint      `json:"lesson_id"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// Submission is a student's answer to an assignment; one per (student, assignment)
type Submission struct {
	gorm.Model
	StudentID      uint        `json:"student_id" gorm:"not null;uniqueIndex:idx_submissions_student_assignment"`
	AssignmentID   uint        `json:"assignment_id" gorm:"not null;index;uniqueIndex:idx_submissions_student_assignment"`
	SubmissionText string      `json:"submission_text"`
	SubmissionLink string      `json:"submission_link"`
	SubmittedAt    time.Time   `json:"submitted_at"`
	Grade          *int        `json:"grade"`
	Feedback       string      `json:"feedback"`
	GradedAt       *time.Time  `json:"graded_at"`
	GradedBy       *uint       `json:"graded_by"`
	Student        *User       `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Assignment     *Assignment `json:"assignment,omitempty" gorm:"foreignKey:AssignmentID"`
}
