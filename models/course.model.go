package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course represents a catalog entry owned by an instructor
type Course struct {
	gorm.Model
	Title        string                      `json:"title" gorm:"not null;index"`
	Description  string                      `json:"description"`
	InstructorID uint                        `json:"instructor_id" gorm:"not null;index"`
	Instructor   *User                       `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
	Price        float64                     `json:"price" gorm:"not null;index"`
	Currency     string                      `json:"currency"`
	Category     string                      `json:"category" gorm:"index"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	Lessons      []Lesson                    `json:"lessons,omitempty"`
	Batches      []Batch                     `json:"batches,omitempty"`
}

// OwnedBy reports whether the user may manage the course
func (c *Course) OwnedBy(userID uint, role string) bool {
	return role == RoleAdmin || c.InstructorID == userID
}

// Lesson is one ordered unit of a course
type Lesson struct {
	gorm.Model
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Title    string `json:"title" gorm:"not null"`
	VideoURL string `json:"video_url"`
	Content  string `json:"content"`
	Order    int    `json:"order" gorm:"column:sort_order"`
}

// Batch is a scheduled session of a course, optionally capacity-limited
type Batch struct {
	gorm.Model
	CourseID    uint      `json:"course_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	MaxStudents *int      `json:"max_students"`
}

// ActiveAt reports whether t falls inside the batch schedule window (inclusive)
func (b *Batch) ActiveAt(t time.Time) bool {
	return !t.Before(b.StartDate) && !t.After(b.EndDate)
}

// LessonOrder is the ordering clause for a course's lessons
const LessonOrder = "sort_order ASC, id ASC"
