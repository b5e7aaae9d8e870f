package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultPassingScore = 60

type QuizOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type QuizQuestion struct {
	Question    string       `json:"question"`
	Options     []QuizOption `json:"options"`
	Explanation string       `json:"explanation,omitempty"`
}

type Quiz struct {
	gorm.Model
	CourseID     uint                               `json:"course_id" gorm:"not null;index"`
	LessonID     *uint                              `json:"lesson_id"`
	Title        string                             `json:"title" gorm:"not null"`
	Description  string                             `json:"description"`
	Questions    datatypes.JSONType[[]QuizQuestion] `json:"questions"`
	PassingScore int                                `json:"passing_score" gorm:"not null"`
}

type QuizAnswer struct {
	QuestionIndex  int    `json:"question_index"`
	SelectedOption string `json:"selected_option"`
}

// QuizAttempt is immutable once stored; score and pass flag are frozen at submission
type QuizAttempt struct {
	gorm.Model
	StudentID   uint                             `json:"student_id" gorm:"not null;index:idx_attempts_student_quiz"`
	QuizID      uint                             `json:"quiz_id" gorm:"not null;index;index:idx_attempts_student_quiz"`
	Answers     datatypes.JSONType[[]QuizAnswer] `json:"answers"`
	Score       int                              `json:"score"`
	Passed      bool                             `json:"passed"`
	AttemptedAt time.Time                        `json:"attempted_at"`
	Student     *User                            `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}
