package services

import (
	"context"
	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/models"
	"errors"
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScoreQuiz grades answers against the stored questions.
// An answer is correct when an option with exactly the selected text is flagged correct.
// Each question counts at most once; answers to unknown question indexes are ignored.
func ScoreQuiz(questions []models.QuizQuestion, answers []models.QuizAnswer, passingScore int) (int, bool) {
	if len(questions) == 0 {
		return 0, passingScore <= 0
	}

	answered := make(map[int]bool, len(answers))
	correct := 0
	for _, a := range answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= len(questions) || answered[a.QuestionIndex] {
			continue
		}
		answered[a.QuestionIndex] = true
		for _, opt := range questions[a.QuestionIndex].Options {
			if opt.Text == a.SelectedOption && opt.IsCorrect {
				correct++
				break
			}
		}
	}

	score := int(math.Round(100 * float64(correct) / float64(len(questions))))
	return score, score >= passingScore
}

type QuizService struct {
	db          *gorm.DB
	log         *logger.Logger
	enrollments *EnrollmentService
	now         func() time.Time
}

func NewQuizService(db *gorm.DB, log *logger.Logger, enrollments *EnrollmentService) *QuizService {
	return &QuizService{db: db, log: log, enrollments: enrollments, now: time.Now}
}

// CreateQuiz adds a quiz to a course the caller owns
func (s *QuizService) CreateQuiz(ctx context.Context, callerID uint, role string, quiz *models.Quiz) (*models.Quiz, error) {
	course, err := findCourse(s.db.WithContext(ctx), quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if !course.OwnedBy(callerID, role) {
		return nil, apperr.Forbidden("Not authorized to add quizzes to this course")
	}
	if quiz.LessonID != nil {
		if err := ensureLessonInCourse(s.db.WithContext(ctx), course.ID, *quiz.LessonID); err != nil {
			return nil, err
		}
	}
	if err := s.db.WithContext(ctx).Create(quiz).Error; err != nil {
		return nil, apperr.Wrap(err, "create quiz")
	}
	return quiz, nil
}

// Get loads a quiz and reports whether the caller may see the answer key
func (s *QuizService) Get(ctx context.Context, callerID uint, role string, quizID uint) (*models.Quiz, bool, error) {
	quiz, err := s.findQuiz(ctx, quizID)
	if err != nil {
		return nil, false, err
	}
	course, err := findCourse(s.db.WithContext(ctx), quiz.CourseID)
	if err != nil {
		return nil, false, err
	}
	return quiz, course.OwnedBy(callerID, role), nil
}

// Submit scores the answers and stores an immutable attempt.
// Only students enrolled in the quiz's course may submit.
func (s *QuizService) Submit(ctx context.Context, studentID, quizID uint, answers []models.QuizAnswer) (*models.QuizAttempt, error) {
	quiz, err := s.findQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.enrollments.IsEnrolled(ctx, studentID, quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperr.Forbidden("Enroll in the course to take this quiz")
	}

	score, passed := ScoreQuiz(quiz.Questions.Data(), answers, quiz.PassingScore)
	attempt := &models.QuizAttempt{
		StudentID:   studentID,
		QuizID:      quiz.ID,
		Answers:     datatypes.NewJSONType(answers),
		Score:       score,
		Passed:      passed,
		AttemptedAt: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, apperr.Wrap(err, "create quiz attempt")
	}
	s.log.Info("quiz attempt scored", "quiz_id", quiz.ID, "student_id", studentID, "score", score, "passed", passed)
	return attempt, nil
}

// Attempts lists every attempt on a quiz for the course owner
func (s *QuizService) Attempts(ctx context.Context, callerID uint, role string, quizID uint) ([]models.QuizAttempt, error) {
	quiz, err := s.findQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	course, err := findCourse(s.db.WithContext(ctx), quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if !course.OwnedBy(callerID, role) {
		return nil, apperr.Forbidden("Not authorized to view attempts for this quiz")
	}

	attempts := []models.QuizAttempt{}
	if err := s.db.WithContext(ctx).
		Preload("Student").
		Where("quiz_id = ?", quizID).
		Order("score DESC, attempted_at ASC").
		Find(&attempts).Error; err != nil {
		return nil, apperr.Wrap(err, "list quiz attempts")
	}
	return attempts, nil
}

// BestAttempt returns the student's highest-scoring attempt, earliest first on ties
func (s *QuizService) BestAttempt(ctx context.Context, studentID, quizID uint) (*models.QuizAttempt, error) {
	if _, err := s.findQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	var attempt models.QuizAttempt
	err := s.db.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Order("score DESC, attempted_at ASC, id ASC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("No attempts found")
		}
		return nil, apperr.Wrap(err, "load best attempt")
	}
	return &attempt, nil
}

// ListForCourse returns the quizzes of a course to enrolled students and the owner
func (s *QuizService) ListForCourse(ctx context.Context, callerID uint, role string, courseID uint) ([]models.Quiz, bool, error) {
	course, err := findCourse(s.db.WithContext(ctx), courseID)
	if err != nil {
		return nil, false, err
	}
	owner := course.OwnedBy(callerID, role)
	if !owner {
		enrolled, err := s.enrollments.IsEnrolled(ctx, callerID, courseID)
		if err != nil {
			return nil, false, err
		}
		if !enrolled {
			return nil, false, apperr.Forbidden("Enroll in the course to view its quizzes")
		}
	}

	quizzes := []models.Quiz{}
	if err := s.db.WithContext(ctx).Where("course_id = ?", courseID).Order("id ASC").Find(&quizzes).Error; err != nil {
		return nil, false, apperr.Wrap(err, "list quizzes")
	}
	return quizzes, owner, nil
}

func (s *QuizService) findQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.db.WithContext(ctx).First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Quiz not found")
		}
		return nil, apperr.Wrap(err, "load quiz")
	}
	return &quiz, nil
}

// SanitizedQuestion is a question without the answer key
type SanitizedQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// SanitizedQuiz is the student view of a quiz
type SanitizedQuiz struct {
	ID           uint                `json:"id"`
	CourseID     uint                `json:"course_id"`
	LessonID     *uint               `json:"lesson_id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	PassingScore int                 `json:"passing_score"`
	Questions    []SanitizedQuestion `json:"questions"`
}

// Sanitize hides correctness flags and explanations
func Sanitize(q *models.Quiz) SanitizedQuiz {
	out := SanitizedQuiz{
		ID:           q.ID,
		CourseID:     q.CourseID,
		LessonID:     q.LessonID,
		Title:        q.Title,
		Description:  q.Description,
		PassingScore: q.PassingScore,
		Questions:    []SanitizedQuestion{},
	}
	for _, question := range q.Questions.Data() {
		options := make([]string, 0, len(question.Options))
		for _, opt := range question.Options {
			options = append(options, opt.Text)
		}
		out.Questions = append(out.Questions, SanitizedQuestion{Question: question.Question, Options: options})
	}
	return out
}
