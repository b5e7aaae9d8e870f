package services

import (
	"context"
	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/models"
	"coursemaster/utils"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LessonInput struct {
	ID       *uint  `json:"id"`
	Title    string `json:"title" validate:"required,max=200"`
	VideoURL string `json:"video_url" validate:"omitempty,url"`
	Content  string `json:"content"`
	Order    *int   `json:"order" validate:"omitempty,min=0"`
}

type BatchInput struct {
	Name        string    `json:"name" validate:"required,max=120"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	MaxStudents *int      `json:"max_students" validate:"omitempty,min=1"`
}

type CourseInput struct {
	Title        string        `json:"title" validate:"required,min=3,max=200"`
	Description  string        `json:"description" validate:"max=5000"`
	Price        float64       `json:"price" validate:"min=0"`
	Currency     string        `json:"currency" validate:"omitempty,len=3"`
	Category     string        `json:"category" validate:"max=100"`
	Tags         []string      `json:"tags" validate:"max=20,dive,max=40"`
	InstructorID *uint         `json:"instructor_id"`
	Lessons      []LessonInput `json:"lessons" validate:"dive"`
	Batches      []BatchInput  `json:"batches" validate:"dive"`
}

// CatalogFilter narrows the public course list
type CatalogFilter struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
}

type CourseService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseService(db *gorm.DB, log *logger.Logger) *CourseService {
	return &CourseService{db: db, log: log}
}

// List returns a page of the catalog
func (s *CourseService) List(ctx context.Context, f CatalogFilter, p utils.Pagination) ([]models.Course, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Course{})
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "count courses")
	}

	order := "created_at DESC, id DESC"
	switch f.Sort {
	case "price_asc":
		order = "price ASC, id ASC"
	case "price_desc":
		order = "price DESC, id DESC"
	}

	courses := []models.Course{}
	if err := query.
		Preload("Instructor").
		Order(order).
		Offset(p.Offset()).Limit(p.Limit).
		Find(&courses).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "list courses")
	}
	return courses, total, nil
}

// Detail loads a course with its instructor, ordered lessons and batches
func (s *CourseService) Detail(ctx context.Context, courseID uint) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order(models.LessonOrder) }).
		Preload("Batches", func(db *gorm.DB) *gorm.DB { return db.Order("start_date ASC, id ASC") }).
		First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Course not found")
		}
		return nil, apperr.Wrap(err, "load course")
	}
	return &course, nil
}

// DetailForEdit is Detail restricted to the course owner
func (s *CourseService) DetailForEdit(ctx context.Context, callerID uint, role string, courseID uint) (*models.Course, error) {
	course, err := s.Detail(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.OwnedBy(callerID, role) {
		return nil, apperr.Forbidden("You do not have permission to manage this course")
	}
	return course, nil
}

// Create stores a course with its lessons and batches. Admins may assign another instructor.
func (s *CourseService) Create(ctx context.Context, callerID uint, role string, in CourseInput) (*models.Course, error) {
	instructorID := callerID
	if in.InstructorID != nil && role == models.RoleAdmin {
		if err := s.ensureInstructor(ctx, *in.InstructorID); err != nil {
			return nil, err
		}
		instructorID = *in.InstructorID
	}

	course := &models.Course{
		Title:        in.Title,
		Description:  in.Description,
		InstructorID: instructorID,
		Price:        in.Price,
		Currency:     strings.ToUpper(in.Currency),
		Category:     in.Category,
		Tags:         datatypes.JSONSlice[string](normalizeTags(in.Tags)),
	}
	for i, l := range in.Lessons {
		course.Lessons = append(course.Lessons, lessonFromInput(l, i))
	}
	for _, b := range in.Batches {
		course.Batches = append(course.Batches, models.Batch{
			Name:        b.Name,
			StartDate:   b.StartDate,
			EndDate:     b.EndDate,
			MaxStudents: b.MaxStudents,
		})
	}

	if err := s.db.WithContext(ctx).Create(course).Error; err != nil {
		return nil, apperr.Wrap(err, "create course")
	}
	s.log.Info("course created", "course_id", course.ID, "instructor_id", instructorID)
	return s.Detail(ctx, course.ID)
}

// Update replaces the course fields and lesson list. Lessons named by id keep
// their identity; lessons left out are removed. Batches are managed separately.
// Existing enrollments keep the progress list captured when they were created.
func (s *CourseService) Update(ctx context.Context, callerID uint, role string, courseID uint, in CourseInput) (*models.Course, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := findOwnedCourse(tx, courseID, callerID, role)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"title":       in.Title,
			"description": in.Description,
			"price":       in.Price,
			"currency":    strings.ToUpper(in.Currency),
			"category":    in.Category,
			"tags":        datatypes.JSONSlice[string](normalizeTags(in.Tags)),
		}
		if in.InstructorID != nil && role == models.RoleAdmin {
			if err := ensureInstructorTx(tx, *in.InstructorID); err != nil {
				return err
			}
			updates["instructor_id"] = *in.InstructorID
		}
		if err := tx.Model(course).Updates(updates).Error; err != nil {
			return apperr.Wrap(err, "update course")
		}

		var existing []models.Lesson
		if err := tx.Where("course_id = ?", courseID).Find(&existing).Error; err != nil {
			return apperr.Wrap(err, "load lessons")
		}
		known := make(map[uint]bool, len(existing))
		for _, l := range existing {
			known[l.ID] = true
		}

		keep := make(map[uint]bool, len(in.Lessons))
		for i, l := range in.Lessons {
			lesson := lessonFromInput(l, i)
			lesson.CourseID = courseID
			if l.ID != nil && known[*l.ID] {
				keep[*l.ID] = true
				if err := tx.Model(&models.Lesson{}).Where("id = ?", *l.ID).Updates(map[string]interface{}{
					"title":      lesson.Title,
					"video_url":  lesson.VideoURL,
					"content":    lesson.Content,
					"sort_order": lesson.Order,
				}).Error; err != nil {
					return apperr.Wrap(err, "update lesson")
				}
				continue
			}
			if err := tx.Create(&lesson).Error; err != nil {
				return apperr.Wrap(err, "create lesson")
			}
		}

		var drop []uint
		for _, l := range existing {
			if !keep[l.ID] {
				drop = append(drop, l.ID)
			}
		}
		if len(drop) > 0 {
			if err := tx.Unscoped().Where("id IN ?", drop).Delete(&models.Lesson{}).Error; err != nil {
				return apperr.Wrap(err, "delete lessons")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("course updated", "course_id", courseID)
	return s.Detail(ctx, courseID)
}

// Delete removes the course and everything that belongs to it.
// Orders are kept as payment history.
func (s *CourseService) Delete(ctx context.Context, callerID uint, role string, courseID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOwnedCourse(tx, courseID, callerID, role); err != nil {
			return err
		}
		tx = tx.Unscoped().Session(&gorm.Session{})

		enrollments := tx.Model(&models.Enrollment{}).Select("id").Where("course_id = ?", courseID)
		assignments := tx.Model(&models.Assignment{}).Select("id").Where("course_id = ?", courseID)
		quizzes := tx.Model(&models.Quiz{}).Select("id").Where("course_id = ?", courseID)

		steps := []struct {
			what  string
			query *gorm.DB
			model interface{}
		}{
			{"progress", tx.Where("enrollment_id IN (?)", enrollments), &models.ProgressEntry{}},
			{"enrollments", tx.Where("course_id = ?", courseID), &models.Enrollment{}},
			{"submissions", tx.Where("assignment_id IN (?)", assignments), &models.Submission{}},
			{"assignments", tx.Where("course_id = ?", courseID), &models.Assignment{}},
			{"quiz attempts", tx.Where("quiz_id IN (?)", quizzes), &models.QuizAttempt{}},
			{"quizzes", tx.Where("course_id = ?", courseID), &models.Quiz{}},
			{"lessons", tx.Where("course_id = ?", courseID), &models.Lesson{}},
			{"batches", tx.Where("course_id = ?", courseID), &models.Batch{}},
			{"course", tx.Where("id = ?", courseID), &models.Course{}},
		}
		for _, step := range steps {
			if err := step.query.Delete(step.model).Error; err != nil {
				return apperr.Wrap(err, "delete "+step.what)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("course deleted", "course_id", courseID)
	return nil
}

func (s *CourseService) ensureInstructor(ctx context.Context, userID uint) error {
	return ensureInstructorTx(s.db.WithContext(ctx), userID)
}

func ensureInstructorTx(db *gorm.DB, userID uint) error {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Instructor not found")
		}
		return apperr.Wrap(err, "load instructor")
	}
	if user.Role != models.RoleInstructor && user.Role != models.RoleAdmin {
		return apperr.Validation(map[string]string{"instructor_id": "User is not an instructor!"})
	}
	return nil
}

func lessonFromInput(in LessonInput, index int) models.Lesson {
	order := index + 1
	if in.Order != nil {
		order = *in.Order
	}
	return models.Lesson{Title: in.Title, VideoURL: in.VideoURL, Content: in.Content, Order: order}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
