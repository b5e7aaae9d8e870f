package testutil

import (
	"coursemaster/database"
	"coursemaster/logger"
	"coursemaster/models"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB returns a migrated in-memory sqlite database private to the test.
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:coursemaster_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("failed to get test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db, logger.Nop()); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func Logger() *logger.Logger {
	return logger.Nop()
}

// CreateUser inserts an active user with password "secret123".
func CreateUser(tb testing.TB, db *gorm.DB, email, role string) *models.User {
	tb.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	user := &models.User{Name: email, Email: email, Password: string(hash), Role: role, IsActive: true}
	if err := db.Create(user).Error; err != nil {
		tb.Fatalf("create user: %v", err)
	}
	return user
}

// CreateCourse inserts a course with the given number of lessons, in order.
func CreateCourse(tb testing.TB, db *gorm.DB, instructorID uint, lessons int, price float64) *models.Course {
	tb.Helper()
	course := &models.Course{
		Title:        "Go in Practice",
		Description:  "Building services",
		InstructorID: instructorID,
		Price:        price,
		Currency:     "BDT",
		Category:     "programming",
	}
	for i := 0; i < lessons; i++ {
		course.Lessons = append(course.Lessons, models.Lesson{Title: fmt.Sprintf("Lesson %d", i+1), Order: i + 1})
	}
	if err := db.Create(course).Error; err != nil {
		tb.Fatalf("create course: %v", err)
	}
	return course
}

// CreateBatch inserts a batch running from start to end with an optional capacity.
func CreateBatch(tb testing.TB, db *gorm.DB, courseID uint, start, end time.Time, max *int) *models.Batch {
	tb.Helper()
	batch := &models.Batch{CourseID: courseID, Name: "Evening", StartDate: start, EndDate: end, MaxStudents: max}
	if err := db.Create(batch).Error; err != nil {
		tb.Fatalf("create batch: %v", err)
	}
	return batch
}

func IntPtr(v int) *int { return &v }
