package services

import (
	"context"
	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/models"
	"time"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

const (
	trendMonths    = 12
	recentWindow   = 30 * 24 * time.Hour
	topCourseLimit = 5
)

// ProgressBuckets are the labels of the course progress distribution, in order
var ProgressBuckets = []string{"0", "1-25", "26-50", "51-75", "76-99", "100"}

type PlatformStats struct {
	TotalUsers       int64            `json:"total_users"`
	UsersByRole      map[string]int64 `json:"users_by_role"`
	TotalCourses     int64            `json:"total_courses"`
	TotalEnrollments int64            `json:"total_enrollments"`
	CompletedOrders  int64            `json:"completed_orders"`
	TotalRevenue     float64          `json:"total_revenue"`
}

type MonthPoint struct {
	Month       string  `json:"month"`
	Enrollments int64   `json:"enrollments"`
	Revenue     float64 `json:"revenue"`
}

type CourseCount struct {
	CourseID    uint   `json:"course_id"`
	Title       string `json:"title"`
	Enrollments int64  `json:"enrollments"`
}

type AssessmentStats struct {
	Submissions  int64   `json:"submissions"`
	Graded       int64   `json:"graded"`
	AverageGrade float64 `json:"average_grade"`
	QuizAttempts int64   `json:"quiz_attempts"`
	PassRate     float64 `json:"pass_rate"`
}

type Dashboard struct {
	Totals            PlatformStats   `json:"totals"`
	RecentEnrollments int64           `json:"recent_enrollments"`
	RecentRevenue     float64         `json:"recent_revenue"`
	Trend             []MonthPoint    `json:"trend"`
	PopularCourses    []CourseCount   `json:"popular_courses"`
	Assessments       AssessmentStats `json:"assessments"`
}

type BucketCount struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

type CourseAnalytics struct {
	CourseID             uint             `json:"course_id"`
	Title                string           `json:"title"`
	Enrollments          int64            `json:"enrollments"`
	StatusCounts         map[string]int64 `json:"status_counts"`
	ProgressDistribution []BucketCount    `json:"progress_distribution"`
	Revenue              float64          `json:"revenue"`
	QuizAttempts         int64            `json:"quiz_attempts"`
	QuizPassRate         float64          `json:"quiz_pass_rate"`
}

type SignupPoint struct {
	Month   string `json:"month"`
	Signups int64  `json:"signups"`
}

type UserAnalytics struct {
	TotalUsers  int64            `json:"total_users"`
	ActiveUsers int64            `json:"active_users"`
	RoleSplit   map[string]int64 `json:"role_split"`
	Signups     []SignupPoint    `json:"signups"`
}

// AnalyticsService answers the read-only reporting endpoints
type AnalyticsService struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewAnalyticsService(db *gorm.DB, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{db: db, log: log, now: time.Now}
}

func (s *AnalyticsService) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	db := s.db.WithContext(ctx)
	stats := &PlatformStats{}

	roles, err := groupCount(db.Model(&models.User{}), "role")
	if err != nil {
		return nil, err
	}
	stats.UsersByRole = roles
	for _, n := range roles {
		stats.TotalUsers += n
	}
	if err := db.Model(&models.Course{}).Count(&stats.TotalCourses).Error; err != nil {
		return nil, apperr.Wrap(err, "count courses")
	}
	if err := db.Model(&models.Enrollment{}).Count(&stats.TotalEnrollments).Error; err != nil {
		return nil, apperr.Wrap(err, "count enrollments")
	}
	completed := db.Model(&models.Order{}).Where("status = ?", models.OrderCompleted).Session(&gorm.Session{})
	if err := completed.Count(&stats.CompletedOrders).Error; err != nil {
		return nil, apperr.Wrap(err, "count orders")
	}
	if stats.TotalRevenue, err = sumAmount(completed); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AnalyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	totals, err := s.PlatformStats(ctx)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	dash := &Dashboard{Totals: *totals}

	since := s.now().Add(-recentWindow)
	if err := db.Model(&models.Enrollment{}).Where("enrolled_at >= ?", since).Count(&dash.RecentEnrollments).Error; err != nil {
		return nil, apperr.Wrap(err, "count recent enrollments")
	}
	if dash.RecentRevenue, err = sumAmount(db.Model(&models.Order{}).
		Where("status = ? AND completed_at >= ?", models.OrderCompleted, since)); err != nil {
		return nil, err
	}

	for _, month := range lastMonths(s.now(), trendMonths) {
		point := MonthPoint{Month: month.Format("2006-01")}
		end := now.With(month).EndOfMonth()
		if err := db.Model(&models.Enrollment{}).
			Where("enrolled_at BETWEEN ? AND ?", month, end).
			Count(&point.Enrollments).Error; err != nil {
			return nil, apperr.Wrap(err, "count monthly enrollments")
		}
		if point.Revenue, err = sumAmount(db.Model(&models.Order{}).
			Where("status = ? AND completed_at BETWEEN ? AND ?", models.OrderCompleted, month, end)); err != nil {
			return nil, err
		}
		dash.Trend = append(dash.Trend, point)
	}

	dash.PopularCourses = []CourseCount{}
	if err := db.Table("enrollments").
		Select("enrollments.course_id AS course_id, courses.title AS title, COUNT(enrollments.id) AS enrollments").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Group("enrollments.course_id, courses.title").
		Order("enrollments DESC, course_id ASC").
		Limit(topCourseLimit).
		Scan(&dash.PopularCourses).Error; err != nil {
		return nil, apperr.Wrap(err, "popular courses")
	}

	if dash.Assessments, err = assessmentStats(db, nil); err != nil {
		return nil, err
	}
	return dash, nil
}

// CourseAnalytics reports on one course for its owner
func (s *AnalyticsService) CourseAnalytics(ctx context.Context, callerID uint, role string, courseID uint) (*CourseAnalytics, error) {
	db := s.db.WithContext(ctx)
	course, err := findOwnedCourse(db, courseID, callerID, role)
	if err != nil {
		return nil, err
	}
	out := &CourseAnalytics{CourseID: course.ID, Title: course.Title}

	if out.StatusCounts, err = groupCount(db.Model(&models.Enrollment{}).Where("course_id = ?", courseID), "status"); err != nil {
		return nil, err
	}
	for _, n := range out.StatusCounts {
		out.Enrollments += n
	}

	var percentages []int
	if err := db.Model(&models.Enrollment{}).Where("course_id = ?", courseID).
		Pluck("percentage_completed", &percentages).Error; err != nil {
		return nil, apperr.Wrap(err, "load progress")
	}
	out.ProgressDistribution = ProgressDistribution(percentages)

	if out.Revenue, err = sumAmount(db.Model(&models.Order{}).
		Where("course_id = ? AND status = ?", courseID, models.OrderCompleted)); err != nil {
		return nil, err
	}

	quizzes := db.Model(&models.Quiz{}).Select("id").Where("course_id = ?", courseID)
	attempts := db.Model(&models.QuizAttempt{}).Where("quiz_id IN (?)", quizzes).Session(&gorm.Session{})
	if out.QuizAttempts, out.QuizPassRate, err = passRate(attempts); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AnalyticsService) UserAnalytics(ctx context.Context) (*UserAnalytics, error) {
	db := s.db.WithContext(ctx)
	out := &UserAnalytics{}

	var err error
	if out.RoleSplit, err = groupCount(db.Model(&models.User{}), "role"); err != nil {
		return nil, err
	}
	for _, n := range out.RoleSplit {
		out.TotalUsers += n
	}
	if err := db.Model(&models.User{}).Where("is_active = ?", true).Count(&out.ActiveUsers).Error; err != nil {
		return nil, apperr.Wrap(err, "count active users")
	}

	for _, month := range lastMonths(s.now(), trendMonths) {
		point := SignupPoint{Month: month.Format("2006-01")}
		if err := db.Model(&models.User{}).
			Where("created_at BETWEEN ? AND ?", month, now.With(month).EndOfMonth()).
			Count(&point.Signups).Error; err != nil {
			return nil, apperr.Wrap(err, "count signups")
		}
		out.Signups = append(out.Signups, point)
	}
	return out, nil
}

// ProgressDistribution buckets completion percentages into ProgressBuckets
func ProgressDistribution(percentages []int) []BucketCount {
	out := make([]BucketCount, len(ProgressBuckets))
	for i, label := range ProgressBuckets {
		out[i].Range = label
	}
	for _, p := range percentages {
		var i int
		switch {
		case p <= 0:
			i = 0
		case p <= 25:
			i = 1
		case p <= 50:
			i = 2
		case p <= 75:
			i = 3
		case p < 100:
			i = 4
		default:
			i = 5
		}
		out[i].Count++
	}
	return out
}

// lastMonths returns the first instant of the n months ending with the month of t, oldest first
func lastMonths(t time.Time, n int) []time.Time {
	current := now.With(t).BeginningOfMonth()
	months := make([]time.Time, n)
	for i := 0; i < n; i++ {
		months[n-1-i] = current.AddDate(0, -i, 0)
	}
	return months
}

func groupCount(query *gorm.DB, column string) (map[string]int64, error) {
	var rows []struct {
		GroupKey string
		Total    int64
	}
	if err := query.Select(column + " AS group_key, COUNT(*) AS total").Group(column).Scan(&rows).Error; err != nil {
		return nil, apperr.Wrap(err, "group by "+column)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.GroupKey] = r.Total
	}
	return out, nil
}

func sumAmount(query *gorm.DB) (float64, error) {
	var total float64
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, apperr.Wrap(err, "sum revenue")
	}
	return total, nil
}

func passRate(attempts *gorm.DB) (int64, float64, error) {
	var total, passed int64
	if err := attempts.Count(&total).Error; err != nil {
		return 0, 0, apperr.Wrap(err, "count attempts")
	}
	if total == 0 {
		return 0, 0, nil
	}
	if err := attempts.Where("passed = ?", true).Count(&passed).Error; err != nil {
		return 0, 0, apperr.Wrap(err, "count passed attempts")
	}
	return total, roundTo2(float64(passed) * 100 / float64(total)), nil
}

// assessmentStats summarises submissions and quiz attempts, optionally for one course
func assessmentStats(db *gorm.DB, courseID *uint) (AssessmentStats, error) {
	var stats AssessmentStats
	submissions := db.Model(&models.Submission{})
	attempts := db.Model(&models.QuizAttempt{})
	if courseID != nil {
		submissions = submissions.Where("assignment_id IN (?)", db.Model(&models.Assignment{}).Select("id").Where("course_id = ?", *courseID))
		attempts = attempts.Where("quiz_id IN (?)", db.Model(&models.Quiz{}).Select("id").Where("course_id = ?", *courseID))
	}
	submissions = submissions.Session(&gorm.Session{})
	attempts = attempts.Session(&gorm.Session{})

	if err := submissions.Count(&stats.Submissions).Error; err != nil {
		return stats, apperr.Wrap(err, "count submissions")
	}
	graded := submissions.Where("grade IS NOT NULL").Session(&gorm.Session{})
	if err := graded.Count(&stats.Graded).Error; err != nil {
		return stats, apperr.Wrap(err, "count graded submissions")
	}
	if stats.Graded > 0 {
		var avg float64
		if err := graded.Select("COALESCE(AVG(grade), 0)").Scan(&avg).Error; err != nil {
			return stats, apperr.Wrap(err, "average grade")
		}
		stats.AverageGrade = roundTo2(avg)
	}

	var err error
	if stats.QuizAttempts, stats.PassRate, err = passRate(attempts); err != nil {
		return stats, err
	}
	return stats, nil
}

func roundTo2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
