package services

import (
	"context"
	"coursemaster/models"
	"coursemaster/payment"
	"coursemaster/payment/paymenttest"
	"coursemaster/testutil"
	"coursemaster/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressDistribution(t *testing.T) {
	got := ProgressDistribution([]int{0, 1, 25, 26, 50, 51, 75, 76, 99, 100, 100})
	want := []BucketCount{
		{"0", 1}, {"1-25", 2}, {"26-50", 2}, {"51-75", 2}, {"76-99", 2}, {"100", 2},
	}
	assert.Equal(t, want, got)

	empty := ProgressDistribution(nil)
	require.Len(t, empty, len(ProgressBuckets))
	for _, b := range empty {
		assert.Zero(t, b.Count)
	}
}

func TestLastMonths(t *testing.T) {
	months := lastMonths(time.Date(2026, 2, 17, 9, 30, 0, 0, time.UTC), 3)
	require.Len(t, months, 3)
	want := []string{"2025-12-01T00:00:00Z", "2026-01-01T00:00:00Z", "2026-02-01T00:00:00Z"}
	for i, m := range months {
		assert.Equal(t, want[i], m.Format(time.RFC3339))
	}
}

func analyticsFixture(t *testing.T, env *testEnv) (*models.User, *models.Course) {
	t.Helper()
	ctx := context.Background()
	instructor := testutil.CreateUser(t, env.db, "teacher@example.com", models.RoleInstructor)
	buyer := testutil.CreateUser(t, env.db, "buyer@example.com", models.RoleStudent)
	free := testutil.CreateUser(t, env.db, "free@example.com", models.RoleStudent)
	course := testutil.CreateCourse(t, env.db, instructor.ID, 2, 400)

	session, err := env.payments.CreateSession(ctx, buyer, course.ID)
	require.NoError(t, err)
	_, err = env.payments.HandleWebhook(ctx, paymenttest.Hook(session.TransactionID, payment.StatusCompleted))
	require.NoError(t, err)

	enrollment, err := env.enrollments.Enroll(ctx, free.ID, course.ID)
	require.NoError(t, err)
	for _, lesson := range course.Lessons {
		_, err := env.enrollments.CompleteLesson(ctx, free.ID, enrollment.ID, lesson.ID)
		require.NoError(t, err)
	}
	return instructor, course
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	_, course := analyticsFixture(t, env)

	dash, err := env.analytics.Dashboard(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, dash.Totals.TotalUsers)
	assert.EqualValues(t, 2, dash.Totals.UsersByRole[models.RoleStudent])
	assert.EqualValues(t, 1, dash.Totals.TotalCourses)
	assert.EqualValues(t, 2, dash.Totals.TotalEnrollments)
	assert.EqualValues(t, 1, dash.Totals.CompletedOrders)
	assert.Equal(t, 400.0, dash.Totals.TotalRevenue)
	assert.EqualValues(t, 2, dash.RecentEnrollments)
	assert.Equal(t, 400.0, dash.RecentRevenue)

	require.Len(t, dash.Trend, trendMonths)
	current := dash.Trend[trendMonths-1]
	assert.EqualValues(t, 2, current.Enrollments)
	assert.Equal(t, 400.0, current.Revenue)

	require.Len(t, dash.PopularCourses, 1)
	assert.Equal(t, course.ID, dash.PopularCourses[0].CourseID)
	assert.EqualValues(t, 2, dash.PopularCourses[0].Enrollments)
}

func TestCourseAnalytics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor, course := analyticsFixture(t, env)

	out, err := env.analytics.CourseAnalytics(ctx, instructor.ID, instructor.Role, course.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, out.Enrollments)
	assert.EqualValues(t, 1, out.StatusCounts[models.EnrollmentActive])
	assert.EqualValues(t, 1, out.StatusCounts[models.EnrollmentCompleted])
	assert.EqualValues(t, 1, out.ProgressDistribution[0].Count)
	assert.EqualValues(t, 1, out.ProgressDistribution[5].Count)
	assert.Equal(t, 400.0, out.Revenue)
	assert.Zero(t, out.QuizAttempts)

	stats, err := env.analytics.CourseEnrollmentStats(ctx, instructor.ID, instructor.Role, course.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.Equal(t, 50.0, stats.AverageProgress)
	assert.Empty(t, stats.Batches)

	list, total, err := env.analytics.CourseEnrollments(ctx, instructor.ID, instructor.Role, course.ID, utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)
}

func TestUserAnalytics(t *testing.T) {
	env := newTestEnv(t)
	analyticsFixture(t, env)

	out, err := env.analytics.UserAnalytics(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, out.TotalUsers)
	assert.EqualValues(t, 3, out.ActiveUsers)
	assert.EqualValues(t, 1, out.RoleSplit[models.RoleInstructor])
	require.Len(t, out.Signups, trendMonths)
	assert.EqualValues(t, 3, out.Signups[trendMonths-1].Signups)
}
