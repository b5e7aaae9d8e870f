package services

import (
	"context"
	"coursemaster/apperr"
	"coursemaster/models"
	"coursemaster/testutil"
	"coursemaster/utils"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assignmentFixture(t *testing.T, env *testEnv) (instructor, student *models.User, assignment *models.Assignment) {
	t.Helper()
	ctx := context.Background()
	instructor = testutil.CreateUser(t, env.db, "teacher@example.com", models.RoleInstructor)
	student = testutil.CreateUser(t, env.db, "student@example.com", models.RoleStudent)
	course := testutil.CreateCourse(t, env.db, instructor.ID, 2, 0)

	assignment, err := env.assignments.Create(ctx, instructor.ID, instructor.Role, &models.Assignment{
		CourseID: course.ID,
		LessonID: &course.Lessons[0].ID,
		Title:    "Build a CLI",
	})
	require.NoError(t, err)
	_, err = env.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	return instructor, student, assignment
}

func TestResubmissionClearsGrade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor, student, assignment := assignmentFixture(t, env)

	first, err := env.assignments.Submit(ctx, student.ID, assignment.ID, "v1", "")
	require.NoError(t, err)

	graded, err := env.assignments.Grade(ctx, instructor.ID, instructor.Role, first.ID, 80, "good")
	require.NoError(t, err)
	require.NotNil(t, graded.Grade)
	assert.Equal(t, 80, *graded.Grade)
	require.NotNil(t, graded.GradedBy)
	assert.Equal(t, instructor.ID, *graded.GradedBy)

	second, err := env.assignments.Submit(ctx, student.ID, assignment.ID, "v2", "https://example.com/repo")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "v2", second.SubmissionText)
	assert.Nil(t, second.Grade)
	assert.Nil(t, second.GradedAt)
	assert.Nil(t, second.GradedBy)
	assert.Empty(t, second.Feedback)

	var count int64
	env.db.Model(&models.Submission{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSubmitRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, _, assignment := assignmentFixture(t, env)
	outsider := testutil.CreateUser(t, env.db, "outsider@example.com", models.RoleStudent)

	_, err := env.assignments.Submit(ctx, outsider.ID, assignment.ID, "hi", "")
	requireKind(t, err, apperr.KindForbidden)

	_, err = env.assignments.Submit(ctx, outsider.ID, assignment.ID, "", "")
	requireKind(t, err, apperr.KindValidation)

	_, err = env.assignments.Submit(ctx, outsider.ID, 999, "hi", "")
	requireKind(t, err, apperr.KindNotFound)
}

func TestGradeRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor, student, assignment := assignmentFixture(t, env)
	other := testutil.CreateUser(t, env.db, "other@example.com", models.RoleInstructor)
	admin := testutil.CreateUser(t, env.db, "admin@example.com", models.RoleAdmin)
	submission, err := env.assignments.Submit(ctx, student.ID, assignment.ID, "v1", "")
	require.NoError(t, err)

	_, err = env.assignments.Grade(ctx, instructor.ID, instructor.Role, submission.ID, 101, "")
	requireKind(t, err, apperr.KindValidation)

	_, err = env.assignments.Grade(ctx, other.ID, other.Role, submission.ID, 50, "")
	requireKind(t, err, apperr.KindForbidden)

	_, err = env.assignments.Grade(ctx, admin.ID, admin.Role, submission.ID, 0, "see notes")
	require.NoError(t, err)
}

func TestSubmissionListings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor, student, assignment := assignmentFixture(t, env)
	_, err := env.assignments.Submit(ctx, student.ID, assignment.ID, "v1", "")
	require.NoError(t, err)

	page, total, err := env.assignments.Submissions(ctx, instructor.ID, instructor.Role, assignment.ID, utils.Pagination{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, page, 1)
	assert.Equal(t, student.Email, page[0].Student.Email)

	_, _, err = env.assignments.Submissions(ctx, student.ID, student.Role, assignment.ID, utils.Pagination{Page: 1, Limit: 20})
	requireKind(t, err, apperr.KindForbidden)

	mine, err := env.assignments.StudentSubmissions(ctx, student.ID, assignment.CourseID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := env.assignments.StudentSubmissions(ctx, instructor.ID, assignment.CourseID)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	list, err := env.assignments.ListForCourse(ctx, assignment.CourseID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
