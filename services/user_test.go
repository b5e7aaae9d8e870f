package services

import (
	"context"
	"coursemaster/apperr"
	"coursemaster/models"
	"coursemaster/testutil"
	"coursemaster/utils"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Register(ctx, RegisterInput{Name: "Ada", Email: " Ada@Example.com ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret123", user.Password)
	assert.Equal(t, 1, env.notifier.count("welcome"))

	_, err = env.users.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret123"})
	requireKind(t, err, apperr.KindConflict)

	_, err = env.users.Register(ctx, RegisterInput{Name: "Eve", Email: "eve@example.com", Password: "secret123", Role: models.RoleAdmin})
	requireKind(t, err, apperr.KindValidation)

	logged, err := env.users.Login(ctx, "ADA@example.com", "secret123")
	require.NoError(t, err)
	require.NotNil(t, logged.LastLoginAt)

	_, err = env.users.Login(ctx, "ada@example.com", "wrong")
	requireKind(t, err, apperr.KindUnauthorized)
	_, err = env.users.Login(ctx, "nobody@example.com", "secret123")
	requireKind(t, err, apperr.KindUnauthorized)
}

func TestInactiveUserCannotLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, env.db, "admin@example.com", models.RoleAdmin)
	user := testutil.CreateUser(t, env.db, "user@example.com", models.RoleStudent)

	inactive := false
	_, err := env.users.Update(ctx, admin.ID, user.ID, UserInput{Name: "User", Email: user.Email, Role: models.RoleStudent, IsActive: &inactive})
	require.NoError(t, err)

	_, err = env.users.Login(ctx, user.Email, "secret123")
	requireKind(t, err, apperr.KindForbidden)
	_, err = env.users.Active(ctx, user.ID)
	requireKind(t, err, apperr.KindForbidden)
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, env.db, "admin@example.com", models.RoleAdmin)

	created, err := env.users.Create(ctx, UserInput{Name: "Grace", Email: "grace@example.com", Password: "secret123", Role: models.RoleInstructor})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	_, err = env.users.Create(ctx, UserInput{Name: "No Pass", Email: "np@example.com", Role: models.RoleStudent})
	requireKind(t, err, apperr.KindValidation)

	instructors, total, err := env.users.List(ctx, UserFilter{Role: models.RoleInstructor}, utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, created.ID, instructors[0].ID)

	found, _, err := env.users.List(ctx, UserFilter{Search: "GRACE"}, utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = env.users.Update(ctx, admin.ID, admin.ID, UserInput{Name: "Me", Email: admin.Email, Role: models.RoleStudent})
	requireKind(t, err, apperr.KindBadRequest)

	require.NoError(t, env.users.ResetPassword(ctx, created.ID, "newpass1"))
	_, err = env.users.Login(ctx, created.Email, "newpass1")
	require.NoError(t, err)
	requireKind(t, env.users.ResetPassword(ctx, created.ID, "123"), apperr.KindValidation)
	requireKind(t, env.users.ResetPassword(ctx, 999, "longenough"), apperr.KindNotFound)
}

func TestDeleteUserRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, env.db, "admin@example.com", models.RoleAdmin)
	instructor := testutil.CreateUser(t, env.db, "teacher@example.com", models.RoleInstructor)
	enrolled := testutil.CreateUser(t, env.db, "enrolled@example.com", models.RoleStudent)
	idle := testutil.CreateUser(t, env.db, "idle@example.com", models.RoleStudent)
	course := testutil.CreateCourse(t, env.db, instructor.ID, 1, 250)
	_, err := env.enrollments.Enroll(ctx, enrolled.ID, course.ID)
	require.NoError(t, err)
	_, err = env.payments.CreateSession(ctx, idle, course.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		userID uint
		kind   apperr.Kind
	}{
		{"own account", admin.ID, apperr.KindBadRequest},
		{"has enrollments", enrolled.ID, apperr.KindConflict},
		{"owns courses", instructor.ID, apperr.KindConflict},
		{"missing", 999, apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireKind(t, env.users.Delete(ctx, admin.ID, tt.userID), tt.kind)
		})
	}

	require.NoError(t, env.users.Delete(ctx, admin.ID, idle.ID))
	var orders int64
	env.db.Unscoped().Model(&models.Order{}).Where("user_id = ?", idle.ID).Count(&orders)
	assert.Zero(t, orders)
	_, err = env.users.Get(ctx, idle.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestUserDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := testutil.CreateUser(t, env.db, "teacher@example.com", models.RoleInstructor)
	student := testutil.CreateUser(t, env.db, "student@example.com", models.RoleStudent)
	course := testutil.CreateCourse(t, env.db, instructor.ID, 1, 0)
	_, err := env.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	details, err := env.users.Details(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, details.User.ID)
	require.Len(t, details.Enrollments, 1)
	assert.Equal(t, course.ID, details.Enrollments[0].Course.ID)
	assert.Empty(t, details.Orders)
	assert.Empty(t, details.Submissions)
	assert.Empty(t, details.QuizAttempts)
}

func TestLoginHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "ada@example.com", models.RoleStudent)
	other := testutil.CreateUser(t, env.db, "bob@example.com", models.RoleStudent)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		env.users.now = fixedClock(base.Add(time.Duration(i) * time.Hour))
		env.users.RecordLogin(ctx, user.ID, "10.0.0.1", "curl/8.0")
	}
	env.users.RecordLogin(ctx, other.ID, "10.0.0.2", strings.Repeat("x", 300))

	entries, total, err := env.users.LoginHistory(ctx, user.ID, utils.Pagination{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].LoggedInAt.After(entries[1].LoggedInAt))

	entries, _, err = env.users.LoginHistory(ctx, other.ID, utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Device, 255)
}
