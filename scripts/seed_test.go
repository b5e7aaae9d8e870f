package main

import (
	"coursemaster/models"
	"coursemaster/services"
	"coursemaster/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCourseFromRow(t *testing.T) {
	header := map[string]int{
		"title": 0, "description": 1, "price": 2, "currency": 3,
		"category": 4, "tags": 5, "instructor_email": 6, "lessons": 7,
	}

	tests := []struct {
		name      string
		row       []string
		want      services.CourseInput
		wantEmail string
		wantErr   string
	}{
		{
			name: "full row",
			row:  []string{" Go Basics ", "Intro", "1500.50", "bdt", "Programming", "go| backend ||", " Teacher@Example.com ", "Setup|Syntax| "},
			want: services.CourseInput{
				Title:       "Go Basics",
				Description: "Intro",
				Price:       1500.50,
				Currency:    "BDT",
				Category:    "Programming",
				Tags:        []string{"go", "backend"},
				Lessons:     []services.LessonInput{{Title: "Setup"}, {Title: "Syntax"}},
			},
			wantEmail: "teacher@example.com",
		},
		{
			name: "short row keeps defaults",
			row:  []string{"Free Course"},
			want: services.CourseInput{Title: "Free Course"},
		},
		{
			name:    "missing title",
			row:     []string{"  ", "desc", "10"},
			wantErr: "missing title",
		},
		{
			name:    "non numeric price",
			row:     []string{"Paid Course", "", "ten"},
			wantErr: "invalid price",
		},
		{
			name:    "negative price",
			row:     []string{"Paid Course", "", "-5"},
			wantErr: "invalid price",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, email, err := courseFromRow(tt.row, header)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, in)
			assert.Equal(t, tt.wantEmail, email)
		})
	}
}

func TestCourseFromRowHeaderOrder(t *testing.T) {
	header := map[string]int{"lessons": 0, "price": 1, "title": 2}
	in, email, err := courseFromRow([]string{"One|Two", "99", "Reordered"}, header)
	require.NoError(t, err)
	assert.Equal(t, "Reordered", in.Title)
	assert.Equal(t, 99.0, in.Price)
	assert.Len(t, in.Lessons, 2)
	assert.Empty(t, email)
}

func TestSeedAdmin(t *testing.T) {
	db := testutil.NewDB(t)

	t.Setenv("ADMIN_EMAIL", "")
	_, err := seedAdmin(db, bcrypt.MinCost)
	require.Error(t, err)

	t.Setenv("ADMIN_EMAIL", " Root@Example.com ")
	t.Setenv("ADMIN_PASSWORD", "first-pass")
	t.Setenv("ADMIN_NAME", "")
	admin, err := seedAdmin(db, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", admin.Email)
	assert.Equal(t, "Administrator", admin.Name)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)

	// rerunning resets the password on the same account
	t.Setenv("ADMIN_PASSWORD", "second-pass")
	again, err := seedAdmin(db, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(again.Password), []byte("second-pass")))

	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	assert.EqualValues(t, 1, count)
}
