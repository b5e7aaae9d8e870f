package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lessonReq struct {
	Title string `json:"title" validate:"required"`
}

type courseReq struct {
	Title   string      `json:"title" validate:"required,min=3"`
	Email   string      `json:"email" validate:"omitempty,email"`
	Role    string      `json:"role" validate:"omitempty,oneof=student instructor"`
	Lessons []lessonReq `json:"lessons" validate:"dive"`
	Start   time.Time   `json:"start_date"`
	End     time.Time   `json:"end_date" validate:"gtefield=Start"`
}

func TestStruct(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		in   courseReq
		want map[string]string
	}{
		{"valid", courseReq{Title: "Go 101", Start: now, End: now}, map[string]string{}},
		{"required", courseReq{Start: now, End: now}, map[string]string{"title": "title is required!"}},
		{"too short", courseReq{Title: "Go", Start: now, End: now}, map[string]string{"title": "title must be at least 3 characters long!"}},
		{"email", courseReq{Title: "Go 101", Email: "nope", Start: now, End: now}, map[string]string{"email": "Invalid email format!"}},
		{"oneof", courseReq{Title: "Go 101", Role: "admin", Start: now, End: now}, map[string]string{"role": "role must be one of: student, instructor!"}},
		{"nested", courseReq{Title: "Go 101", Lessons: []lessonReq{{Title: "a"}, {}}, Start: now, End: now}, map[string]string{"lessons[1].title": "title is required!"}},
		{"date order", courseReq{Title: "Go 101", Start: now, End: now.Add(-time.Hour)}, map[string]string{"end_date": "end_date must not be before start!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Struct(&tt.in))
		})
	}
}

func TestIDParams(t *testing.T) {
	app := fiber.New()
	app.Get("/courses/:courseId/batches/:batchId", IDParams("courseId", "batchId"), func(c *fiber.Ctx) error {
		assert.EqualValues(t, 3, ID(c, "courseId"))
		assert.EqualValues(t, 9, ID(c, "batchId"))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/courses/3/batches/9", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	for _, path := range []string{"/courses/abc/batches/9", "/courses/0/batches/9", "/courses/3/batches/-1"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestParseBody(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		req := new(courseReq)
		ok, err := ParseBody(c, req, func() { req.Title = strings.TrimSpace(req.Title) })
		if !ok {
			return err
		}
		return c.SendString(req.Title)
	})

	send := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, fiber.StatusOK, send(`{"title":"  Go 101  "}`).StatusCode)
	assert.Equal(t, fiber.StatusUnprocessableEntity, send(`{"title":"  Go  "}`).StatusCode)
	assert.Equal(t, fiber.StatusBadRequest, send(`{"title":`).StatusCode)
}
