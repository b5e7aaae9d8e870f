package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPagination(t *testing.T) {
	tests := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Page: 1, Limit: 12}},
		{"?page=3&limit=5", Pagination{Page: 3, Limit: 5}},
		{"?page=0&limit=-1", Pagination{Page: 1, Limit: 12}},
		{"?page=abc&limit=1000", Pagination{Page: 1, Limit: MaxPageLimit}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			app := fiber.New()
			var got Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = GetPagination(c, 12)
				return nil
			})
			_, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaginationMeta(t *testing.T) {
	p := Pagination{Page: 2, Limit: 10}
	assert.Equal(t, 10, p.Offset())
	assert.Equal(t, Meta{Total: 21, Page: 2, Limit: 10, TotalPages: 3}, p.Meta(21))
	assert.Equal(t, 0, p.Meta(0).TotalPages)
}
