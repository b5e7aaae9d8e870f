package utils

import (
	"coursemaster/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func lesson(id uint, order int) models.Lesson {
	return models.Lesson{Model: gorm.Model{ID: id}, Order: order}
}

func TestInitializeProgress(t *testing.T) {
	t.Run("empty course", func(t *testing.T) {
		assert.Empty(t, InitializeProgress(nil))
	})

	t.Run("one entry per lesson in lesson order", func(t *testing.T) {
		lessons := []models.Lesson{lesson(7, 3), lesson(4, 1), lesson(9, 2)}
		entries := InitializeProgress(lessons)

		require.Len(t, entries, 3)
		assert.Equal(t, []uint{4, 9, 7}, []uint{entries[0].LessonID, entries[1].LessonID, entries[2].LessonID})
		for i, e := range entries {
			assert.False(t, e.Completed)
			assert.Nil(t, e.CompletedAt)
			assert.Equal(t, i, e.Position)
		}
	})

	t.Run("equal order falls back to id", func(t *testing.T) {
		entries := InitializeProgress([]models.Lesson{lesson(5, 0), lesson(2, 0)})
		require.Len(t, entries, 2)
		assert.Equal(t, uint(2), entries[0].LessonID)
	})

	t.Run("input is not reordered", func(t *testing.T) {
		lessons := []models.Lesson{lesson(2, 2), lesson(1, 1)}
		InitializeProgress(lessons)
		assert.Equal(t, uint(2), lessons[0].ID)
	})
}

func TestCalculateProgress(t *testing.T) {
	entries := func(done, total int) []models.ProgressEntry {
		out := make([]models.ProgressEntry, total)
		for i := 0; i < done; i++ {
			out[i].Completed = true
		}
		return out
	}

	tests := []struct {
		name        string
		done, total int
		want        int
	}{
		{"empty", 0, 0, 0},
		{"none completed", 0, 4, 0},
		{"all completed", 5, 5, 100},
		{"one of three rounds down", 1, 3, 33},
		{"two of three rounds up", 2, 3, 67},
		{"half rounds away from zero", 1, 8, 13},
		{"one of two", 1, 2, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateProgress(entries(tt.done, tt.total)))
		})
	}
}

func TestCalculateProgressIsMonotonic(t *testing.T) {
	const total = 7
	list := make([]models.ProgressEntry, total)
	prev := CalculateProgress(list)
	for i := 0; i < total; i++ {
		list[i].Completed = true
		got := CalculateProgress(list)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
	assert.Equal(t, 100, prev)
}
