package utils

import (
	"coursemaster/models"
	"math"
	"sort"
)

// InitializeProgress builds one not-completed entry per lesson, in lesson order
func InitializeProgress(lessons []models.Lesson) []models.ProgressEntry {
	ordered := make([]models.Lesson, len(lessons))
	copy(ordered, lessons)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Order != ordered[j].Order {
			return ordered[i].Order < ordered[j].Order
		}
		return ordered[i].ID < ordered[j].ID
	})

	entries := make([]models.ProgressEntry, 0, len(ordered))
	for i, lesson := range ordered {
		entries = append(entries, models.ProgressEntry{
			LessonID: lesson.ID,
			Position: i,
		})
	}
	return entries
}

// CalculateProgress returns the rounded completion percentage, 0 for an empty list
func CalculateProgress(entries []models.ProgressEntry) int {
	if len(entries) == 0 {
		return 0
	}
	completed := 0
	for _, e := range entries {
		if e.Completed {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(entries))))
}
