package tech

import "time"

// Seed returns the fixed records a fresh store starts with.
func Seed(now time.Time) []Record {
	createdAt := FormatTimestamp(now)
	return []Record{
		{
			ID:          1,
			Title:       "React",
			Description: "A library for building user interfaces",
			Status:      StatusInProgress,
			CreatedAt:   createdAt,
		},
		{
			ID:          2,
			Title:       "Node.js",
			Description: "A JavaScript runtime for the server",
			Status:      StatusNotStarted,
			CreatedAt:   createdAt,
		},
		{
			ID:          3,
			Title:       "TypeScript",
			Description: "A typed superset of JavaScript",
			Status:      StatusCompleted,
			CreatedAt:   createdAt,
		},
	}
}
