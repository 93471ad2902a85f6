package models

import "time"

// Activity is a Japanese study session written by the ingestion endpoint
// straight into the japanese_activities table.
type Activity struct {
	ID              string
	UserID          string
	Type            string
	DurationMinutes int
	NewCards        *int
	BookID          *string
	Date            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
