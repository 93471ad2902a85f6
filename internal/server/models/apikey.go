// Package models defines server-side data models persisted in the database
// outside the synchronized tables.
package models

import "time"

// APIKey authenticates the ingestion endpoint. Only the SHA-256 hash of the
// key is stored; Prefix keeps the first characters for display.
type APIKey struct {
	ID         string
	UserID     string
	Hash       string
	Prefix     string
	Name       string
	LastUsedAt *time.Time
	CreatedAt  time.Time
}
