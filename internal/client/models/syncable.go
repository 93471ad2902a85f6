// Package models defines the client-side entities kept in the local mirror
// and synchronized with the server.
package models

import "time"

// Syncable is the envelope every synchronized entity embeds.
type Syncable struct {
	// ID is a client-generated UUID, never assigned by the server.
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is bumped on every local mutation and drives incremental pull.
	UpdatedAt time.Time `json:"updatedAt"`
	// PendingSync is set while the local copy has unpushed changes.
	PendingSync bool `json:"pendingSync"`
	// DeletedAt marks a soft-deleted record (tombstone).
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Meta exposes the envelope of any entity embedding Syncable.
func (s Syncable) Meta() Syncable {
	return s
}

// Deleted reports whether the record is a tombstone.
func (s Syncable) Deleted() bool {
	return s.DeletedAt != nil
}

// Entity is implemented by every synchronized entity.
type Entity interface {
	Meta() Syncable
}

// NewSyncable returns an envelope for a freshly created, unsynced record.
func NewSyncable(id string, now time.Time) Syncable {
	return Syncable{ID: id, CreatedAt: now, UpdatedAt: now, PendingSync: true}
}

// Touch records a local mutation.
func (s *Syncable) Touch(now time.Time) {
	s.UpdatedAt = now
	s.PendingSync = true
}

// SoftDelete turns the record into a tombstone that still has to be pushed.
func (s *Syncable) SoftDelete(now time.Time) {
	s.DeletedAt = &now
	s.Touch(now)
}
