// Package core holds the domain types of stickies and the ports through which the
// synchronization layer reaches its collaborators (note store, window manager, editor).
package core

import "time"

// NoteID identifies a note. It is opaque to the synchronization layer and is
// assigned by the Store when the note is created.
type NoteID string

// String implements fmt.Stringer.
func (id NoteID) String() string { return string(id) }

// NoteSummary is the read-only projection of a note shown by the dashboard.
type NoteSummary struct {
	ID        NoteID    `json:"id"`
	Preview   string    `json:"preview"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshEvent signals that the durable set of notes may have changed.
// Seq and Origin are diagnostic only; listeners must not depend on them.
type RefreshEvent struct {
	Seq    uint64
	Origin string
	At     time.Time
}

// String implements fmt.Stringer.
func (e RefreshEvent) String() string {
	if e.Origin == "" {
		return "refresh"
	}
	return "refresh(" + e.Origin + ")"
}
