package editor

import (
	"time"

	"github.com/aretw0/introspection"
)

// SessionState exposes internal state for observability.
type SessionState struct {
	NoteID   string     `json:"note_id"`
	State    string     `json:"state"`
	Deadline *time.Time `json:"deadline,omitempty"`
	Dirty    bool       `json:"dirty"`
	Closed   bool       `json:"closed"`
	Saves    uint64     `json:"saves"`
	Failures uint64     `json:"failures"`
	Length   int        `json:"length"`
}

// State implements introspection.Introspectable.
func (s *Session) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SessionState{
		NoteID:   string(s.id),
		State:    s.state.String(),
		Dirty:    s.dirty,
		Closed:   s.closed,
		Saves:    s.saves,
		Failures: s.failures,
		Length:   len(s.content),
	}
	if !s.deadline.IsZero() {
		d := s.deadline
		st.Deadline = &d
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Session) ComponentType() string {
	return "editor-session"
}

var _ introspection.Introspectable = (*Session)(nil)
var _ introspection.Component = (*Session)(nil)
