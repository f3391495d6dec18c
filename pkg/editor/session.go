// Package editor implements the debounced persistence of a note being edited.
//
// A Session belongs to exactly one note editor window. Edits arrive through OnEdit,
// are coalesced behind a single timer and saved once the user pauses. Flush forces a
// pending save to run immediately and is what a closing window awaits before it is
// destroyed, so the last edit is never lost.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/stickies/pkg/core"
)

// DefaultDelay is the quiet period after the last edit before a save is issued.
const DefaultDelay = 1000 * time.Millisecond

// Saver persists note content.
type Saver interface {
	Save(ctx context.Context, id core.NoteID, content string) error
}

// Notifier announces successful saves.
type Notifier interface {
	Publish(origin string)
}

// SaveState is the state of the pending-save slot.
type SaveState int

const (
	// StateIdle means nothing is pending: content is durable or was never dirty.
	StateIdle SaveState = iota
	// StateArmed means a timer is running and will save when it expires.
	StateArmed
	// StateFiring means a save call is in flight.
	StateFiring
)

func (s SaveState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateFiring:
		return "firing"
	default:
		return "unknown"
	}
}

// Session is the debounced persistence controller of one note.
type Session struct {
	id       core.NoteID
	saver    Saver
	notifier Notifier
	delay    time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	settled  *sync.Cond
	content  string
	state    SaveState
	timer    *time.Timer
	deadline time.Time
	gen      uint64
	edits    uint64
	dirty    bool
	inflight int
	closed   bool

	// saveMu keeps at most one save of this note in flight.
	saveMu sync.Mutex

	saves    uint64
	failures uint64
}

// Option configures a Session.
type Option func(*Session)

// WithDelay sets the debounce delay. Non-positive values keep DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithLogger sets the logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithNotifier sets where successful saves are announced.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// NewSession creates a Session for id whose durable content is initial.
func NewSession(id core.NoteID, initial string, saver Saver, opts ...Option) *Session {
	s := &Session{
		id:      id,
		saver:   saver,
		delay:   DefaultDelay,
		content: initial,
	}
	s.settled = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.logger = s.logger.With("note", string(id))
	return s
}

// ID returns the note id.
func (s *Session) ID() core.NoteID { return s.id }

// Content returns the last content reported by the editor.
func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// Pending reports whether a save is armed.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateArmed
}

// Dirty reports whether the last edit has not been saved yet, including after a
// failed save.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// OnEdit records content and (re)arms the save timer. Any previously armed save is
// replaced, so a burst of edits produces a single save of the latest content.
// Edits after Close are ignored.
func (s *Session) OnEdit(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Warn("edit after close ignored")
		return
	}

	s.content = content
	s.edits++
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.state = StateArmed
	s.deadline = time.Now().Add(s.delay)
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
}

// Flush saves unsaved content immediately and waits until nothing is pending. A
// save in flight is waited for, and an edit arriving meanwhile is saved too.
// Content left unsaved by a failed save is attempted once more; failed saves are
// never retried otherwise. With nothing unsaved it returns nil without touching
// the store.
func (s *Session) Flush(ctx context.Context) error {
	return s.flush(ctx, false)
}

// Close flushes and then rejects further edits. Edits arriving while the flush
// runs are included in it.
func (s *Session) Close(ctx context.Context) error {
	return s.flush(ctx, true)
}

func (s *Session) flush(ctx context.Context, closing bool) error {
	retried := false
	for {
		s.mu.Lock()
		switch {
		case s.state == StateFiring:
			for s.inflight > 0 {
				s.settled.Wait()
			}
			s.mu.Unlock()

		case s.state == StateArmed || (s.dirty && !retried):
			retried = true
			s.disarmLocked()
			s.state = StateFiring
			s.inflight++
			s.mu.Unlock()

			if err := s.persist(ctx, "flush"); err != nil {
				s.mu.Lock()
				// A newer edit gets its own attempt.
				if s.state == StateArmed {
					s.mu.Unlock()
					continue
				}
				if closing {
					s.closed = true
				}
				s.mu.Unlock()
				return err
			}

		default:
			if closing {
				s.closed = true
			}
			s.mu.Unlock()
			return nil
		}
	}
}

// Discard drops a pending save without persisting it and rejects further edits.
// A save already in flight is waited for.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.dirty = false
	if s.state == StateArmed {
		s.disarmLocked()
		s.state = StateIdle
		if s.inflight > 0 {
			s.state = StateFiring
		}
		s.logger.Debug("pending save discarded")
	}
	for s.inflight > 0 {
		s.settled.Wait()
	}
}

func (s *Session) disarmLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.deadline = time.Time{}
}

// fire runs on timer expiry. A stale generation means the timer was replaced or
// flushed after it had already started.
func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != StateArmed {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.deadline = time.Time{}
	s.state = StateFiring
	s.inflight++
	s.mu.Unlock()

	_ = s.persist(context.Background(), "debounce")
}

// persist saves the current content. The save is not cancelled by the caller's
// context: once issued it runs to completion.
func (s *Session) persist(ctx context.Context, trigger string) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	content := s.content
	edit := s.edits
	s.mu.Unlock()

	err := s.saver.Save(context.WithoutCancel(ctx), s.id, content)

	s.mu.Lock()
	s.inflight--
	if s.state == StateFiring && s.inflight == 0 {
		s.state = StateIdle
	}
	if err != nil {
		s.failures++
	} else {
		s.saves++
		if edit == s.edits {
			s.dirty = false
		}
	}
	s.settled.Broadcast()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to save note", "trigger", trigger, "error", err)
		return fmt.Errorf("save %s: %w", s.id, err)
	}

	s.logger.Debug("note saved", "trigger", trigger, "bytes", len(content))
	if s.notifier != nil {
		s.notifier.Publish(string(s.id))
	}
	return nil
}
