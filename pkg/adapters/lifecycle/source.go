// Package lifecycle exposes refresh events as a lifecycle.Source so they can be
// consumed like any other lifecycle event stream.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/stickies/pkg/bus"
	"github.com/aretw0/stickies/pkg/core"
)

// DefaultBuffer is the number of events kept for a slow consumer.
const DefaultBuffer = 64

// Subscriber is where refresh events come from.
type Subscriber interface {
	Subscribe(ctx context.Context, h bus.Handler) (context.CancelFunc, error)
}

// RefreshSource is a lifecycle.Source of refresh events.
// It never blocks the bus: when the consumer falls behind, events are dropped.
type RefreshSource struct {
	sub Subscriber
	out chan lifecycle.Event

	mu      sync.Mutex
	closed  bool
	dropped atomic.Uint64
}

// NewSource creates a lifecycle.Source that emits the refresh events of sub.
func NewSource(sub Subscriber) *RefreshSource {
	return &RefreshSource{
		sub: sub,
		out: make(chan lifecycle.Event, DefaultBuffer),
	}
}

// Events implements lifecycle.Source. The channel is closed once ctx given to
// Start is done.
func (s *RefreshSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Dropped returns how many events were discarded because the consumer lagged.
func (s *RefreshSource) Dropped() uint64 {
	return s.dropped.Load()
}

// Start implements lifecycle.Source.
func (s *RefreshSource) Start(ctx context.Context) error {
	cancel, err := s.sub.Subscribe(ctx, s.forward)
	if err != nil {
		return fmt.Errorf("refresh source: %w", err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		cancel()

		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		close(s.out)
		return nil
	})
	return nil
}

func (s *RefreshSource) forward(ctx context.Context, e core.RefreshEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.out <- e:
	default:
		s.dropped.Add(1)
	}
}

var _ lifecycle.Source = (*RefreshSource)(nil)
