// Package bus implements the refresh notification bus: a process-wide broadcast of
// "the set of notes may have changed" signals from editor windows to the dashboard.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/aretw0/lifecycle"

	"github.com/aretw0/stickies/pkg/core"
)

// Topic is the single topic refresh events travel on.
const Topic = "notes.refresh"

const (
	metaSeq    = "seq"
	metaOrigin = "origin"
)

// Handler receives refresh events. Handlers never run concurrently with each other.
type Handler func(ctx context.Context, e core.RefreshEvent)

// Bus broadcasts refresh events.
//
// Publish only enqueues; a single dispatcher goroutine hands events to watermill's
// in-process pub/sub one at a time, waiting for every subscriber to acknowledge
// before sending the next, so subscribers observe events in publish order.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger

	mu      sync.Mutex
	queue   []core.RefreshEvent
	closed  bool
	running bool
	wake    chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}

	// dispatchMu serializes handler execution across all subscribers.
	dispatchMu sync.Mutex

	seq         atomic.Uint64
	delivered   atomic.Uint64
	subscribers atomic.Int64
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger for the bus.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// New creates a Bus. Call Start before expecting deliveries.
func New(opts ...Option) *Bus {
	b := &Bus{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}

	b.pubsub = gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}, watermill.NopLogger{})

	return b
}

// Start launches the dispatcher. Events published before Start are kept and
// delivered once it runs.
func (b *Bus) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("bus: %w", core.ErrClosed)
	}
	if b.running {
		b.mu.Unlock()
		return fmt.Errorf("bus already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.running = true
	b.mu.Unlock()

	lifecycle.Go(runCtx, func(ctx context.Context) error {
		defer close(b.done)
		b.dispatch(ctx)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		b.logger.Error("bus dispatcher panic", "error", err)
	}))

	// Anything queued before Start.
	b.signal()
	return nil
}

// Publish announces that notes may have changed. It never blocks and never fails;
// publishing with no subscribers, or after Close, is silently dropped.
func (b *Bus) Publish(origin string) {
	e := core.RefreshEvent{
		Seq:    b.seq.Add(1),
		Origin: origin,
		At:     time.Now(),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.logger.Debug("refresh dropped, bus closed", "origin", origin)
		return
	}
	b.queue = append(b.queue, e)
	b.mu.Unlock()

	b.logger.Debug("refresh published", "seq", e.Seq, "origin", origin)
	b.signal()
}

// Subscribe registers h. The subscription ends when ctx is done or when the
// returned cancel function is called.
func (b *Bus) Subscribe(ctx context.Context, h Handler) (context.CancelFunc, error) {
	subCtx, cancel := context.WithCancel(ctx)

	messages, err := b.pubsub.Subscribe(subCtx, Topic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", Topic, err)
	}
	b.subscribers.Add(1)

	lifecycle.Go(subCtx, func(ctx context.Context) error {
		defer b.subscribers.Add(-1)
		for msg := range messages {
			b.deliver(ctx, h, msg)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		b.logger.Error("bus subscriber panic", "error", err)
	}))

	return cancel, nil
}

// Close stops the dispatcher and releases the pub/sub. Queued events that were not
// yet dispatched are dropped.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	running := b.running
	cancel := b.cancel
	b.queue = nil
	b.mu.Unlock()

	if running {
		cancel()
		<-b.done
	}
	return b.pubsub.Close()
}

func (b *Bus) signal() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bus) pop() (core.RefreshEvent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return core.RefreshEvent{}, false
	}
	e := b.queue[0]
	b.queue = b.queue[1:]
	return e, true
}

func (b *Bus) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.wake:
		}

		for ctx.Err() == nil {
			e, ok := b.pop()
			if !ok {
				break
			}
			msg := message.NewMessage(watermill.NewUUID(), nil)
			msg.Metadata.Set(metaSeq, strconv.FormatUint(e.Seq, 10))
			msg.Metadata.Set(metaOrigin, e.Origin)
			if err := b.pubsub.Publish(Topic, msg); err != nil {
				b.logger.Error("failed to dispatch refresh", "seq", e.Seq, "error", err)
			}
		}
	}
}

func (b *Bus) deliver(ctx context.Context, h Handler, msg *message.Message) {
	defer msg.Ack()

	seq, _ := strconv.ParseUint(msg.Metadata.Get(metaSeq), 10, 64)
	e := core.RefreshEvent{
		Seq:    seq,
		Origin: msg.Metadata.Get(metaOrigin),
		At:     time.Now(),
	}

	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	h(ctx, e)
	b.delivered.Add(1)
}
