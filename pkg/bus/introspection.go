package bus

import "github.com/aretw0/introspection"

// BusState exposes internal state for observability.
type BusState struct {
	Published   uint64 `json:"published"`
	Delivered   uint64 `json:"delivered"`
	Queued      int    `json:"queued"`
	Subscribers int64  `json:"subscribers"`
	Closed      bool   `json:"closed"`
}

// State implements introspection.Introspectable.
func (b *Bus) State() any {
	b.mu.Lock()
	queued := len(b.queue)
	closed := b.closed
	b.mu.Unlock()

	return BusState{
		Published:   b.seq.Load(),
		Delivered:   b.delivered.Load(),
		Queued:      queued,
		Subscribers: b.subscribers.Load(),
		Closed:      closed,
	}
}

// ComponentType implements introspection.Component.
func (b *Bus) ComponentType() string {
	return "bus"
}

var _ introspection.Introspectable = (*Bus)(nil)
var _ introspection.Component = (*Bus)(nil)
