package dashboard

import (
	"time"

	"github.com/aretw0/introspection"
)

// AggregatorState exposes internal state for observability.
type AggregatorState struct {
	Notes     int        `json:"notes"`
	Issued    uint64     `json:"issued"`
	Applied   uint64     `json:"applied"`
	Failures  uint64     `json:"failures"`
	Creating  bool       `json:"creating"`
	Refreshed *time.Time `json:"refreshed,omitempty"`
}

// State implements introspection.Introspectable.
func (a *Aggregator) State() any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := AggregatorState{
		Notes:    len(a.summaries),
		Issued:   a.issued.Load(),
		Applied:  a.applied,
		Failures: a.failures.Load(),
		Creating: a.creating.Load(),
	}
	if !a.refreshed.IsZero() {
		r := a.refreshed
		st.Refreshed = &r
	}
	return st
}

// ComponentType implements introspection.Component.
func (a *Aggregator) ComponentType() string {
	return "dashboard"
}

var _ introspection.Introspectable = (*Aggregator)(nil)
var _ introspection.Component = (*Aggregator)(nil)
