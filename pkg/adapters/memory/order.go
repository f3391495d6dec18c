package memory

import (
	"slices"
	"sync"

	"github.com/aretw0/stickies/pkg/core"
)

// Order implements core.SessionOrder in memory.
type Order struct {
	mu  sync.Mutex
	ids []core.NoteID
}

// NewOrder creates an empty Order.
func NewOrder() *Order {
	return &Order{}
}

func (o *Order) Order() ([]core.NoteID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.ids), nil
}

func (o *Order) Touch(id core.NoteID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ids = append(slices.DeleteFunc(o.ids, func(v core.NoteID) bool { return v == id }), id)
	return nil
}

func (o *Order) Remove(id core.NoteID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ids = slices.DeleteFunc(o.ids, func(v core.NoteID) bool { return v == id })
	return nil
}

var _ core.SessionOrder = (*Order)(nil)
