package headless

import (
	"sync"

	"github.com/aretw0/stickies/pkg/core"
)

// Widget is an editor widget without a screen. Type simulates a user edit.
type Widget struct {
	mu       sync.Mutex
	value    string
	onChange func(string)
}

// NewWidget creates an unmounted Widget.
func NewWidget() *Widget {
	return &Widget{}
}

// Mount implements core.EditorWidget.
func (w *Widget) Mount(initial string, onChange func(markdown string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.value = initial
	w.onChange = onChange
}

// Type replaces the widget content as if the user edited it and emits the change.
func (w *Widget) Type(markdown string) {
	w.mu.Lock()
	w.value = markdown
	onChange := w.onChange
	w.mu.Unlock()

	if onChange != nil {
		onChange(markdown)
	}
}

// Value returns the current content.
func (w *Widget) Value() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

var _ core.EditorWidget = (*Widget)(nil)
