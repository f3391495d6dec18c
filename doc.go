// Package stickies is the Composition Root of the sticky-notes runtime.
//
// It connects the window lifecycle, the debounced editor sessions and the
// dashboard with the storage adapters (Hexagonal Architecture). Every note
// lives in its own window; the dashboard lists them all and is kept current by
// a process-wide refresh bus.
//
// Features:
//
//   - **No lost edits**: edits are saved one second after the user stops typing,
//     and closing a window waits for the pending save.
//   - **Live dashboard**: every save, creation, deletion or external edit of a
//     note file triggers a refresh; late responses never overwrite newer ones.
//   - **Session restore**: open notes come back in the order they were last used.
//   - **Default Adapter (FS)**: one Markdown file per note, written atomically.
//
// Usage:
//
//	a, err := stickies.New("~/.config/stickies",
//		stickies.WithDebounce(time.Second),
//		stickies.WithLogger(logger),
//	)
//	if err := a.Start(ctx); err != nil { ... }
//	defer a.Shutdown(ctx)
//
//	id, err := a.CreateNote(ctx)
package stickies
