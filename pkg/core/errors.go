package core

import "errors"

// Common errors.
var (
	ErrNotFound       = errors.New("note not found")
	ErrStore          = errors.New("note store failure")
	ErrWindowNotFound = errors.New("window not found")
	ErrCreateInFlight = errors.New("note creation already in progress")
	ErrClosed         = errors.New("closed")
)
