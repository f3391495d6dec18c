package core

import "strings"

const (
	// DashboardLabel is the reserved label of the singleton dashboard window.
	DashboardLabel = "main"
	// NoteLabelPrefix marks a label as belonging to a note editor window.
	NoteLabelPrefix = "note-"
)

// RoleKind distinguishes the two kinds of windows.
type RoleKind int

const (
	RoleDashboard RoleKind = iota
	RoleNoteEditor
)

func (k RoleKind) String() string {
	switch k {
	case RoleDashboard:
		return "dashboard"
	case RoleNoteEditor:
		return "note-editor"
	default:
		return "unknown"
	}
}

// WindowRole is derived once from a window label and never changes afterwards.
type WindowRole struct {
	Kind   RoleKind
	NoteID NoteID
	// Degraded is set when the label matched neither the dashboard label nor the
	// note prefix and the whole label was taken as the note id.
	Degraded bool
}

// IsDashboard reports whether the role is the dashboard.
func (r WindowRole) IsDashboard() bool { return r.Kind == RoleDashboard }

func (r WindowRole) String() string {
	if r.Kind == RoleDashboard {
		return r.Kind.String()
	}
	return r.Kind.String() + "(" + string(r.NoteID) + ")"
}

// ResolveLabel maps a window label to its role. It never fails: a label that is
// neither the dashboard label nor prefixed with NoteLabelPrefix resolves to a
// degraded note editor whose id is the full label.
func ResolveLabel(label string) WindowRole {
	if label == DashboardLabel {
		return WindowRole{Kind: RoleDashboard}
	}
	if id, ok := strings.CutPrefix(label, NoteLabelPrefix); ok {
		return WindowRole{Kind: RoleNoteEditor, NoteID: NoteID(id)}
	}
	return WindowRole{Kind: RoleNoteEditor, NoteID: NoteID(label), Degraded: true}
}

// NoteLabel returns the window label of the editor for id.
func NoteLabel(id NoteID) string {
	return NoteLabelPrefix + string(id)
}
