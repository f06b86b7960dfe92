// Package interact is the pointer-driven state machine of the planning board.
//
// Step is a pure transition function: it takes the current State and one
// Event and returns the next State plus the Actions the caller must apply to
// the board (committing a link, moving a node, focusing the camera). It never
// touches the board itself, so every transition can be tested without a
// renderer.
package interact

import (
	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/geometry"
)

// Mode is the exclusive pointer mode. Panning, dragging and link-pending are
// values of one field so that at most one can be active.
type Mode int

const (
	ModeIdle Mode = iota
	ModePanning
	ModeDragging
	ModeLinkPending
)

func (m Mode) String() string {
	switch m {
	case ModePanning:
		return "panning"
	case ModeDragging:
		return "dragging"
	case ModeLinkPending:
		return "link-pending"
	default:
		return "idle"
	}
}

// FocusKind says whether the focus target is a node or a link.
type FocusKind int

const (
	FocusNode FocusKind = iota
	FocusLink
)

func (k FocusKind) String() string {
	if k == FocusLink {
		return "link"
	}
	return "node"
}

// Focus is the focus-mode overlay. A zero ID means focus mode is off.
type Focus struct {
	ID   string
	Kind FocusKind
}

// State is the ephemeral interaction state of one board view.
type State struct {
	Mode Mode

	// DraggingID is set only in ModeDragging.
	DraggingID string
	// LinkFrom and LinkVariant are set only in ModeLinkPending.
	LinkFrom    string
	LinkVariant board.LinkVariant
	// Cursor is the last pointer position in canvas space, used for the
	// rubber-band preview while a link is pending.
	Cursor geometry.Vec

	SelectedID string
	OpenMenuID string
	Focus      Focus

	Camera geometry.Camera
}

// NewState returns an idle state with an identity camera.
func NewState() State {
	return State{Camera: geometry.Identity()}
}

// Panning reports whether the canvas is being panned.
func (s State) Panning() bool { return s.Mode == ModePanning }

// Dragging reports whether a node is being dragged.
func (s State) Dragging() bool { return s.Mode == ModeDragging }

// LinkPending reports whether a link is waiting for its target.
func (s State) LinkPending() bool { return s.Mode == ModeLinkPending }

// Focused reports whether focus mode is active.
func (s State) Focused() bool { return s.Focus.ID != "" }

// References reports whether any part of the state points at id.
func (s State) References(id string) bool {
	return id != "" && (s.SelectedID == id || s.OpenMenuID == id || s.DraggingID == id ||
		s.LinkFrom == id || s.Focus.ID == id)
}
