package interact

import (
	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/geometry"
)

// Event is an input to Step.
type Event interface {
	isEvent()
}

// PointerDown is a primary button press. Hit is what lies under the pointer
// and Pos is the pointer in canvas space.
type PointerDown struct {
	Hit geometry.Hit
	Pos geometry.Vec
}

// SecondaryDown is a right-button press. On a node it opens that node's menu.
type SecondaryDown struct {
	Hit geometry.Hit
	Pos geometry.Vec
}

// PointerMove carries the screen-space delta since the last move and the new
// pointer position in canvas space.
type PointerMove struct {
	Delta geometry.Vec
	Pos   geometry.Vec
}

// PointerUp is the release of any button.
type PointerUp struct{}

// Wheel is a scroll; negative DeltaY zooms in.
type Wheel struct {
	DeltaY      float64
	Sensitivity float64
}

// DoubleClick enters focus mode on the node or link under the pointer.
type DoubleClick struct {
	Hit geometry.Hit
}

// StartLink arms link-pending from a node menu or the keyboard.
type StartLink struct {
	From    string
	Variant board.LinkVariant
}

// ExitFocus leaves focus mode.
type ExitFocus struct{}

// Escape backs out of the innermost transient state.
type Escape struct{}

// Forget drops every reference to a deleted node or link.
type Forget struct {
	ID string
}

// CloseMenu closes the open per-node menu, if any.
type CloseMenu struct{}

func (PointerDown) isEvent()   {}
func (SecondaryDown) isEvent() {}
func (PointerMove) isEvent()   {}
func (PointerUp) isEvent()     {}
func (Wheel) isEvent()         {}
func (DoubleClick) isEvent()   {}
func (StartLink) isEvent()     {}
func (ExitFocus) isEvent()     {}
func (Escape) isEvent()        {}
func (Forget) isEvent()        {}
func (CloseMenu) isEvent()     {}

// Action is a board mutation or camera request produced by Step.
type Action interface {
	isAction()
}

// CommitLink asks the caller to create an edge.
type CommitLink struct {
	From    string
	To      string
	Variant board.LinkVariant
}

// MoveNode asks the caller to translate a node by a canvas-space delta.
type MoveNode struct {
	ID     string
	DX, DY float64
}

// FocusOn asks the caller to animate the camera onto a node or link.
type FocusOn struct {
	Focus Focus
}

func (CommitLink) isAction() {}
func (MoveNode) isAction()   {}
func (FocusOn) isAction()    {}
