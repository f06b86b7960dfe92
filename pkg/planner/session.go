// Package planner owns a live planning board and applies every editing
// operation to it: node and link CRUD, cascading delete, the linked-task
// wizard and the quick-connect helpers.
//
// A Session is driven from a single goroutine (the UI event loop). It holds
// the board, the interaction state and the camera; pointer input goes through
// Dispatch, which runs the interact state machine and applies its actions.
// Every mutation bumps Revision and reports what changed to the OnChange hook
// so the caller can persist it.
package planner

import (
	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/debug"
	"github.com/vanderheijden86/casefile/pkg/geometry"
	"github.com/vanderheijden86/casefile/pkg/interact"
)

// Change flags which persisted collections a mutation touched.
type Change uint8

const (
	ChangeTitle Change = 1 << iota
	ChangeNodes
	ChangeEdges
)

// Has reports whether c includes all of other.
func (c Change) Has(other Change) bool { return c&other == other }

// Session is the editing surface of one board.
type Session struct {
	board    *board.Board
	state    interact.State
	viewport geometry.Vec
	revision uint64
	onChange func(Change)
}

// New wraps b. The session takes ownership of b; callers read it through
// Board and mutate it only through session methods.
func New(b *board.Board) *Session {
	if b == nil {
		b = &board.Board{}
	}
	return &Session{
		board:    b,
		state:    interact.NewState(),
		viewport: geometry.Vec{X: 1280, Y: 800},
	}
}

// OnChange registers the mutation hook. It runs synchronously after each
// mutation.
func (s *Session) OnChange(fn func(Change)) {
	s.onChange = fn
}

// Board returns the live board. Treat it as read-only.
func (s *Session) Board() *board.Board { return s.board }

// State returns the current interaction state.
func (s *Session) State() interact.State { return s.state }

// Camera returns the current camera.
func (s *Session) Camera() geometry.Camera { return s.state.Camera }

// SetCamera replaces the camera, e.g. while a focus tween is playing.
func (s *Session) SetCamera(c geometry.Camera) { s.state.Camera = c }

// ResetCamera returns to the identity transform, as on view entry.
func (s *Session) ResetCamera() { s.state.Camera = geometry.Identity() }

// Revision counts mutations since the session was created.
func (s *Session) Revision() uint64 { return s.revision }

// SetViewport records the screen size the camera projects onto.
func (s *Session) SetViewport(w, h float64) {
	s.viewport = geometry.Vec{X: w, Y: h}
}

// Viewport returns the screen size set by SetViewport.
func (s *Session) Viewport() geometry.Vec { return s.viewport }

// ViewportCenter returns the canvas point under the middle of the screen.
func (s *Session) ViewportCenter() geometry.Vec {
	return s.state.Camera.ScreenToCanvas(geometry.Vec{X: s.viewport.X / 2, Y: s.viewport.Y / 2})
}

// Select sets the selected node directly, as keyboard navigation does.
func (s *Session) Select(id string) {
	s.state.SelectedID = id
}

// Routes returns the routed curves for all live edges.
func (s *Session) Routes() []geometry.Route {
	return geometry.RouteEdges(s.board)
}

// HitAt resolves a screen point to whatever lies under it.
func (s *Session) HitAt(screen geometry.Vec) geometry.Hit {
	p := s.state.Camera.ScreenToCanvas(screen)
	tol := geometry.EdgeHitTolerance / s.scale()
	return geometry.HitTest(s.board, s.Routes(), p, tol)
}

// Dispatch feeds one event through the interaction state machine and applies
// the resulting actions. The actions are returned so the caller can react to
// them, e.g. by animating a focus transition.
func (s *Session) Dispatch(ev interact.Event) []interact.Action {
	next, actions := interact.Step(s.state, ev)
	s.state = next
	for _, a := range actions {
		switch a := a.(type) {
		case interact.CommitLink:
			if _, err := s.CreateEdge(a.From, a.To, a.Variant); err != nil {
				debug.Log("planner: commit link: %v", err)
			}
		case interact.MoveNode:
			s.moveNode(a.ID, a.DX, a.DY)
		case interact.FocusOn:
			s.applyFocus(a.Focus)
		}
	}
	return actions
}

// Focus enters focus mode on a node or link and moves the camera onto it.
func (s *Session) Focus(f interact.Focus) bool {
	s.state.Focus = f
	return s.applyFocus(f)
}

// ExitFocus leaves focus mode. The camera stays where it is.
func (s *Session) ExitFocus() {
	s.state, _ = interact.Step(s.state, interact.ExitFocus{})
}

func (s *Session) applyFocus(f interact.Focus) bool {
	target, ok := s.focusTarget(f)
	if !ok {
		s.state.Focus = interact.Focus{}
		return false
	}
	s.state.Camera = geometry.FocusOn(target, s.viewport, geometry.FocusScale)
	debug.Log("planner: focus %s %s at (%.0f, %.0f)", f.Kind, f.ID, target.X, target.Y)
	return true
}

func (s *Session) focusTarget(f interact.Focus) (geometry.Vec, bool) {
	if f.Kind == interact.FocusLink {
		for _, r := range s.Routes() {
			if r.EdgeID == f.ID {
				return r.Midpoint(), true
			}
		}
		return geometry.Vec{}, false
	}
	n, ok := s.board.FindNode(f.ID)
	if !ok {
		return geometry.Vec{}, false
	}
	return geometry.CenterOf(*n), true
}

func (s *Session) scale() float64 {
	if s.state.Camera.Scale == 0 {
		return 1
	}
	return s.state.Camera.Scale
}

func (s *Session) changed(c Change) {
	s.revision++
	if s.onChange != nil {
		s.onChange(c)
	}
}
