package interact

import (
	"github.com/vanderheijden86/casefile/pkg/debug"
	"github.com/vanderheijden86/casefile/pkg/geometry"
)

// Step applies one event and returns the next state with the actions the
// caller must carry out, in order.
func Step(s State, ev Event) (State, []Action) {
	switch e := ev.(type) {
	case PointerDown:
		return pointerDown(s, e)
	case SecondaryDown:
		return secondaryDown(s, e), nil
	case PointerMove:
		return pointerMove(s, e)
	case PointerUp:
		if s.Mode == ModePanning || s.Mode == ModeDragging {
			s.Mode = ModeIdle
			s.DraggingID = ""
		}
		return s, nil
	case Wheel:
		if !s.Focused() {
			s.Camera = s.Camera.Zoomed(e.DeltaY, e.Sensitivity)
		}
		return s, nil
	case DoubleClick:
		return doubleClick(s, e)
	case StartLink:
		if e.From == "" || !e.Variant.Valid() {
			return s, nil
		}
		s.Mode = ModeLinkPending
		s.DraggingID = ""
		s.LinkFrom = e.From
		s.LinkVariant = e.Variant
		s.OpenMenuID = ""
		return s, nil
	case ExitFocus:
		s.Focus = Focus{}
		return s, nil
	case Escape:
		return escape(s), nil
	case Forget:
		return forget(s, e.ID), nil
	case CloseMenu:
		s.OpenMenuID = ""
		return s, nil
	}
	return s, nil
}

func pointerDown(s State, e PointerDown) (State, []Action) {
	s.Cursor = e.Pos
	// A press without a release in between (terminals drop them) ends any
	// gesture still in progress.
	if s.Mode == ModePanning || s.Mode == ModeDragging {
		s.Mode = ModeIdle
	}
	s.DraggingID = ""
	switch e.Hit.Kind {
	case geometry.HitNode:
		if s.Mode == ModeLinkPending {
			from, variant := s.LinkFrom, s.LinkVariant
			s = cancelLink(s)
			if e.Hit.ID == from {
				return s, nil
			}
			debug.Log("interact: commit link %s -> %s (%s)", from, e.Hit.ID, variant)
			return s, []Action{CommitLink{From: from, To: e.Hit.ID, Variant: variant}}
		}
		s.SelectedID = e.Hit.ID
		if s.OpenMenuID != e.Hit.ID {
			s.OpenMenuID = ""
		}
		if !e.Hit.Locked {
			s.Mode = ModeDragging
			s.DraggingID = e.Hit.ID
		}
		return s, nil
	default:
		// Edges are selected by double-click or their menu; a plain press on
		// one behaves like background.
		if s.Mode == ModeLinkPending {
			return cancelLink(s), nil
		}
		s.SelectedID = ""
		s.OpenMenuID = ""
		if !s.Focused() {
			s.Mode = ModePanning
		}
		return s, nil
	}
}

func secondaryDown(s State, e SecondaryDown) State {
	s.Cursor = e.Pos
	if s.Mode == ModeLinkPending {
		s = cancelLink(s)
	}
	if e.Hit.Kind != geometry.HitNode {
		s.OpenMenuID = ""
		return s
	}
	s.SelectedID = e.Hit.ID
	if s.OpenMenuID == e.Hit.ID {
		s.OpenMenuID = ""
	} else {
		s.OpenMenuID = e.Hit.ID
	}
	return s
}

func pointerMove(s State, e PointerMove) (State, []Action) {
	s.Cursor = e.Pos
	switch s.Mode {
	case ModePanning:
		s.Camera = s.Camera.Panned(e.Delta.X, e.Delta.Y)
	case ModeDragging:
		scale := s.Camera.Scale
		if scale == 0 {
			scale = 1
		}
		if e.Delta.X == 0 && e.Delta.Y == 0 {
			return s, nil
		}
		return s, []Action{MoveNode{ID: s.DraggingID, DX: e.Delta.X / scale, DY: e.Delta.Y / scale}}
	}
	return s, nil
}

func doubleClick(s State, e DoubleClick) (State, []Action) {
	var f Focus
	switch e.Hit.Kind {
	case geometry.HitNode:
		f = Focus{ID: e.Hit.ID, Kind: FocusNode}
	case geometry.HitEdge:
		f = Focus{ID: e.Hit.ID, Kind: FocusLink}
	default:
		return s, nil
	}
	if s.Mode == ModePanning || s.Mode == ModeDragging {
		s.Mode = ModeIdle
		s.DraggingID = ""
	}
	s.Focus = f
	return s, []Action{FocusOn{Focus: f}}
}

func escape(s State) State {
	switch {
	case s.Mode == ModeLinkPending:
		return cancelLink(s)
	case s.OpenMenuID != "":
		s.OpenMenuID = ""
	case s.Focused():
		s.Focus = Focus{}
	default:
		s.SelectedID = ""
	}
	return s
}

func forget(s State, id string) State {
	if id == "" {
		return s
	}
	if s.SelectedID == id {
		s.SelectedID = ""
	}
	if s.OpenMenuID == id {
		s.OpenMenuID = ""
	}
	if s.Focus.ID == id {
		s.Focus = Focus{}
	}
	if s.DraggingID == id {
		s.Mode = ModeIdle
		s.DraggingID = ""
	}
	if s.LinkFrom == id {
		s = cancelLink(s)
	}
	return s
}

func cancelLink(s State) State {
	s.Mode = ModeIdle
	s.LinkFrom = ""
	s.LinkVariant = ""
	return s
}
