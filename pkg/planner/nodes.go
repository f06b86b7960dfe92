package planner

import (
	"fmt"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/debug"
	"github.com/vanderheijden86/casefile/pkg/geometry"
	"github.com/vanderheijden86/casefile/pkg/interact"
)

// NodePatch is a shallow partial update. Nil fields are left alone.
type NodePatch struct {
	Content            *string
	X                  *float64
	Y                  *float64
	Color              *string
	IsCompleted        *bool
	IsLocked           *bool
	BackgroundImageURL *string
}

// CreateNode places a new node of type t near the viewport center, selects it
// and, for objectives, focuses it.
func (s *Session) CreateNode(t board.NodeType) (board.Node, error) {
	d := t.Dimensions()
	c := s.ViewportCenter()
	ref := geometry.Vec{X: c.X - d.W/2, Y: c.Y - d.H/2}
	return s.CreateNodeAt(t, ref, geometry.Spiral)
}

// CreateNodeAt places a new node of type t by searching from ref with the
// given strategy.
func (s *Session) CreateNodeAt(t board.NodeType, ref geometry.Vec, strategy geometry.Strategy) (board.Node, error) {
	n, err := s.newNode(t, ref, strategy)
	if err != nil {
		return board.Node{}, err
	}
	s.board.Nodes = append(s.board.Nodes, n)
	s.state.SelectedID = n.ID
	s.changed(ChangeNodes)
	if t == board.TypeObjective {
		s.Focus(interact.Focus{ID: n.ID, Kind: interact.FocusNode})
	}
	return n, nil
}

// newNode builds a node without adding it to the board.
func (s *Session) newNode(t board.NodeType, ref geometry.Vec, strategy geometry.Strategy) (board.Node, error) {
	return s.newNodeAmong(s.board.Nodes, t, ref, strategy)
}

func (s *Session) newNodeAmong(nodes []board.Node, t board.NodeType, ref geometry.Vec, strategy geometry.Strategy) (board.Node, error) {
	if !t.Valid() {
		return board.Node{}, fmt.Errorf("create node: unknown type %q", t)
	}
	d := t.Dimensions()
	pos, found := geometry.FindFreePosition(nodes, ref, d.W, d.H, strategy)
	debug.LogIf(!found, "planner: no free slot for %s near (%.0f, %.0f), overlapping", t, ref.X, ref.Y)
	return board.Node{
		ID:      board.NewID(),
		Type:    t,
		Content: t.DefaultContent(),
		X:       pos.X,
		Y:       pos.Y,
		Color:   t.DefaultColor(),
	}, nil
}

// UpdateNode shallow-merges patch into the node.
func (s *Session) UpdateNode(id string, patch NodePatch) error {
	n, ok := s.board.FindNode(id)
	if !ok {
		return fmt.Errorf("update node %s: %w", id, board.ErrNotFound)
	}
	if patch.Content != nil {
		n.Content = *patch.Content
	}
	if patch.X != nil {
		n.X = *patch.X
	}
	if patch.Y != nil {
		n.Y = *patch.Y
	}
	if patch.Color != nil {
		n.Color = *patch.Color
	}
	if patch.IsCompleted != nil {
		n.IsCompleted = *patch.IsCompleted
	}
	if patch.IsLocked != nil {
		n.IsLocked = *patch.IsLocked
	}
	if patch.BackgroundImageURL != nil {
		n.BackgroundImageURL = *patch.BackgroundImageURL
	}
	s.changed(ChangeNodes)
	return nil
}

// ToggleCompleted flips the completion stamp. Image nodes cannot be completed.
func (s *Session) ToggleCompleted(id string) error {
	n, ok := s.board.FindNode(id)
	if !ok {
		return fmt.Errorf("toggle completed %s: %w", id, board.ErrNotFound)
	}
	if !n.Type.Completable() {
		return fmt.Errorf("toggle completed %s: %s nodes have no stamp", id, n.Type)
	}
	v := !n.IsCompleted
	return s.UpdateNode(id, NodePatch{IsCompleted: &v})
}

// ToggleLocked flips the drag lock.
func (s *Session) ToggleLocked(id string) error {
	n, ok := s.board.FindNode(id)
	if !ok {
		return fmt.Errorf("toggle locked %s: %w", id, board.ErrNotFound)
	}
	v := !n.IsLocked
	return s.UpdateNode(id, NodePatch{IsLocked: &v})
}

// MoveNodeBy translates a node by a canvas-space delta. Locked nodes stay put.
func (s *Session) MoveNodeBy(id string, dx, dy float64) error {
	n, ok := s.board.FindNode(id)
	if !ok {
		return fmt.Errorf("move node %s: %w", id, board.ErrNotFound)
	}
	if n.IsLocked {
		return nil
	}
	s.moveNode(id, dx, dy)
	return nil
}

func (s *Session) moveNode(id string, dx, dy float64) {
	n, ok := s.board.FindNode(id)
	if !ok {
		return
	}
	x, y := n.X+dx, n.Y+dy
	_ = s.UpdateNode(id, NodePatch{X: &x, Y: &y})
}

// DeleteNode removes a node and every edge touching it in one step, and drops
// any selection, menu, drag, pending link or focus that referenced them.
func (s *Session) DeleteNode(id string) error {
	if _, ok := s.board.FindNode(id); !ok {
		return fmt.Errorf("delete node %s: %w", id, board.ErrNotFound)
	}

	nodes := make([]board.Node, 0, len(s.board.Nodes)-1)
	for _, n := range s.board.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	edges := make([]board.Edge, 0, len(s.board.Edges))
	var dropped []string
	for _, e := range s.board.Edges {
		if e.FromID == id || e.ToID == id {
			dropped = append(dropped, e.ID)
			continue
		}
		edges = append(edges, e)
	}
	s.board.Nodes, s.board.Edges = nodes, edges

	s.state, _ = interact.Step(s.state, interact.Forget{ID: id})
	for _, eid := range dropped {
		s.state, _ = interact.Step(s.state, interact.Forget{ID: eid})
	}
	debug.Log("planner: deleted node %s and %d edges", id, len(dropped))
	s.changed(ChangeNodes | ChangeEdges)
	return nil
}

// CreateConnectedIdea adds an idea strip below source joined by a neutral link.
func (s *Session) CreateConnectedIdea(sourceID string) (board.Node, board.Edge, error) {
	return s.createConnected(sourceID, board.TypeIdeaStrip, board.VariantNeutral)
}

// CreateConnectedTask adds a sticky task below source joined by a link of the
// given variant.
func (s *Session) CreateConnectedTask(sourceID string, variant board.LinkVariant) (board.Node, board.Edge, error) {
	return s.createConnected(sourceID, board.TypeSticky, variant)
}

func (s *Session) createConnected(sourceID string, t board.NodeType, variant board.LinkVariant) (board.Node, board.Edge, error) {
	src, ok := s.board.FindNode(sourceID)
	if !ok {
		return board.Node{}, board.Edge{}, fmt.Errorf("connect %s: %w", sourceID, board.ErrNotFound)
	}
	if !variant.Valid() {
		return board.Node{}, board.Edge{}, fmt.Errorf("connect %s: unknown variant %q", sourceID, variant)
	}
	n, err := s.newNode(t, geometry.Vec{X: src.X, Y: src.Y}, geometry.GridBelow)
	if err != nil {
		return board.Node{}, board.Edge{}, err
	}
	e := board.Edge{ID: board.NewID(), FromID: sourceID, ToID: n.ID, Variant: variant}
	s.board.Nodes = append(s.board.Nodes, n)
	s.board.Edges = append(s.board.Edges, e)
	s.state.SelectedID = n.ID
	s.state.OpenMenuID = ""
	s.changed(ChangeNodes | ChangeEdges)
	return n, e, nil
}

// ClearBoard removes every node and edge. There is no undo; callers confirm
// with the user first.
func (s *Session) ClearBoard() {
	s.board.Nodes = nil
	s.board.Edges = nil
	s.resetInteraction()
	s.changed(ChangeNodes | ChangeEdges)
}

// ReplaceNodes swaps in a whole new node set and drops every edge. The
// document import path uses it.
func (s *Session) ReplaceNodes(nodes []board.Node) {
	s.board.Nodes = nodes
	s.board.Edges = nil
	s.resetInteraction()
	s.changed(ChangeNodes | ChangeEdges)
}

// Reset replaces title, nodes and edges with a dataset.
func (s *Session) Reset(d board.Dataset) {
	fresh := board.FromDataset(d)
	*s.board = *fresh
	s.resetInteraction()
	s.ResetCamera()
	s.changed(ChangeTitle | ChangeNodes | ChangeEdges)
}

// SetTitle renames the board.
func (s *Session) SetTitle(title string) {
	if s.board.Title == title {
		return
	}
	s.board.Title = title
	s.changed(ChangeTitle)
}

func (s *Session) resetInteraction() {
	cam := s.state.Camera
	s.state = interact.NewState()
	s.state.Camera = cam
}
