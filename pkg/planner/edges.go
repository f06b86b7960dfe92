package planner

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/interact"
)

// ErrSelfLink is returned when a link would start and end on the same node.
var ErrSelfLink = errors.New("link endpoints must differ")

// CreateEdge appends a link. Parallel links between the same pair are allowed.
func (s *Session) CreateEdge(fromID, toID string, variant board.LinkVariant) (board.Edge, error) {
	if !variant.Valid() {
		return board.Edge{}, fmt.Errorf("create edge: unknown variant %q", variant)
	}
	if fromID == toID {
		return board.Edge{}, fmt.Errorf("create edge %s: %w", fromID, ErrSelfLink)
	}
	if _, ok := s.board.FindNode(fromID); !ok {
		return board.Edge{}, fmt.Errorf("create edge from %s: %w", fromID, board.ErrNotFound)
	}
	if _, ok := s.board.FindNode(toID); !ok {
		return board.Edge{}, fmt.Errorf("create edge to %s: %w", toID, board.ErrNotFound)
	}
	e := board.Edge{ID: board.NewID(), FromID: fromID, ToID: toID, Variant: variant}
	s.board.Edges = append(s.board.Edges, e)
	s.changed(ChangeEdges)
	return e, nil
}

// UpdateEdgeVariant recolors a link.
func (s *Session) UpdateEdgeVariant(id string, variant board.LinkVariant) error {
	if !variant.Valid() {
		return fmt.Errorf("update edge %s: unknown variant %q", id, variant)
	}
	e, ok := s.board.FindEdge(id)
	if !ok {
		return fmt.Errorf("update edge %s: %w", id, board.ErrNotFound)
	}
	e.Variant = variant
	s.changed(ChangeEdges)
	return nil
}

// DeleteEdge removes a single link and exits focus if it was the target.
func (s *Session) DeleteEdge(id string) error {
	idx := -1
	for i, e := range s.board.Edges {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("delete edge %s: %w", id, board.ErrNotFound)
	}
	s.board.Edges = append(s.board.Edges[:idx:idx], s.board.Edges[idx+1:]...)
	s.state, _ = interact.Step(s.state, interact.Forget{ID: id})
	s.changed(ChangeEdges)
	return nil
}
