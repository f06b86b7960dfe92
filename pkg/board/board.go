// Package board holds the planning board data model: nodes, links and the
// board aggregate that owns them.
//
// The model carries no placement or interaction logic. Mutations go through
// pkg/planner; this package only offers lookups and invariant checks.
package board

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an id does not resolve to a live node or edge.
var ErrNotFound = errors.New("not found")

// Node is a placeable item on the canvas. X and Y are the top-left corner in
// canvas coordinates, not screen cells.
type Node struct {
	ID                 string   `json:"id"`
	Type               NodeType `json:"type"`
	Content            string   `json:"content"`
	X                  float64  `json:"x"`
	Y                  float64  `json:"y"`
	Color              string   `json:"color,omitempty"`
	IsCompleted        bool     `json:"isCompleted,omitempty"`
	IsLocked           bool     `json:"isLocked,omitempty"`
	BackgroundImageURL string   `json:"backgroundImageUrl,omitempty"`
}

// Edge is a directed, variant-tagged link between two nodes.
type Edge struct {
	ID      string      `json:"id"`
	FromID  string      `json:"fromId"`
	ToID    string      `json:"toId"`
	Variant LinkVariant `json:"variant"`
}

// Board is the aggregate of title, nodes and edges. Slices keep creation order.
type Board struct {
	Title string `json:"title"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// FindNode returns a pointer into the node slice, valid until the next append.
func (b *Board) FindNode(id string) (*Node, bool) {
	for i := range b.Nodes {
		if b.Nodes[i].ID == id {
			return &b.Nodes[i], true
		}
	}
	return nil, false
}

// FindEdge returns a pointer into the edge slice, valid until the next append.
func (b *Board) FindEdge(id string) (*Edge, bool) {
	for i := range b.Edges {
		if b.Edges[i].ID == id {
			return &b.Edges[i], true
		}
	}
	return nil, false
}

// IncomingEdges returns edges ending at nodeID in creation order.
func (b *Board) IncomingEdges(nodeID string) []Edge {
	var out []Edge
	for _, e := range b.Edges {
		if e.ToID == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// OutgoingEdges returns edges starting at nodeID in creation order.
func (b *Board) OutgoingEdges(nodeID string) []Edge {
	var out []Edge
	for _, e := range b.Edges {
		if e.FromID == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// LiveEdges returns the edges whose endpoints both resolve. Dangling edges
// should not survive a cascade delete but are filtered here regardless.
func (b *Board) LiveEdges() []Edge {
	ids := make(map[string]bool, len(b.Nodes))
	for _, n := range b.Nodes {
		ids[n.ID] = true
	}
	out := make([]Edge, 0, len(b.Edges))
	for _, e := range b.Edges {
		if ids[e.FromID] && ids[e.ToID] {
			out = append(out, e)
		}
	}
	return out
}

// NodesByType returns nodes of type t in creation order.
func (b *Board) NodesByType(t NodeType) []Node {
	var out []Node
	for _, n := range b.Nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a deep copy.
func (b *Board) Clone() *Board {
	c := &Board{Title: b.Title}
	c.Nodes = append([]Node(nil), b.Nodes...)
	c.Edges = append([]Edge(nil), b.Edges...)
	return c
}

// Validate checks the model invariants: unique ids, known types and variants.
// Dangling edge endpoints are tolerated (render-time filter).
func (b *Board) Validate() error {
	seen := make(map[string]bool, len(b.Nodes))
	for i, n := range b.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: empty id", i)
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		if !n.Type.Valid() {
			return fmt.Errorf("node %s: unknown type %q", n.ID, n.Type)
		}
	}
	edgeSeen := make(map[string]bool, len(b.Edges))
	for i, e := range b.Edges {
		if e.ID == "" {
			return fmt.Errorf("edge %d: empty id", i)
		}
		if edgeSeen[e.ID] {
			return fmt.Errorf("duplicate edge id %q", e.ID)
		}
		edgeSeen[e.ID] = true
		if !e.Variant.Valid() {
			return fmt.Errorf("edge %s: unknown variant %q", e.ID, e.Variant)
		}
	}
	return nil
}
