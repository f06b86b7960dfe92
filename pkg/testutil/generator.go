// Package testutil provides board fixture generators and invariant assertions
// shared by the casefile tests. All generators produce deterministic output for
// reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vanderheijden86/casefile/pkg/board"
)

// GeneratorConfig controls board generation.
type GeneratorConfig struct {
	Seed     int64               // Random seed for determinism (0 = use current time)
	IDPrefix string              // Prefix for node IDs (default: "n")
	TypeMix  []board.NodeType    // Node type distribution (nil = all sticky)
	Variants []board.LinkVariant // Link variant distribution (nil = all neutral)
	Spacing  float64             // Grid spacing between generated nodes (default: 400)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42,
		IDPrefix: "n",
		TypeMix:  []board.NodeType{board.TypeSticky},
		Variants: []board.LinkVariant{board.VariantNeutral},
		Spacing:  400,
	}
}

// Generator creates test boards with various topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "n"
	}
	if len(cfg.TypeMix) == 0 {
		cfg.TypeMix = []board.NodeType{board.TypeSticky}
	}
	if len(cfg.Variants) == 0 {
		cfg.Variants = []board.LinkVariant{board.VariantNeutral}
	}
	if cfg.Spacing <= 0 {
		cfg.Spacing = 400
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// NodeID generates the id of the i-th generated node.
func (g *Generator) NodeID(i int) string {
	return fmt.Sprintf("%s%d", g.cfg.IDPrefix, i)
}

// Nodes lays out size nodes on a square grid so none overlap.
func (g *Generator) Nodes(size int) []board.Node {
	cols := 1
	for cols*cols < size {
		cols++
	}
	nodes := make([]board.Node, size)
	for i := range nodes {
		t := g.cfg.TypeMix[g.rng.Intn(len(g.cfg.TypeMix))]
		nodes[i] = board.Node{
			ID:      g.NodeID(i),
			Type:    t,
			Content: fmt.Sprintf("%s %d", t.Label(), i),
			X:       float64(i%cols) * g.cfg.Spacing,
			Y:       float64(i/cols) * g.cfg.Spacing,
			Color:   t.DefaultColor(),
		}
	}
	return nodes
}

func (g *Generator) edge(i int, from, to string) board.Edge {
	return board.Edge{
		ID:      fmt.Sprintf("e%d", i),
		FromID:  from,
		ToID:    to,
		Variant: g.cfg.Variants[g.rng.Intn(len(g.cfg.Variants))],
	}
}

// Chain creates n0 -> n1 -> ... -> n{size-1}.
func (g *Generator) Chain(size int) *board.Board {
	b := &board.Board{Title: fmt.Sprintf("chain-%d", size), Nodes: g.Nodes(size)}
	for i := 1; i < size; i++ {
		b.Edges = append(b.Edges, g.edge(i-1, g.NodeID(i-1), g.NodeID(i)))
	}
	return b
}

// Star creates a hub n0 linked to every other node.
func (g *Generator) Star(size int) *board.Board {
	b := &board.Board{Title: fmt.Sprintf("star-%d", size), Nodes: g.Nodes(size)}
	for i := 1; i < size; i++ {
		b.Edges = append(b.Edges, g.edge(i-1, g.NodeID(0), g.NodeID(i)))
	}
	return b
}

// Parallel creates two nodes joined by count links, alternating direction.
func (g *Generator) Parallel(count int) *board.Board {
	b := &board.Board{Title: fmt.Sprintf("parallel-%d", count), Nodes: g.Nodes(2)}
	for i := 0; i < count; i++ {
		from, to := g.NodeID(0), g.NodeID(1)
		if i%2 == 1 {
			from, to = to, from
		}
		b.Edges = append(b.Edges, g.edge(i, from, to))
	}
	return b
}

// Random creates size nodes and roughly density*size*(size-1) links between
// random distinct pairs. Parallel links are possible.
func (g *Generator) Random(size int, density float64) *board.Board {
	b := &board.Board{Title: fmt.Sprintf("random-%d", size), Nodes: g.Nodes(size)}
	if size < 2 {
		return b
	}
	count := int(density * float64(size*(size-1)))
	for i := 0; i < count; i++ {
		from := g.rng.Intn(size)
		to := g.rng.Intn(size - 1)
		if to >= from {
			to++
		}
		b.Edges = append(b.Edges, g.edge(i, g.NodeID(from), g.NodeID(to)))
	}
	return b
}

// Disconnected creates several chains with no links between them.
func (g *Generator) Disconnected(components, size int) *board.Board {
	b := &board.Board{Title: fmt.Sprintf("islands-%dx%d", components, size), Nodes: g.Nodes(components * size)}
	k := 0
	for c := 0; c < components; c++ {
		for i := 1; i < size; i++ {
			b.Edges = append(b.Edges, g.edge(k, g.NodeID(c*size+i-1), g.NodeID(c*size+i)))
			k++
		}
	}
	return b
}
