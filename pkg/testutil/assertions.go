package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/geometry"
)

// AssertCounts verifies the number of nodes and edges.
func AssertCounts(t *testing.T, b *board.Board, nodes, edges int) {
	t.Helper()
	if len(b.Nodes) != nodes {
		t.Errorf("expected %d nodes, got %d", nodes, len(b.Nodes))
	}
	if len(b.Edges) != edges {
		t.Errorf("expected %d edges, got %d", edges, len(b.Edges))
	}
}

// AssertNoDuplicateIDs verifies node and edge ids are unique.
func AssertNoDuplicateIDs(t *testing.T, b *board.Board) {
	t.Helper()
	seen := make(map[string]bool)
	for _, n := range b.Nodes {
		if seen[n.ID] {
			t.Errorf("duplicate node ID: %s", n.ID)
		}
		seen[n.ID] = true
	}
	seen = make(map[string]bool)
	for _, e := range b.Edges {
		if seen[e.ID] {
			t.Errorf("duplicate edge ID: %s", e.ID)
		}
		seen[e.ID] = true
	}
}

// AssertNoDanglingEdges verifies every edge endpoint resolves to a node.
func AssertNoDanglingEdges(t *testing.T, b *board.Board) {
	t.Helper()
	for _, e := range b.Edges {
		if _, ok := b.FindNode(e.FromID); !ok {
			t.Errorf("edge %s has dangling source %s", e.ID, e.FromID)
		}
		if _, ok := b.FindNode(e.ToID); !ok {
			t.Errorf("edge %s has dangling target %s", e.ID, e.ToID)
		}
	}
}

// AssertNotReferenced verifies no edge touches id.
func AssertNotReferenced(t *testing.T, b *board.Board, id string) {
	t.Helper()
	for _, e := range b.Edges {
		if e.FromID == id || e.ToID == id {
			t.Errorf("edge %s still references %s", e.ID, id)
		}
	}
}

// AssertEdgeExists verifies a link from -> to of the given variant exists.
func AssertEdgeExists(t *testing.T, b *board.Board, from, to string, variant board.LinkVariant) {
	t.Helper()
	for _, e := range b.Edges {
		if e.FromID == from && e.ToID == to && e.Variant == variant {
			return
		}
	}
	t.Errorf("expected %s edge %s -> %s not found", variant, from, to)
}

// AssertNoOverlap verifies that no two nodes' padded boxes intersect.
func AssertNoOverlap(t *testing.T, nodes []board.Node) {
	t.Helper()
	for i, n := range nodes {
		d := n.Type.Dimensions()
		if geometry.Overlaps(nodes[:i], n.X, n.Y, d.W, d.H, "") {
			t.Errorf("node %s at (%.0f, %.0f) overlaps an earlier node", n.ID, n.X, n.Y)
		}
	}
}

// CountByType returns a map of node type -> count.
func CountByType(nodes []board.Node) map[board.NodeType]int {
	counts := make(map[board.NodeType]int)
	for _, n := range nodes {
		counts[n.Type]++
	}
	return counts
}

// IDs returns the ids of nodes in order.
func IDs(nodes []board.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()
	if g.update {
		if err := os.MkdirAll(g.dir, 0o755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0o644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Skipf("golden file does not exist: %s (run with GENERATE_GOLDEN=1 to create it)", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) == actual {
		return
	}
	expectedLines := strings.Split(string(expected), "\n")
	actualLines := strings.Split(actual, "\n")
	for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
		var expLine, actLine string
		if i < len(expectedLines) {
			expLine = expectedLines[i]
		}
		if i < len(actualLines) {
			actLine = actualLines[i]
		}
		if expLine != actLine {
			g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s", i+1, expLine, actLine)
			return
		}
	}
}

// AssertJSON compares actual value as JSON against the golden file.
func (g *GoldenFile) AssertJSON(actual any) {
	g.t.Helper()

	data, err := json.MarshalIndent(actual, "", "  ")
	if err != nil {
		g.t.Fatalf("failed to marshal actual value: %v", err)
	}
	g.Assert(string(data))
}
