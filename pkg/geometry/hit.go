package geometry

import "github.com/vanderheijden86/casefile/pkg/board"

// HitKind says what a pointer landed on.
type HitKind int

const (
	HitBackground HitKind = iota
	HitNode
	HitEdge
)

// Hit is the result of resolving a canvas point against the board.
type Hit struct {
	Kind   HitKind
	ID     string
	Locked bool
}

// EdgeHitTolerance is how close (canvas units) a point must be to count as on an edge.
const EdgeHitTolerance = 12.0

// HitTest resolves p (canvas space). Nodes drawn later sit on top, so they are
// checked last-to-first before edges.
func HitTest(b *board.Board, routes []Route, p Vec, tolerance float64) Hit {
	for i := len(b.Nodes) - 1; i >= 0; i-- {
		n := b.Nodes[i]
		if RectOf(n).Contains(p) {
			return Hit{Kind: HitNode, ID: n.ID, Locked: n.IsLocked}
		}
	}
	if tolerance <= 0 {
		tolerance = EdgeHitTolerance
	}
	best, bestID := tolerance, ""
	for _, r := range routes {
		if d := r.DistanceTo(p); d <= best {
			best, bestID = d, r.EdgeID
		}
	}
	if bestID != "" {
		return Hit{Kind: HitEdge, ID: bestID}
	}
	return Hit{Kind: HitBackground}
}

// Bounds returns the box enclosing every node, or a zero rect for an empty board.
func Bounds(nodes []board.Node) Rect {
	if len(nodes) == 0 {
		return Rect{}
	}
	r := RectOf(nodes[0])
	minX, minY, maxX, maxY := r.X, r.Y, r.X+r.W, r.Y+r.H
	for _, n := range nodes[1:] {
		r := RectOf(n)
		minX = min(minX, r.X)
		minY = min(minY, r.Y)
		maxX = max(maxX, r.X+r.W)
		maxY = max(maxY, r.Y+r.H)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
