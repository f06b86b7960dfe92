package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/metrics"
)

// FanSpread is the perpendicular distance between neighbouring parallel edges.
const FanSpread = 40.0

// Route is a quadratic curve from the center of one node to another.
type Route struct {
	EdgeID  string
	Variant board.LinkVariant
	From    Vec
	Control Vec
	To      Vec
	Offset  float64 // signed perpendicular displacement of the control point
}

// PointAt evaluates the curve at t in [0, 1].
func (r Route) PointAt(t float64) Vec {
	u := 1 - t
	return r2.Add(r2.Add(r2.Scale(u*u, r.From), r2.Scale(2*u*t, r.Control)), r2.Scale(t*t, r.To))
}

// Midpoint is the point halfway along the curve parameter.
func (r Route) Midpoint() Vec {
	return r.PointAt(0.5)
}

// Sample returns n+1 evenly spaced points along the curve.
func (r Route) Sample(n int) []Vec {
	if n < 1 {
		n = 1
	}
	pts := make([]Vec, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, r.PointAt(float64(i)/float64(n)))
	}
	return pts
}

// DistanceTo approximates the shortest distance from p to the curve.
func (r Route) DistanceTo(p Vec) float64 {
	pts := r.Sample(32)
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		if d := segmentDistance(p, pts[i-1], pts[i]); d < best {
			best = d
		}
	}
	return best
}

func segmentDistance(p, a, b Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Dot(ab, ab)
	if l2 == 0 {
		return Distance(p, a)
	}
	t := clamp(r2.Dot(r2.Sub(p, a), ab)/l2, 0, 1)
	return Distance(p, r2.Add(a, r2.Scale(t, ab)))
}

// FanOffsets returns n signed offsets centered on zero, FanSpread apart.
// They sum to zero and are pairwise distinct for n > 1.
func FanOffsets(n int) []float64 {
	out := make([]float64, n)
	mid := float64(n-1) / 2
	for i := range out {
		out[i] = (float64(i) - mid) * FanSpread
	}
	return out
}

type pairKey struct{ lo, hi string }

func keyFor(e board.Edge) pairKey {
	if e.FromID < e.ToID {
		return pairKey{e.FromID, e.ToID}
	}
	return pairKey{e.ToID, e.FromID}
}

// RouteEdges computes a curve for every live edge. Edges sharing the same
// unordered node pair fan out symmetrically around the straight line; the
// normal is taken from the canonical (lower id first) orientation so that
// A→B and B→A siblings never land on top of each other.
func RouteEdges(b *board.Board) []Route {
	defer metrics.Timer(metrics.EdgeRouting)()

	centers := make(map[string]Vec, len(b.Nodes))
	for _, n := range b.Nodes {
		centers[n.ID] = CenterOf(n)
	}

	live := b.LiveEdges()
	siblings := make(map[pairKey][]int)
	for i, e := range live {
		k := keyFor(e)
		siblings[k] = append(siblings[k], i)
	}
	offsetOf := make([]float64, len(live))
	for _, idx := range siblings {
		offs := FanOffsets(len(idx))
		for j, i := range idx {
			offsetOf[i] = offs[j]
		}
	}

	routes := make([]Route, 0, len(live))
	for i, e := range live {
		p1, p2 := centers[e.FromID], centers[e.ToID]
		k := keyFor(e)
		normal := unitNormal(centers[k.lo], centers[k.hi])
		mid := r2.Scale(0.5, r2.Add(p1, p2))
		routes = append(routes, Route{
			EdgeID:  e.ID,
			Variant: e.Variant,
			From:    p1,
			To:      p2,
			Control: r2.Add(mid, r2.Scale(offsetOf[i], normal)),
			Offset:  offsetOf[i],
		})
	}
	return routes
}

// unitNormal returns the left-hand unit normal of a→b, or straight up when the
// points coincide.
func unitNormal(a, b Vec) Vec {
	d := r2.Sub(b, a)
	if r2.Norm(d) == 0 {
		return Vec{X: 0, Y: -1}
	}
	return r2.Unit(Vec{X: -d.Y, Y: d.X})
}
