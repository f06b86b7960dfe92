package geometry

import (
	"math"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/debug"
	"github.com/vanderheijden86/casefile/pkg/metrics"
)

// Strategy selects how FindFreePosition searches for an empty slot.
type Strategy int

const (
	// Spiral walks outward from the reference point. Used for toolbar creation
	// around the viewport center.
	Spiral Strategy = iota
	// GridBelow tries fixed rows under the reference point. Used to cascade
	// children below a parent node.
	GridBelow
)

func (s Strategy) String() string {
	switch s {
	case GridBelow:
		return "grid-below"
	default:
		return "spiral"
	}
}

// Placement search tuning.
const (
	SpiralRadiusStep = 15.0
	SpiralAngleStep  = 0.5
	SpiralBudget     = 200

	GridRowHeight = 280.0
	GridRows      = 5
)

// GridOffsets are the horizontal offsets tried on each grid-below row:
// centered first, then alternating outward.
var GridOffsets = []float64{0, 340, -340, 680, -680, 1020, -1020, 1360, -1360}

// FindFreePosition returns a top-left position for a w×h node near ref that
// does not overlap existing nodes. found is false when the search budget ran
// out; the returned position is then the last candidate tried, so callers
// always get a usable spot.
func FindFreePosition(nodes []board.Node, ref Vec, w, h float64, strategy Strategy) (pos Vec, found bool) {
	defer metrics.Timer(metrics.PlacementSearch)()

	if strategy == GridBelow {
		for k := 1; k <= GridRows; k++ {
			y := ref.Y + float64(k)*GridRowHeight
			for _, dx := range GridOffsets {
				x := ref.X + dx
				if !Overlaps(nodes, x, y, w, h, "") {
					return Vec{X: x, Y: y}, true
				}
			}
		}
		debug.Log("geometry: grid-below exhausted at (%.0f, %.0f), falling back to spiral", ref.X, ref.Y)
		return spiral(nodes, Vec{X: ref.X, Y: ref.Y + GridRowHeight}, w, h)
	}
	return spiral(nodes, ref, w, h)
}

func spiral(nodes []board.Node, ref Vec, w, h float64) (Vec, bool) {
	radius, angle := 0.0, 0.0
	var last Vec
	for i := 0; i < SpiralBudget; i++ {
		last = Vec{X: ref.X + math.Cos(angle)*radius, Y: ref.Y + math.Sin(angle)*radius}
		if !Overlaps(nodes, last.X, last.Y, w, h, "") {
			return last, true
		}
		radius += SpiralRadiusStep
		angle += SpiralAngleStep
	}
	debug.Log("geometry: spiral budget exhausted near (%.0f, %.0f)", ref.X, ref.Y)
	return last, false
}
