package geometry

import (
	"math"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/casefile/pkg/board"
)

func node(id string, typ board.NodeType, x, y float64) board.Node {
	return board.Node{ID: id, Type: typ, X: x, Y: y}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCenterOfUsesDimensionTable(t *testing.T) {
	n := node("a", board.TypeObjective, 100, 50)
	c := CenterOf(n)
	if c.X != 228 || c.Y != 120 {
		t.Errorf("CenterOf objective = %+v, want (228,120)", c)
	}
}

func TestOverlaps(t *testing.T) {
	nodes := []board.Node{node("a", board.TypeSticky, 0, 0)}

	tests := []struct {
		name    string
		x, y    float64
		exclude string
		want    bool
	}{
		{"same spot", 0, 0, "", true},
		{"inside padding", 160 + 79, 0, "", true},
		{"just clear of padding", 160 + 80, 0, "", false},
		{"far away", 1000, 1000, "", false},
		{"excluded self", 0, 0, "a", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(nodes, tt.x, tt.y, 160, 160, tt.exclude); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindFreePositionEmptyBoardUsesReference(t *testing.T) {
	pos, found := FindFreePosition(nil, Vec{X: 10, Y: 20}, 160, 160, Spiral)
	if !found || pos.X != 10 || pos.Y != 20 {
		t.Errorf("got %+v found=%v", pos, found)
	}
}

func TestFindFreePositionGridBelow(t *testing.T) {
	parent := node("p", board.TypeSticky, 0, 0)
	nodes := []board.Node{parent}

	pos, found := FindFreePosition(nodes, Vec{X: parent.X, Y: parent.Y}, 160, 160, GridBelow)
	if !found {
		t.Fatal("expected a free slot")
	}
	if pos.X != 0 || pos.Y != GridRowHeight {
		t.Errorf("first child = %+v, want directly below", pos)
	}

	nodes = append(nodes, node("c1", board.TypeSticky, pos.X, pos.Y))
	pos2, _ := FindFreePosition(nodes, Vec{X: parent.X, Y: parent.Y}, 160, 160, GridBelow)
	if pos2.Y != GridRowHeight || pos2.X != GridOffsets[1] {
		t.Errorf("second child = %+v, want first row offset %v", pos2, GridOffsets[1])
	}
}

func TestFindFreePositionDegradesWhenCrowded(t *testing.T) {
	// A wall of nodes larger than the spiral can escape.
	var nodes []board.Node
	for i := -15; i <= 15; i++ {
		for j := -15; j <= 15; j++ {
			nodes = append(nodes, node("n", board.TypeSticky, float64(i)*200, float64(j)*200))
		}
	}
	_, found := FindFreePosition(nodes, Vec{}, 160, 160, Spiral)
	if found {
		t.Fatal("expected search budget to run out")
	}
}

func TestSpiralPlacementNeverOverlaps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 20).Draw(t, "count")
		types := board.AllNodeTypes()
		var nodes []board.Node
		for i := 0; i < count; i++ {
			typ := types[rapid.IntRange(0, len(types)-1).Draw(t, "type")]
			ref := Vec{
				X: rapid.Float64Range(-2000, 2000).Draw(t, "x"),
				Y: rapid.Float64Range(-2000, 2000).Draw(t, "y"),
			}
			d := typ.Dimensions()
			pos, found := FindFreePosition(nodes, ref, d.W, d.H, Spiral)
			if !found {
				t.Fatalf("budget exhausted after %d nodes", i)
			}
			if Overlaps(nodes, pos.X, pos.Y, d.W, d.H, "") {
				t.Fatalf("node %d overlaps at %+v", i, pos)
			}
			nodes = append(nodes, board.Node{ID: board.NewID(), Type: typ, X: pos.X, Y: pos.Y})
		}
	})
}

func TestFanOffsetsSymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "n")
		offs := FanOffsets(n)
		sum := 0.0
		seen := make(map[float64]bool)
		for _, o := range offs {
			sum += o
			if seen[o] {
				t.Fatalf("duplicate offset %v in %v", o, offs)
			}
			seen[o] = true
		}
		if math.Abs(sum) > 1e-9 {
			t.Fatalf("offsets %v sum to %v", offs, sum)
		}
	})
}

func TestRouteEdgesFansParallelEdges(t *testing.T) {
	b := &board.Board{
		Nodes: []board.Node{node("a", board.TypeSticky, 0, 0), node("b", board.TypeSticky, 600, 0)},
		Edges: []board.Edge{
			{ID: "e1", FromID: "a", ToID: "b", Variant: board.VariantCritical},
			{ID: "e2", FromID: "b", ToID: "a", Variant: board.VariantPositive},
			{ID: "e3", FromID: "a", ToID: "b", Variant: board.VariantNeutral},
		},
	}
	routes := RouteEdges(b)
	if len(routes) != 3 {
		t.Fatalf("expected 3 routes, got %d", len(routes))
	}
	mid := Vec{X: 380, Y: 80}
	sumY := 0.0
	ys := map[float64]bool{}
	for _, r := range routes {
		if !approx(r.Control.X, mid.X) {
			t.Errorf("%s control X = %v, want %v", r.EdgeID, r.Control.X, mid.X)
		}
		sumY += r.Control.Y - mid.Y
		ys[r.Control.Y] = true
	}
	if !approx(sumY, 0) {
		t.Errorf("control displacements sum to %v", sumY)
	}
	if len(ys) != 3 {
		t.Errorf("expected 3 distinct control points, got %v", ys)
	}
}

func TestRouteSingleEdgeIsStraight(t *testing.T) {
	b := &board.Board{
		Nodes: []board.Node{node("a", board.TypeGoal, 0, 0), node("b", board.TypeGoal, 400, 300)},
		Edges: []board.Edge{{ID: "e", FromID: "a", ToID: "b", Variant: board.VariantNeutral}},
	}
	r := RouteEdges(b)[0]
	want := Vec{X: 280, Y: 230}
	if !approx(r.Control.X, want.X) || !approx(r.Control.Y, want.Y) {
		t.Errorf("control = %+v, want midpoint %+v", r.Control, want)
	}
	if r.DistanceTo(want) > 1e-6 {
		t.Error("midpoint should lie on the curve")
	}
}

func TestRouteSkipsDanglingEdges(t *testing.T) {
	b := &board.Board{
		Nodes: []board.Node{node("a", board.TypeGoal, 0, 0)},
		Edges: []board.Edge{{ID: "e", FromID: "a", ToID: "gone", Variant: board.VariantNeutral}},
	}
	if routes := RouteEdges(b); len(routes) != 0 {
		t.Errorf("expected no routes, got %d", len(routes))
	}
}

func TestCameraRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := Camera{
			PanX:  rapid.Float64Range(-1000, 1000).Draw(t, "panX"),
			PanY:  rapid.Float64Range(-1000, 1000).Draw(t, "panY"),
			Scale: rapid.Float64Range(MinScale, MaxScale).Draw(t, "scale"),
		}
		p := Vec{X: rapid.Float64Range(-5000, 5000).Draw(t, "x"), Y: rapid.Float64Range(-5000, 5000).Draw(t, "y")}
		back := c.CanvasToScreen(c.ScreenToCanvas(p))
		if math.Abs(back.X-p.X) > 1e-6 || math.Abs(back.Y-p.Y) > 1e-6 {
			t.Fatalf("round trip %+v -> %+v", p, back)
		}
	})
}

func TestScreenToCanvasFormula(t *testing.T) {
	c := Camera{PanX: 100, PanY: 50, Scale: 2}
	got := c.ScreenToCanvas(Vec{X: 300, Y: 250})
	if got.X != 100 || got.Y != 100 {
		t.Errorf("ScreenToCanvas = %+v", got)
	}
}

func TestZoomClamps(t *testing.T) {
	c := Identity()
	if got := c.Zoomed(-1e6, WheelSensitivity).Scale; got != MaxScale {
		t.Errorf("zoom in clamp = %v", got)
	}
	if got := c.Zoomed(1e6, WheelSensitivity).Scale; got != MinScale {
		t.Errorf("zoom out clamp = %v", got)
	}
	if got := c.Zoomed(-100, 0.001).Scale; !approx(got, 1.1) {
		t.Errorf("zoom step = %v", got)
	}
}

func TestFocusOnCentersTarget(t *testing.T) {
	viewport := Vec{X: 800, Y: 600}
	target := Vec{X: 1234, Y: -56}
	c := FocusOn(target, viewport, FocusScale)
	got := c.CanvasToScreen(target)
	if !approx(got.X, 400) || !approx(got.Y, 300) {
		t.Errorf("target lands at %+v", got)
	}
	if c.Scale != FocusScale {
		t.Errorf("scale = %v", c.Scale)
	}
}

func TestTweenReachesTarget(t *testing.T) {
	start := time.Unix(0, 0)
	to := Camera{PanX: 100, PanY: -40, Scale: 2}
	tw := NewTween(Identity(), to, start)

	mid := tw.At(start.Add(tw.Duration / 2))
	if mid.PanX <= 0 || mid.PanX >= 100 {
		t.Errorf("mid-flight pan = %v", mid.PanX)
	}
	end := start.Add(tw.Duration)
	if !tw.Done(end) {
		t.Error("tween should be done")
	}
	if got := tw.At(end); got != to {
		t.Errorf("final camera = %+v", got)
	}
}

func TestHitTest(t *testing.T) {
	b := &board.Board{
		Nodes: []board.Node{
			node("under", board.TypeSticky, 0, 0),
			{ID: "over", Type: board.TypeSticky, X: 100, Y: 100, IsLocked: true},
			node("far", board.TypeSticky, 1000, 0),
		},
		Edges: []board.Edge{{ID: "e", FromID: "under", ToID: "far", Variant: board.VariantNeutral}},
	}
	routes := RouteEdges(b)

	if h := HitTest(b, routes, Vec{X: 120, Y: 120}, 0); h.Kind != HitNode || h.ID != "over" || !h.Locked {
		t.Errorf("overlapping point hit %+v, want topmost locked node", h)
	}
	if h := HitTest(b, routes, Vec{X: 580, Y: 85}, 0); h.Kind != HitEdge || h.ID != "e" {
		t.Errorf("edge point hit %+v", h)
	}
	if h := HitTest(b, routes, Vec{X: 500, Y: 900}, 0); h.Kind != HitBackground {
		t.Errorf("empty point hit %+v", h)
	}
}

func TestBounds(t *testing.T) {
	nodes := []board.Node{node("a", board.TypeSticky, -10, 5), node("b", board.TypeImage, 100, 100)}
	r := Bounds(nodes)
	if r.X != -10 || r.Y != 5 || r.W != 366 || r.H != 295 {
		t.Errorf("Bounds = %+v", r)
	}
	if (Bounds(nil) != Rect{}) {
		t.Error("empty bounds should be zero")
	}
}
