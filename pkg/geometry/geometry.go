// Package geometry holds the coordinate math for the planning board: bounding
// boxes, overlap tests, free-slot search, camera transforms and curved edge
// routing.
//
// Everything here is a pure function of the board and the camera; none of it
// reads interaction state.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/casefile/pkg/board"
)

// Vec is a point or displacement in canvas or screen space.
type Vec = r2.Vec

// Pad is the clearance kept around every node when placing new ones.
const Pad = 40.0

// Rect is an axis-aligned box.
type Rect struct {
	X, Y, W, H float64
}

// Padded grows the rect by p on every side.
func (r Rect) Padded(p float64) Rect {
	return Rect{X: r.X - p, Y: r.Y - p, W: r.W + 2*p, H: r.H + 2*p}
}

// Intersects reports whether two rects share interior area. Touching edges do
// not count.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X && r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Center returns the middle of r.
func (r Rect) Center() Vec {
	return Vec{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// RectOf returns the canvas-space footprint of n.
func RectOf(n board.Node) Rect {
	d := n.Type.Dimensions()
	return Rect{X: n.X, Y: n.Y, W: d.W, H: d.H}
}

// CenterOf returns the center of n using the shared dimension table.
func CenterOf(n board.Node) Vec {
	return RectOf(n).Center()
}

// Overlaps reports whether a w×h box at (x, y), padded by Pad, intersects the
// padded box of any node other than excludeID.
func Overlaps(nodes []board.Node, x, y, w, h float64, excludeID string) bool {
	candidate := Rect{X: x, Y: y, W: w, H: h}.Padded(Pad)
	for _, n := range nodes {
		if excludeID != "" && n.ID == excludeID {
			continue
		}
		if candidate.Intersects(RectOf(n).Padded(Pad)) {
			return true
		}
	}
	return false
}

// Distance is the euclidean distance between a and b.
func Distance(a, b Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
