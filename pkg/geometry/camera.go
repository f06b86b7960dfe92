package geometry

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// Zoom limits and defaults.
const (
	MinScale         = 0.1
	MaxScale         = 5.0
	FocusScale       = 1.5
	WheelSensitivity = 0.001
)

// Camera maps canvas space to screen space: screen = canvas*Scale + Pan.
type Camera struct {
	PanX  float64
	PanY  float64
	Scale float64
}

// Identity is the camera a view starts with.
func Identity() Camera {
	return Camera{Scale: 1}
}

// ScreenToCanvas converts a screen point into canvas coordinates.
func (c Camera) ScreenToCanvas(p Vec) Vec {
	s := c.scale()
	return Vec{X: (p.X - c.PanX) / s, Y: (p.Y - c.PanY) / s}
}

// CanvasToScreen converts a canvas point into screen coordinates.
func (c Camera) CanvasToScreen(p Vec) Vec {
	s := c.scale()
	return Vec{X: p.X*s + c.PanX, Y: p.Y*s + c.PanY}
}

// Panned translates the camera by a screen-space delta.
func (c Camera) Panned(dx, dy float64) Camera {
	c.PanX += dx
	c.PanY += dy
	return c
}

// Zoomed adjusts the scale by -deltaY*sensitivity, clamped to [MinScale, MaxScale].
func (c Camera) Zoomed(deltaY, sensitivity float64) Camera {
	if sensitivity <= 0 {
		sensitivity = WheelSensitivity
	}
	c.Scale = clamp(c.scale()-deltaY*sensitivity, MinScale, MaxScale)
	return c
}

// FocusOn returns a camera that puts target (canvas space) at the center of a
// viewport of the given screen size, at the given zoom.
func FocusOn(target Vec, viewport Vec, zoom float64) Camera {
	zoom = clamp(zoom, MinScale, MaxScale)
	center := r2.Scale(0.5, viewport)
	pan := r2.Sub(center, r2.Scale(zoom, target))
	return Camera{PanX: pan.X, PanY: pan.Y, Scale: zoom}
}

func (c Camera) scale() float64 {
	if c.Scale == 0 {
		return 1
	}
	return c.Scale
}

// Tween animates between two cameras. It carries no model state and may be
// abandoned at any frame.
type Tween struct {
	From     Camera
	To       Camera
	Start    time.Time
	Duration time.Duration
}

// DefaultTweenDuration is how long focus transitions take.
const DefaultTweenDuration = 350 * time.Millisecond

// NewTween starts an animation at now.
func NewTween(from, to Camera, now time.Time) *Tween {
	return &Tween{From: from, To: to, Start: now, Duration: DefaultTweenDuration}
}

// At returns the interpolated camera at now using an ease-out cubic curve.
func (t *Tween) At(now time.Time) Camera {
	p := t.progress(now)
	e := 1 - (1-p)*(1-p)*(1-p)
	lerp := func(a, b float64) float64 { return a + (b-a)*e }
	return Camera{
		PanX:  lerp(t.From.PanX, t.To.PanX),
		PanY:  lerp(t.From.PanY, t.To.PanY),
		Scale: lerp(t.From.scale(), t.To.scale()),
	}
}

// Done reports whether the animation has reached its target.
func (t *Tween) Done(now time.Time) bool {
	return t.progress(now) >= 1
}

func (t *Tween) progress(now time.Time) float64 {
	if t.Duration <= 0 {
		return 1
	}
	return clamp(float64(now.Sub(t.Start))/float64(t.Duration), 0, 1)
}
