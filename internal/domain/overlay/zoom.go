package overlay

import (
	"fmt"
	"math"
	"strconv"
	"sync"
)

// Zoom limits.
const (
	ZoomStep    = 0.1
	MinZoom     = 0.1
	DefaultZoom = 1.0
)

// Point is a position in viewport coordinates.
type Point struct {
	X float64
	Y float64
}

// Scroll is a scroll offset of the viewport.
type Scroll struct {
	Left float64
	Top  float64
}

// Zoom holds the scale applied to the isolated content root.
type Zoom struct {
	mu    sync.Mutex
	scale float64
}

// NewZoom starts at scale; non-positive values start at DefaultZoom.
func NewZoom(scale float64) *Zoom {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = DefaultZoom
	}
	return &Zoom{scale: clampScale(scale)}
}

// Scale returns the current scale.
func (z *Zoom) Scale() float64 {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.scale
}

// In increases the scale by one step.
func (z *Zoom) In() float64 {
	return z.adjust(ZoomStep)
}

// Out decreases the scale by one step, never below MinZoom.
func (z *Zoom) Out() float64 {
	return z.adjust(-ZoomStep)
}

// Reset returns to DefaultZoom.
func (z *Zoom) Reset() float64 {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.scale = DefaultZoom
	return z.scale
}

func (z *Zoom) adjust(delta float64) float64 {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.scale = clampScale(z.scale + delta)
	return z.scale
}

// ZoomAt changes the scale by delta while keeping the content point under
// pointer fixed. It returns the new scale and the scroll offset that keeps
// the anchor in place.
func (z *Zoom) ZoomAt(delta float64, pointer Point, scroll Scroll) (float64, Scroll) {
	z.mu.Lock()
	defer z.mu.Unlock()

	before := z.scale
	after := clampScale(before + delta)
	z.scale = after

	// content-space coordinates of the point under the pointer
	cx := (scroll.Left + pointer.X) / before
	cy := (scroll.Top + pointer.Y) / before

	return after, Scroll{
		Left: math.Max(0, cx*after-pointer.X),
		Top:  math.Max(0, cy*after-pointer.Y),
	}
}

// Transform returns the CSS transform for the current scale.
func (z *Zoom) Transform() string {
	return Transform(z.Scale())
}

// Transform renders a CSS scale transform.
func Transform(scale float64) string {
	return fmt.Sprintf("scale(%s)", strconv.FormatFloat(scale, 'f', -1, 64))
}

// clampScale rounds to hundredths so repeated steps do not drift.
func clampScale(v float64) float64 {
	v = math.Round(v*100) / 100
	if v < MinZoom {
		return MinZoom
	}
	return v
}
