package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZoomOutClampsAtFloor(t *testing.T) {
	z := NewZoom(1)
	for i := 0; i < 20; i++ {
		z.Out()
		assert.GreaterOrEqual(t, z.Scale(), MinZoom)
	}
	assert.Equal(t, 0.1, z.Scale())
}

func TestZoomStepsDoNotDrift(t *testing.T) {
	z := NewZoom(1)
	for i := 0; i < 7; i++ {
		z.In()
	}
	assert.Equal(t, 1.7, z.Scale())
	for i := 0; i < 7; i++ {
		z.Out()
	}
	assert.Equal(t, 1.0, z.Scale())
}

func TestZoomReset(t *testing.T) {
	for _, start := range []float64{0.1, 0.5, 1, 3.7} {
		z := NewZoom(start)
		z.In()
		z.Out()
		z.Out()
		assert.Equal(t, 1.0, z.Reset())
		assert.Equal(t, 1.0, z.Scale())
	}
}

func TestNewZoomNormalizes(t *testing.T) {
	assert.Equal(t, 1.0, NewZoom(0).Scale())
	assert.Equal(t, 1.0, NewZoom(-2).Scale())
	assert.Equal(t, 0.1, NewZoom(0.04).Scale())
	assert.Equal(t, 1.25, NewZoom(1.25).Scale())
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	z := NewZoom(1)
	scale, scroll := z.ZoomAt(ZoomStep, Point{X: 100, Y: 50}, Scroll{Left: 0, Top: 0})
	assert.Equal(t, 1.1, scale)
	assert.InDelta(t, 10, scroll.Left, 1e-9)
	assert.InDelta(t, 5, scroll.Top, 1e-9)

	// zooming back out around the same pointer restores the origin
	scale, scroll = z.ZoomAt(-ZoomStep, Point{X: 100, Y: 50}, scroll)
	assert.Equal(t, 1.0, scale)
	assert.InDelta(t, 0, scroll.Left, 1e-9)
	assert.InDelta(t, 0, scroll.Top, 1e-9)
}

func TestZoomAtNeverScrollsNegative(t *testing.T) {
	z := NewZoom(2)
	_, scroll := z.ZoomAt(-ZoomStep, Point{X: 400, Y: 300}, Scroll{})
	assert.Equal(t, Scroll{}, scroll)
}

func TestTransform(t *testing.T) {
	assert.Equal(t, "scale(1)", Transform(1))
	assert.Equal(t, "scale(1.1)", NewZoom(1.1).Transform())
	assert.Equal(t, "scale(0.1)", Transform(0.1))
}
