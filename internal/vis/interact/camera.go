// Package interact handles pan and zoom of the map view.
package interact

import (
	"gioui.org/f32"
	"gioui.org/io/pointer"

	"github.com/elektrokombinacija/aasipp/internal/core"
)

const (
	minZoom = 4   // Pixels per cell
	maxZoom = 200 // Pixels per cell
)

// Camera maps grid coordinates to screen pixels. Column J runs along screen X
// and row I along screen Y; cell (i, j) is centered on world point (i, j).
type Camera struct {
	OffsetX float32 // Screen position of world point (-0.5, -0.5)
	OffsetY float32
	Zoom    float32 // Pixels per cell

	dragging bool
	lastX    float32
	lastY    float32
	fitted   bool
}

// NewCamera creates a camera at 32 pixels per cell.
func NewCamera() *Camera {
	return &Camera{OffsetX: 20, OffsetY: 20, Zoom: 32}
}

// Reset makes the next Fit call recenter the view.
func (c *Camera) Reset() {
	c.fitted = false
}

// ToScreen converts a grid point to screen coordinates.
func (c *Camera) ToScreen(p core.Point) f32.Point {
	return f32.Pt(
		float32(p.J+0.5)*c.Zoom+c.OffsetX,
		float32(p.I+0.5)*c.Zoom+c.OffsetY,
	)
}

// ToWorld converts screen coordinates to a grid point.
func (c *Camera) ToWorld(s f32.Point) core.Point {
	return core.Point{
		I: float64((s.Y-c.OffsetY)/c.Zoom) - 0.5,
		J: float64((s.X-c.OffsetX)/c.Zoom) - 0.5,
	}
}

// Scale converts a length in cells to pixels.
func (c *Camera) Scale(cells float64) float32 {
	return float32(cells) * c.Zoom
}

// HandleEvent pans with the secondary or middle button and zooms on scroll.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary) {
			c.dragging = true
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Drag:
		if c.dragging {
			c.Pan(ev.Position.X-c.lastX, ev.Position.Y-c.lastY)
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Release:
		c.dragging = false

	case pointer.Scroll:
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/1.1, ev.Position)
		case ev.Scroll.Y < 0:
			c.ZoomBy(1.1, ev.Position)
		}
	}
}

// Pan moves the view by a screen delta.
func (c *Camera) Pan(dx, dy float32) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomBy zooms by factor keeping the grid point under center fixed.
func (c *Camera) ZoomBy(factor float32, center f32.Point) {
	anchor := c.ToWorld(center)
	c.Zoom = clampZoom(c.Zoom * factor)
	moved := c.ToScreen(anchor)
	c.OffsetX += center.X - moved.X
	c.OffsetY += center.Y - moved.Y
}

// Fit scales and centers a width x height grid inside the screen, leaving
// margin pixels on every side. It does nothing once fitted until Reset.
func (c *Camera) Fit(width, height int, screenW, screenH, margin float32) {
	if c.fitted || width <= 0 || height <= 0 {
		return
	}
	zx := (screenW - 2*margin) / float32(width)
	zy := (screenH - 2*margin) / float32(height)
	c.Zoom = clampZoom(min(zx, zy))
	c.OffsetX = (screenW - float32(width)*c.Zoom) / 2
	c.OffsetY = (screenH - float32(height)*c.Zoom) / 2
	c.fitted = true
}

func clampZoom(z float32) float32 {
	return max(minZoom, min(maxZoom, z))
}
