// Package draw renders the map, agents, obstacles and trajectories.
package draw

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
)

func drawSegment(gtx layout.Context, a, b f32.Point, width float32, col color.NRGBA) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}

	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(a.X+px, a.Y+py))
	path.LineTo(f32.Pt(b.X+px, b.Y+py))
	path.LineTo(f32.Pt(b.X-px, b.Y-py))
	path.LineTo(f32.Pt(a.X-px, a.Y-py))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func circlePoints(c f32.Point, r float32, segments int) []f32.Point {
	pts := make([]f32.Point, segments)
	for i := range pts {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		pts[i] = f32.Pt(c.X+r*float32(math.Cos(angle)), c.Y+r*float32(math.Sin(angle)))
	}
	return pts
}

func drawFilledCircle(gtx layout.Context, c f32.Point, r float32, col color.NRGBA) {
	if r <= 0 {
		return
	}
	var path clip.Path
	path.Begin(gtx.Ops)
	for i, p := range circlePoints(c, r, 24) {
		if i == 0 {
			path.MoveTo(p)
		} else {
			path.LineTo(p)
		}
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// drawCircleOutline fills a ring between r-stroke and r.
func drawCircleOutline(gtx layout.Context, c f32.Point, r, stroke float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	outer := circlePoints(c, r, 32)
	path.MoveTo(outer[0])
	for _, p := range outer[1:] {
		path.LineTo(p)
	}
	path.Close()

	inner := circlePoints(c, max(0, r-stroke), 32)
	path.MoveTo(inner[0])
	// Opposite winding cuts the hole.
	for i := len(inner) - 1; i > 0; i-- {
		path.LineTo(inner[i])
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func fillRect(gtx layout.Context, r image.Rectangle, col color.NRGBA) {
	paint.FillShape(gtx.Ops, col, clip.Rect(r).Op())
}
