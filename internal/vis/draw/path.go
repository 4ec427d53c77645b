package draw

import (
	"image/color"

	"gioui.org/layout"

	"github.com/elektrokombinacija/aasipp/internal/core"
	"github.com/elektrokombinacija/aasipp/internal/vis/interact"
)

// DrawRoute draws a planned secondary path as a thin dim polyline with a dot at every turn.
func DrawRoute(gtx layout.Context, route []core.Point, camera *interact.Camera, col color.NRGBA) {
	if len(route) < 2 {
		return
	}
	col.A = 90
	w := max(1, camera.Scale(0.04))
	for i := 0; i+1 < len(route); i++ {
		drawSegment(gtx, camera.ToScreen(route[i]), camera.ToScreen(route[i+1]), w, col)
	}
	for _, p := range route[1 : len(route)-1] {
		drawFilledCircle(gtx, camera.ToScreen(p), w*1.5, col)
	}
}

// DrawTrail draws the traversed part of a path, fading towards the start.
func DrawTrail(gtx layout.Context, trail []core.Point, camera *interact.Camera, base color.NRGBA) {
	n := len(trail)
	if n < 2 {
		return
	}
	maxW := max(2, camera.Scale(0.1))
	for i := 0; i < n-1; i++ {
		frac := float32(i+1) / float32(n)
		col := base
		col.A = uint8(60 + frac*160)
		w := maxW * (0.4 + 0.6*frac)
		drawSegment(gtx, camera.ToScreen(trail[i]), camera.ToScreen(trail[i+1]), w, col)
	}
}
