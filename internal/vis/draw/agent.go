package draw

import (
	"image/color"

	"gioui.org/layout"

	"github.com/elektrokombinacija/aasipp/internal/core"
	"github.com/elektrokombinacija/aasipp/internal/vis/interact"
	"github.com/elektrokombinacija/aasipp/internal/vis/state"
)

var palette = []color.NRGBA{
	{R: 100, G: 200, B: 255, A: 255},
	{R: 255, G: 150, B: 100, A: 255},
	{R: 200, G: 100, B: 255, A: 255},
	{R: 120, G: 220, B: 120, A: 255},
	{R: 255, G: 220, B: 90, A: 255},
	{R: 255, G: 110, B: 170, A: 255},
	{R: 90, G: 230, B: 210, A: 255},
	{R: 230, G: 230, B: 230, A: 255},
}

var (
	ColorSelected = color.NRGBA{R: 255, G: 255, B: 100, A: 255}
	ColorUnsolved = color.NRGBA{R: 140, G: 140, B: 140, A: 255}
	ColorObstacle = color.NRGBA{R: 210, G: 70, B: 70, A: 220}
)

// AgentColor returns the palette color of the k-th agent.
func AgentColor(k int) color.NRGBA {
	return palette[k%len(palette)]
}

// DrawAgent draws an agent's disc at its true radius.
func DrawAgent(gtx layout.Context, v state.AgentView, camera *interact.Camera, selected bool) {
	c := camera.ToScreen(v.Pos)
	r := camera.Scale(v.Radius)

	col := AgentColor(v.Index)
	if !v.Solved {
		col = ColorUnsolved
	}
	if v.Done {
		col.A = 160
	}
	drawFilledCircle(gtx, c, r, col)
	if selected {
		drawCircleOutline(gtx, c, r+3, 2, ColorSelected)
	}
}

// DrawObstacle draws a dynamic obstacle as a ring.
func DrawObstacle(gtx layout.Context, o state.ObstacleView, camera *interact.Camera) {
	c := camera.ToScreen(o.Pos)
	r := camera.Scale(o.Radius)
	drawCircleOutline(gtx, c, r, max(2, r*0.3), ColorObstacle)
}

// DrawStart marks a start cell with a small dot.
func DrawStart(gtx layout.Context, cell core.Cell, camera *interact.Camera, col color.NRGBA) {
	col.A = 120
	drawFilledCircle(gtx, camera.ToScreen(cell.Center()), camera.Scale(0.08), col)
}
