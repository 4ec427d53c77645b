package draw

import (
	"image"
	"image/color"

	"gioui.org/layout"

	"github.com/elektrokombinacija/aasipp/internal/core"
	"github.com/elektrokombinacija/aasipp/internal/vis/interact"
)

var (
	ColorFree    = color.NRGBA{R: 38, G: 42, B: 48, A: 255}
	ColorBlocked = color.NRGBA{R: 95, G: 100, B: 110, A: 255}
	ColorLine    = color.NRGBA{R: 50, G: 55, B: 62, A: 255}
)

// DrawMap fills every cell of the grid and draws cell borders when zoomed in far enough.
func DrawMap(gtx layout.Context, g *core.Grid, camera *interact.Camera) {
	for i := 0; i < g.Height; i++ {
		for j := 0; j < g.Width; j++ {
			col := ColorFree
			if g.Blocked(i, j) {
				col = ColorBlocked
			}
			fillRect(gtx, cellRect(i, j, camera), col)
		}
	}
	if camera.Zoom < 8 {
		return
	}

	tl := camera.ToScreen(core.Point{I: -0.5, J: -0.5})
	br := camera.ToScreen(core.Point{I: float64(g.Height) - 0.5, J: float64(g.Width) - 0.5})
	for j := 0; j <= g.Width; j++ {
		x := camera.ToScreen(core.Point{J: float64(j) - 0.5}).X
		fillRect(gtx, image.Rect(int(x), int(tl.Y), int(x)+1, int(br.Y)), ColorLine)
	}
	for i := 0; i <= g.Height; i++ {
		y := camera.ToScreen(core.Point{I: float64(i) - 0.5}).Y
		fillRect(gtx, image.Rect(int(tl.X), int(y), int(br.X), int(y)+1), ColorLine)
	}
}

func cellRect(i, j int, camera *interact.Camera) image.Rectangle {
	tl := camera.ToScreen(core.Point{I: float64(i) - 0.5, J: float64(j) - 0.5})
	br := camera.ToScreen(core.Point{I: float64(i) + 0.5, J: float64(j) + 0.5})
	return image.Rect(int(tl.X), int(tl.Y), int(br.X+0.5), int(br.Y+0.5))
}

// DrawGoal marks a goal cell with a hollow square in the agent's color.
func DrawGoal(gtx layout.Context, c core.Cell, camera *interact.Camera, col color.NRGBA) {
	r := cellRect(c.I, c.J, camera).Inset(int(camera.Zoom * 0.15))
	w := max(1, int(camera.Zoom*0.06))
	col.A = 180
	fillRect(gtx, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), col)
	fillRect(gtx, image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), col)
	fillRect(gtx, image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), col)
	fillRect(gtx, image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), col)
}
