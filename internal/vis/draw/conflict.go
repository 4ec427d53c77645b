package draw

import (
	"image/color"
	"math"
	"time"

	"gioui.org/f32"
	"gioui.org/layout"

	"github.com/elektrokombinacija/aasipp/internal/core"
	"github.com/elektrokombinacija/aasipp/internal/vis/interact"
)

var ColorConflict = color.NRGBA{R: 255, G: 80, B: 80, A: 220}

// DrawConflict draws expanding rings and a cross at a conflict position.
func DrawConflict(gtx layout.Context, c core.Conflict, camera *interact.Camera) {
	center := camera.ToScreen(c.Pos)
	base := camera.Scale(0.3)

	t := float64(time.Now().UnixMilli()) / 1000
	for i := 0; i < 3; i++ {
		ripple := float32(math.Mod(t+float64(i)*0.3, 1))
		col := ColorConflict
		col.A = uint8((1 - ripple) * 200)
		drawCircleOutline(gtx, center, base*(1+ripple), 2, col)
	}

	arm := base * 0.6
	for _, d := range []f32.Point{{X: arm, Y: arm}, {X: arm, Y: -arm}} {
		drawSegment(gtx, center.Sub(d), center.Add(d), 3, ColorConflict)
	}
}
