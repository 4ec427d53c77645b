// Package widgets provides the Gio widgets of the viewer.
package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/aasipp/internal/vis/draw"
	"github.com/elektrokombinacija/aasipp/internal/vis/interact"
	"github.com/elektrokombinacija/aasipp/internal/vis/state"
)

// conflictWindow is how long around its time a conflict stays highlighted.
const conflictWindow = 0.3

// Workspace is the map view.
type Workspace struct {
	state  *state.State
	camera *interact.Camera
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{
		state:  st,
		camera: camera,
	}
}

// Layout renders the map, routes, trails, obstacles, agents and active conflicts.
func (w *Workspace) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	inst := w.state.Instance
	w.camera.Fit(inst.Grid.Width, inst.Grid.Height, float32(bounds.X), float32(bounds.Y), 20)
	w.handlePointerEvents(gtx)

	draw.DrawMap(gtx, inst.Grid, w.camera)

	for k, a := range inst.Task.Agents {
		col := draw.AgentColor(k)
		draw.DrawStart(gtx, a.Start, w.camera, col)
		draw.DrawGoal(gtx, a.Goal, w.camera, col)
	}

	if w.state.ShowPaths {
		for k := range inst.Task.Agents {
			if w.state.Selected >= 0 && k != w.state.Selected {
				continue
			}
			draw.DrawRoute(gtx, w.state.Route(k), w.camera, draw.AgentColor(k))
		}
	}
	for k := range inst.Task.Agents {
		draw.DrawTrail(gtx, w.state.Trail(k), w.camera, draw.AgentColor(k))
	}

	for _, o := range w.state.Obstacles() {
		draw.DrawObstacle(gtx, o, w.camera)
	}
	for _, v := range w.state.Agents() {
		draw.DrawAgent(gtx, v, w.camera, v.Index == w.state.Selected)
		if w.camera.Zoom >= 24 {
			w.label(gtx, th, v)
		}
	}

	for _, c := range w.state.ActiveConflicts(conflictWindow) {
		draw.DrawConflict(gtx, c, w.camera)
	}

	return layout.Dimensions{Size: bounds}
}

func (w *Workspace) label(gtx layout.Context, th *material.Theme, v state.AgentView) {
	p := w.camera.ToScreen(v.Pos)
	r := w.camera.Scale(v.Radius)
	defer op.Offset(image.Pt(int(p.X+r), int(p.Y-r-14))).Push(gtx.Ops).Pop()

	l := material.Label(th, 11, fmt.Sprint(v.ID))
	l.Color = color.NRGBA{R: 230, G: 230, B: 230, A: 255}
	gtx.Constraints.Min = image.Point{}
	l.Layout(gtx)
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		w.camera.HandleEvent(pe)
		if pe.Kind == pointer.Press && pe.Buttons.Contain(pointer.ButtonPrimary) {
			w.state.Select(w.state.AgentAt(w.camera.ToWorld(pe.Position)))
		}
	}
}
