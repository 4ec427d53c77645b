package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/aasipp/internal/vis/draw"
	"github.com/elektrokombinacija/aasipp/internal/vis/state"
)

const (
	timelineHeight = 60
	timelineMargin = 20
)

// Timeline is a time scrubber with conflict ticks.
type Timeline struct {
	state    *state.State
	dragging bool
}

// NewTimeline creates a new timeline widget.
func NewTimeline(st *state.State) *Timeline {
	return &Timeline{
		state: st,
	}
}

// Layout renders the timeline.
func (t *Timeline) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	width := gtx.Constraints.Max.X
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255},
		clip.Rect(image.Rect(0, 0, width, timelineHeight)).Op())

	t.handlePointerEvents(gtx)

	trackY := timelineHeight / 2
	trackHeight := 6
	trackWidth := width - 2*timelineMargin

	track := image.Rect(timelineMargin, trackY-trackHeight/2, timelineMargin+trackWidth, trackY+trackHeight/2)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(track).Op())

	pb := t.state.Playback
	fillWidth := int(float64(trackWidth) * pb.Progress())
	if fillWidth > 0 {
		fill := image.Rect(timelineMargin, trackY-trackHeight/2, timelineMargin+fillWidth, trackY+trackHeight/2)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 100, G: 180, B: 255, A: 255}, clip.Rect(fill).Op())
	}

	if t.state.Result != nil && pb.MaxTime > 0 {
		for _, c := range t.state.Result.Conflicts {
			x := timelineMargin + int(float64(trackWidth)*c.Time/pb.MaxTime)
			tick := image.Rect(x-1, trackY-10, x+1, trackY+10)
			paint.FillShape(gtx.Ops, draw.ColorConflict, clip.Rect(tick).Op())
		}
	}

	head := timelineMargin + fillWidth
	paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		clip.Rect(image.Rect(head-6, trackY-6, head+6, trackY+6)).Op())

	t.drawTimeLabels(gtx, th)
	return layout.Dimensions{Size: image.Point{X: width, Y: timelineHeight}}
}

func (t *Timeline) drawTimeLabels(gtx layout.Context, th *material.Theme) {
	pb := t.state.Playback
	current := material.Label(th, 12, fmt.Sprintf("t = %.2f", pb.CurrentTime))
	current.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}

	speed := material.Label(th, 12, fmt.Sprintf("%.1fx", pb.Speed))
	speed.Color = color.NRGBA{R: 150, G: 180, B: 200, A: 255}

	end := material.Label(th, 12, fmt.Sprintf("%.2f", pb.MaxTime))
	end.Color = color.NRGBA{R: 150, G: 150, B: 150, A: 255}

	layout.Inset{Top: unit.Dp(4), Left: unit.Dp(20), Right: unit.Dp(20)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(current.Layout),
			layout.Rigid(speed.Layout),
			layout.Rigid(end.Layout),
		)
	})
}

func (t *Timeline) handlePointerEvents(gtx layout.Context) {
	trackWidth := gtx.Constraints.Max.X - 2*timelineMargin

	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, timelineHeight)).Push(gtx.Ops)
	event.Op(gtx.Ops, t)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: t,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			t.dragging = true
			t.seek(pe.Position.X, trackWidth)
		case pointer.Drag:
			if t.dragging {
				t.seek(pe.Position.X, trackWidth)
			}
		case pointer.Release:
			t.dragging = false
		}
	}
}

func (t *Timeline) seek(screenX float32, trackWidth int) {
	if trackWidth <= 0 {
		return
	}
	progress := (float64(screenX) - timelineMargin) / float64(trackWidth)
	progress = max(0, min(1, progress))
	t.state.Playback.Pause()
	t.state.Playback.SetTime(progress * t.state.Playback.MaxTime)
}
