package algo

import (
	"math"
	"sort"

	"github.com/elektrokombinacija/aasipp/internal/core"
)

// Interval is a half-open time range [Begin, End) during which a cell is free.
type Interval struct {
	Begin, End float64
}

// Contains reports whether t lies in the interval.
func (iv Interval) Contains(t float64) bool {
	return iv.Begin <= t && t < iv.End
}

type overlay struct {
	owner core.AgentID
	win   Interval
}

// IntervalStore keeps, per grid cell, the ordered disjoint safe intervals left
// after obstacles and higher-priority agents have been reserved.
type IntervalStore struct {
	grid     *core.Grid
	inflate  float64
	cells    [][]Interval
	base     [][]Interval
	overlays map[int][]overlay
}

// NewIntervalStore seeds every traversable cell with [0, +inf).
// Every reservation window is padded by inflate on both ends.
func NewIntervalStore(grid *core.Grid, inflate float64) *IntervalStore {
	s := &IntervalStore{
		grid:     grid,
		inflate:  inflate,
		cells:    make([][]Interval, grid.Width*grid.Height),
		overlays: make(map[int][]overlay),
	}
	for i := 0; i < grid.Height; i++ {
		for j := 0; j < grid.Width; j++ {
			if grid.Traversable(i, j) {
				s.cells[i*grid.Width+j] = []Interval{{Begin: 0, End: core.Inf}}
			}
		}
	}
	s.Snapshot()
	return s
}

// Snapshot records the current state as the one Restore returns to.
func (s *IntervalStore) Snapshot() {
	s.base = cloneCells(s.cells)
}

// Restore drops every reservation and overlay made since the last Snapshot.
func (s *IntervalStore) Restore() {
	s.cells = cloneCells(s.base)
	s.overlays = make(map[int][]overlay)
}

func cloneCells(src [][]Interval) [][]Interval {
	dst := make([][]Interval, len(src))
	for k, ivs := range src {
		if ivs != nil {
			dst[k] = append([]Interval(nil), ivs...)
		}
	}
	return dst
}

func (s *IntervalStore) index(c core.Cell) (int, bool) {
	if !s.grid.InBounds(c.I, c.J) {
		return 0, false
	}
	return s.grid.Index(c), true
}

// Intervals returns the safe intervals of a cell as seen by an agent: start
// reservations owned by other agents are removed, the agent's own are ignored.
func (s *IntervalStore) Intervals(c core.Cell, agent core.AgentID) []Interval {
	idx, ok := s.index(c)
	if !ok {
		return nil
	}
	ivs := s.cells[idx]
	ovs := s.overlays[idx]
	if len(ovs) == 0 {
		return ivs
	}
	view := append([]Interval(nil), ivs...)
	for _, ov := range ovs {
		if ov.owner != agent {
			view = cut(view, ov.win)
		}
	}
	return view
}

// cut removes w from a sorted interval list, splitting or trimming the
// intervals it overlaps. Pieces not longer than core.Epsilon are dropped.
func cut(ivs []Interval, w Interval) []Interval {
	out := ivs[:0:0]
	for _, iv := range ivs {
		if iv.End <= w.Begin || w.End <= iv.Begin {
			out = append(out, iv)
			continue
		}
		if w.Begin-iv.Begin > core.Epsilon {
			out = append(out, Interval{Begin: iv.Begin, End: w.Begin})
		}
		if iv.End-w.End > core.Epsilon {
			out = append(out, Interval{Begin: w.End, End: iv.End})
		}
	}
	return out
}

func (s *IntervalStore) block(c core.Cell, w Interval) {
	idx, ok := s.index(c)
	if !ok || s.cells[idx] == nil {
		return
	}
	s.cells[idx] = cut(s.cells[idx], w)
}

func (s *IntervalStore) pad(w Interval) Interval {
	return Interval{Begin: math.Max(w.Begin-s.inflate, 0), End: w.End + s.inflate}
}

// Reserve removes from every touched cell the time during which a disc of the
// given radius following the trajectory is over it.
func (s *IntervalStore) Reserve(tr core.Trajectory, radius float64) {
	for _, sec := range tr {
		dur := sec.Duration()
		for _, sc := range core.SweptCells(sec.From, sec.To, radius) {
			w := Interval{Begin: sec.T0 + sc.In*dur, End: sec.T0 + sc.Out*dur}
			s.block(sc.Cell, s.pad(w))
		}
	}
}

// ReserveHold removes [from, +inf) from every cell a disc resting at p touches.
func (s *IntervalStore) ReserveHold(p core.Point, from, radius float64) {
	for _, sc := range core.SweptCells(p, p, radius) {
		s.block(sc.Cell, s.pad(Interval{Begin: from, End: core.Inf}))
	}
}

// ReserveObstacles reserves every dynamic obstacle, including its final rest.
func (s *IntervalStore) ReserveObstacles(obs *core.DynamicObstacles) {
	if obs == nil {
		return
	}
	for _, o := range obs.Obstacles {
		if len(o.Waypoints) == 0 {
			continue
		}
		s.Reserve(o.Sections(), o.Radius())
		p, at := o.Final()
		s.ReserveHold(p, at, o.Radius())
	}
}

// AddStartOverlay reserves [0, until) around an agent's start for everyone but that agent.
func (s *IntervalStore) AddStartOverlay(a core.Agent, until float64) {
	if until <= 0 {
		return
	}
	p := a.Start.Center()
	for _, sc := range core.SweptCells(p, p, a.Radius()) {
		idx, ok := s.index(sc.Cell)
		if !ok {
			continue
		}
		s.overlays[idx] = append(s.overlays[idx], overlay{owner: a.ID, win: s.pad(Interval{Begin: 0, End: until})})
	}
}

// RemoveStartOverlay drops the start reservation of an agent once it is planned.
func (s *IntervalStore) RemoveStartOverlay(id core.AgentID) {
	for idx, ovs := range s.overlays {
		kept := ovs[:0]
		for _, ov := range ovs {
			if ov.owner != id {
				kept = append(kept, ov)
			}
		}
		if len(kept) == 0 {
			delete(s.overlays, idx)
		} else {
			s.overlays[idx] = kept
		}
	}
}

// timeSlack absorbs rounding when a window is shifted onto an interval start.
const timeSlack = 1e-9

// Move describes a straight motion from a cell inside its safe interval into a
// chosen safe interval of a neighbouring (or line-of-sight) cell.
type Move struct {
	Agent    core.AgentID
	From, To core.Cell
	Depart   float64  // Earliest departure: arrival time at From
	FromEnd  float64  // End of From's safe interval
	Prep     float64  // Rotation time spent at From before moving
	Duration float64  // Travel time
	Target   Interval // Safe interval of To to arrive in
	Size     float64
}

// Arrival returns the earliest time the move can end inside m.Target, waiting
// at From when needed. Every cell the disc sweeps must stay free while the disc
// is over it.
func (s *IntervalStore) Arrival(m Move) (float64, bool) {
	swept := core.SweptCells(m.From.Center(), m.To.Center(), m.Size)
	views := make([][]Interval, len(swept))
	for k, sc := range swept {
		if sc.Cell != m.From && sc.Cell != m.To {
			views[k] = s.Intervals(sc.Cell, m.Agent)
		}
	}

	t := math.Max(m.Depart, m.Target.Begin-m.Prep-m.Duration)
	for t+m.Prep+m.Duration < m.Target.End {
		motion := t + m.Prep
		shift := 0.0
		for k, sc := range swept {
			w0, w1 := motion+sc.In*m.Duration, motion+sc.Out*m.Duration
			switch sc.Cell {
			case m.From:
				if w1 >= m.FromEnd {
					return 0, false
				}
			case m.To:
				if w0 < m.Target.Begin-timeSlack {
					shift = math.Max(shift, m.Target.Begin-w0)
				}
			default:
				d, ok := waitFor(views[k], w0, w1)
				if !ok {
					return 0, false
				}
				shift = math.Max(shift, d)
			}
		}
		if shift <= 0 {
			return motion + m.Duration, true
		}
		t += shift
	}
	return 0, false
}

// waitFor returns how much later the window [w0, w1] must start to fit inside
// one of the intervals. False when no later interval exists.
func waitFor(ivs []Interval, w0, w1 float64) (float64, bool) {
	k := sort.Search(len(ivs), func(k int) bool { return ivs[k].End > w0 })
	if k == len(ivs) {
		return 0, false
	}
	iv := ivs[k]
	if iv.Begin <= w0+timeSlack {
		if w1 < iv.End {
			return 0, true
		}
		k++
		if k == len(ivs) {
			return 0, false
		}
		iv = ivs[k]
	}
	return iv.Begin - w0, true
}
