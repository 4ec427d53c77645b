// Package state holds what the viewer shows: the instance, its planned
// trajectories and the playback clock.
package state

import (
	"math"

	"github.com/elektrokombinacija/aasipp/internal/core"
)

// AgentView is an agent's disc at the current playback time.
type AgentView struct {
	Index  int // Position in Task.Agents
	ID     core.AgentID
	Pos    core.Point
	Radius float64
	Solved bool
	Done   bool // Resting at its goal
}

// ObstacleView is a dynamic obstacle at the current playback time.
type ObstacleView struct {
	ID     string
	Pos    core.Point
	Radius float64
}

// State holds all visualization state.
type State struct {
	Instance *core.Instance
	Result   *core.SearchResult
	Playback *PlaybackState

	Selected  int // Index into Task.Agents, -1 for none
	ShowPaths bool

	obstacles []core.Trajectory
}

// NewState prepares playback of res over inst.
func NewState(inst *core.Instance, res *core.SearchResult) *State {
	s := &State{
		Instance:  inst,
		Result:    res,
		Selected:  -1,
		ShowPaths: true,
	}

	maxTime := 0.0
	if res != nil {
		for _, ar := range res.Results {
			maxTime = math.Max(maxTime, ar.Sections.End())
		}
	}
	if inst.Obstacles != nil {
		for _, o := range inst.Obstacles.Obstacles {
			tr := o.Sections()
			s.obstacles = append(s.obstacles, tr)
			maxTime = math.Max(maxTime, tr.End())
		}
	}
	s.Playback = NewPlaybackState(maxTime)
	return s
}

// Now is the current playback time.
func (s *State) Now() float64 {
	return s.Playback.CurrentTime
}

func (s *State) result(k int) *core.AgentResult {
	if s.Result == nil {
		return nil
	}
	return s.Result.ResultByID(s.Instance.Task.Agents[k].ID)
}

// Agents returns every agent at the current time. Unsolved agents stay at their start.
func (s *State) Agents() []AgentView {
	now := s.Now()
	views := make([]AgentView, len(s.Instance.Task.Agents))
	for k, a := range s.Instance.Task.Agents {
		v := AgentView{Index: k, ID: a.ID, Pos: a.Start.Center(), Radius: a.Radius()}
		if ar := s.result(k); ar != nil && ar.PathFound && len(ar.Sections) > 0 {
			v.Solved = true
			v.Pos = ar.Sections.PositionAt(now)
			v.Done = now >= ar.Sections.End()
		}
		views[k] = v
	}
	return views
}

// Obstacles returns every dynamic obstacle at the current time.
func (s *State) Obstacles() []ObstacleView {
	if s.Instance.Obstacles == nil {
		return nil
	}
	now := s.Now()
	views := make([]ObstacleView, 0, len(s.obstacles))
	for k, o := range s.Instance.Obstacles.Obstacles {
		views = append(views, ObstacleView{ID: o.ID, Pos: s.obstacles[k].PositionAt(now), Radius: o.Radius()})
	}
	return views
}

// Trail returns the points agent k has passed so far, ending at its current position.
func (s *State) Trail(k int) []core.Point {
	ar := s.result(k)
	if ar == nil || !ar.PathFound || len(ar.Sections) == 0 {
		return nil
	}
	now := s.Now()
	trail := []core.Point{ar.Sections[0].From}
	for _, sec := range ar.Sections {
		if sec.T1 > now {
			break
		}
		trail = append(trail, sec.To)
	}
	return append(trail, ar.Sections.PositionAt(now))
}

// Route returns the full secondary path of agent k as a polyline.
func (s *State) Route(k int) []core.Point {
	ar := s.result(k)
	if ar == nil || !ar.PathFound || len(ar.Sections) == 0 {
		return nil
	}
	route := []core.Point{ar.Sections[0].From}
	for _, sec := range ar.Sections {
		if sec.To != route[len(route)-1] {
			route = append(route, sec.To)
		}
	}
	return route
}

// ActiveConflicts returns the conflicts within window of the current time.
func (s *State) ActiveConflicts(window float64) []core.Conflict {
	if s.Result == nil {
		return nil
	}
	now := s.Now()
	var active []core.Conflict
	for _, c := range s.Result.Conflicts {
		if math.Abs(c.Time-now) <= window {
			active = append(active, c)
		}
	}
	return active
}

// JumpToNextConflict moves playback to the first conflict after the current
// time, wrapping to the earliest one. It reports false when there are none.
func (s *State) JumpToNextConflict() bool {
	if s.Result == nil || len(s.Result.Conflicts) == 0 {
		return false
	}
	now := s.Now()
	next, first := math.Inf(1), math.Inf(1)
	for _, c := range s.Result.Conflicts {
		first = math.Min(first, c.Time)
		if c.Time > now+1e-9 {
			next = math.Min(next, c.Time)
		}
	}
	if math.IsInf(next, 1) {
		next = first
	}
	s.Playback.Pause()
	s.Playback.SetTime(next)
	return true
}

// AgentAt returns the index of the agent whose disc covers p, or -1.
func (s *State) AgentAt(p core.Point) int {
	for _, v := range s.Agents() {
		if v.Pos.Dist(p) <= v.Radius {
			return v.Index
		}
	}
	return -1
}

// Select toggles the selection of agent k; -1 clears it.
func (s *State) Select(k int) {
	if k == s.Selected {
		k = -1
	}
	s.Selected = k
}
