package state

import (
	"math"
	"testing"
	"time"

	"github.com/elektrokombinacija/aasipp/internal/core"
)

func testState() *State {
	inst := core.NewInstance("view", core.NewGrid(5, 3), &core.Task{Agents: []core.Agent{
		{ID: 4, Start: core.Cell{I: 0, J: 0}, Goal: core.Cell{I: 0, J: 4}},
		{ID: 9, Start: core.Cell{I: 2, J: 0}, Goal: core.Cell{I: 2, J: 4}},
	}})
	inst.Obstacles = &core.DynamicObstacles{Obstacles: []core.Obstacle{{
		ID: "cart",
		Waypoints: []core.TimedPoint{
			{Point: core.Point{I: 1, J: 0}, T: 1},
			{Point: core.Point{I: 1, J: 4}, T: 9},
		},
	}}}
	res := &core.SearchResult{
		Results: []core.AgentResult{
			{AgentID: 4, PathFound: true, Sections: core.Trajectory{
				{From: core.Point{I: 0, J: 0}, To: core.Point{I: 0, J: 0}, T0: 0, T1: 1},
				{From: core.Point{I: 0, J: 0}, To: core.Point{I: 0, J: 4}, T0: 1, T1: 5},
			}},
			{AgentID: 9},
		},
		Conflicts: []core.Conflict{{A: 4, B: 9, Time: 2}, {A: 4, B: 9, Time: 4}},
	}
	return NewState(inst, res)
}

func near(a, b core.Point) bool {
	return a.Dist(b) < 1e-9
}

func TestNewState_MaxTime(t *testing.T) {
	st := testState()
	if st.Playback.MaxTime != 9 {
		t.Errorf("MaxTime = %v, want 9 (obstacle ends last)", st.Playback.MaxTime)
	}
	if st.Selected != -1 {
		t.Errorf("Selected = %d, want -1", st.Selected)
	}
}

func TestAgents(t *testing.T) {
	st := testState()
	st.Playback.SetTime(3)

	views := st.Agents()
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}
	if !near(views[0].Pos, core.Point{I: 0, J: 2}) || views[0].Done {
		t.Errorf("agent 4 at t=3: %+v", views[0])
	}
	if views[1].Solved || !near(views[1].Pos, core.Point{I: 2, J: 0}) {
		t.Errorf("unsolved agent should stay at start: %+v", views[1])
	}

	st.Playback.SetTime(6)
	if v := st.Agents()[0]; !v.Done || !near(v.Pos, core.Point{I: 0, J: 4}) {
		t.Errorf("agent 4 at t=6: %+v", v)
	}
}

func TestObstacles(t *testing.T) {
	st := testState()
	st.Playback.SetTime(0.5)
	if o := st.Obstacles()[0]; !near(o.Pos, core.Point{I: 1, J: 0}) {
		t.Errorf("obstacle before start at %v, want its first point", o.Pos)
	}
	st.Playback.SetTime(5)
	if o := st.Obstacles()[0]; !near(o.Pos, core.Point{I: 1, J: 2}) {
		t.Errorf("obstacle at t=5 at %v, want (1, 2)", o.Pos)
	}
}

func TestTrailAndRoute(t *testing.T) {
	st := testState()
	st.Playback.SetTime(3)

	trail := st.Trail(0)
	want := []core.Point{{I: 0, J: 0}, {I: 0, J: 0}, {I: 0, J: 2}}
	if len(trail) != len(want) {
		t.Fatalf("trail = %v, want %v", trail, want)
	}
	for i := range want {
		if !near(trail[i], want[i]) {
			t.Errorf("trail[%d] = %v, want %v", i, trail[i], want[i])
		}
	}
	if st.Trail(1) != nil {
		t.Error("unsolved agent has a trail")
	}

	route := st.Route(0)
	if len(route) != 2 || !near(route[1], core.Point{I: 0, J: 4}) {
		t.Errorf("route = %v, want start and goal only", route)
	}
}

func TestConflicts(t *testing.T) {
	st := testState()
	st.Playback.SetTime(2.2)
	if got := st.ActiveConflicts(0.25); len(got) != 1 || got[0].Time != 2 {
		t.Errorf("active conflicts = %v, want the one at t=2", got)
	}

	if !st.JumpToNextConflict() || st.Now() != 4 {
		t.Errorf("jump from 2.2 landed at %v, want 4", st.Now())
	}
	if !st.JumpToNextConflict() || st.Now() != 2 {
		t.Errorf("jump from 4 should wrap to 2, got %v", st.Now())
	}
}

func TestAgentAtAndSelect(t *testing.T) {
	st := testState()
	if k := st.AgentAt(core.Point{I: 2.1, J: 0.1}); k != 1 {
		t.Errorf("AgentAt near agent 9 start = %d, want 1", k)
	}
	if k := st.AgentAt(core.Point{I: 1, J: 2}); k != -1 {
		t.Errorf("AgentAt empty cell = %d, want -1", k)
	}

	st.Select(1)
	st.Select(1)
	if st.Selected != -1 {
		t.Errorf("second Select should clear, got %d", st.Selected)
	}
}

func TestPlayback(t *testing.T) {
	p := NewPlaybackState(10)
	if p.Step != 0.1 {
		t.Errorf("Step = %v, want 0.1", p.Step)
	}

	p.TogglePlay()
	start := p.lastUpdate
	p.SetSpeed(2)
	p.AdvanceTo(start.Add(1500 * time.Millisecond))
	if math.Abs(p.CurrentTime-3) > 1e-9 {
		t.Errorf("CurrentTime = %v, want 3", p.CurrentTime)
	}

	p.AdvanceTo(start.Add(time.Minute))
	if p.CurrentTime != 10 || p.Playing {
		t.Errorf("playback should stop at the end, got t=%v playing=%v", p.CurrentTime, p.Playing)
	}

	p.TogglePlay()
	if p.CurrentTime != 0 {
		t.Errorf("play at the end should rewind, got %v", p.CurrentTime)
	}

	p.StepBack()
	if p.CurrentTime != 0 || p.Playing {
		t.Errorf("StepBack at 0: t=%v playing=%v", p.CurrentTime, p.Playing)
	}
	p.SetSpeed(100)
	if p.Speed != 20 {
		t.Errorf("Speed = %v, want clamp at 20", p.Speed)
	}
}
