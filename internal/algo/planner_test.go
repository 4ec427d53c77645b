package algo

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/elektrokombinacija/aasipp/internal/config"
	"github.com/elektrokombinacija/aasipp/internal/core"
)

func swapTask() *core.Task {
	return &core.Task{Agents: []core.Agent{
		{ID: 0, Start: core.Cell{I: 0, J: 0}, Goal: core.Cell{I: 0, J: 4}},
		{ID: 1, Start: core.Cell{I: 0, J: 4}, Goal: core.Cell{I: 0, J: 0}},
	}}
}

func TestStartSearch_CorridorSwapExhaustsBudget(t *testing.T) {
	cfg := testConfig()
	cfg.MaxReschedules = 3
	grid := gridFromRows(".....")

	res := newTestPlanner(cfg).StartSearch(grid, swapTask(), nil)
	if res.PathFound {
		t.Fatal("two agents cannot swap in a one-wide corridor")
	}
	if res.Reschedules != 3 {
		t.Errorf("Reschedules = %d, want 3", res.Reschedules)
	}
	if res.Tries != 4 {
		t.Errorf("Tries = %d, want 4", res.Tries)
	}
	if res.AgentsSolved != 1 {
		t.Errorf("AgentsSolved = %d, want 1", res.AgentsSolved)
	}
}

func TestStartSearch_CorridorWithBay(t *testing.T) {
	cfg := testConfig()
	cfg.MaxReschedules = 3
	grid := gridFromRows(
		".....",
		"#.###",
	)

	res := newTestPlanner(cfg).StartSearch(grid, swapTask(), nil)
	if !res.PathFound {
		t.Fatalf("expected a joint solution, got %d/%d solved, conflicts %v", res.AgentsSolved, res.Agents, res.Conflicts)
	}
	if res.Tries != 2 {
		t.Errorf("Tries = %d, want 2", res.Tries)
	}
	if diff := cmp.Diff([]core.AgentID{1, 0}, res.Order); diff != "" {
		t.Errorf("final order mismatch (-want +got):\n%s", diff)
	}
	if c := CheckConflicts(swapTask().Agents, res.Results, 0.01); len(c) != 0 {
		t.Errorf("solution has conflicts: %v", c)
	}

	ar := res.ResultByID(0)
	visitedBay := false
	for _, w := range ar.Nodes {
		if w.Cell == (core.Cell{I: 1, J: 1}) {
			visitedBay = true
		}
	}
	if !visitedBay {
		t.Errorf("agent 0 should step into the bay, path %v", ar.Nodes)
	}
	if want := math.Max(res.Results[0].Cost, res.Results[1].Cost); res.Makespan != want {
		t.Errorf("Makespan = %v, want %v", res.Makespan, want)
	}
	if want := res.Results[0].Cost + res.Results[1].Cost; math.Abs(res.Flowtime-want) > 1e-9 {
		t.Errorf("Flowtime = %v, want %v", res.Flowtime, want)
	}
}

func TestStartSearch_NoReschedule(t *testing.T) {
	cfg := testConfig()
	cfg.Rescheduling = config.RescheduleNone
	grid := gridFromRows(
		".....",
		"#.###",
	)

	res := newTestPlanner(cfg).StartSearch(grid, swapTask(), nil)
	if res.PathFound || res.Tries != 1 || res.Reschedules != 0 {
		t.Errorf("got found=%v tries=%d reschedules=%d, want a single failed round",
			res.PathFound, res.Tries, res.Reschedules)
	}
}

func TestStartSearch_Deterministic(t *testing.T) {
	grid := gridFromRows(
		"........",
		"..##....",
		"..##.#..",
		"......#.",
		".#......",
		"........",
	)
	task := &core.Task{Agents: []core.Agent{
		{ID: 0, Start: core.Cell{I: 0, J: 0}, Goal: core.Cell{I: 5, J: 7}},
		{ID: 1, Start: core.Cell{I: 5, J: 0}, Goal: core.Cell{I: 0, J: 7}},
		{ID: 2, Start: core.Cell{I: 0, J: 7}, Goal: core.Cell{I: 5, J: 3}},
		{ID: 3, Start: core.Cell{I: 3, J: 0}, Goal: core.Cell{I: 3, J: 7}},
	}}

	for _, resched := range []config.Rescheduling{config.RescheduleRaise, config.RescheduleShuffle} {
		cfg := config.Default()
		cfg.Rescheduling = resched
		cfg.InitialPrioritization = config.PriorityLongestFirst

		first := newTestPlanner(cfg).StartSearch(grid, task, nil)
		second := newTestPlanner(cfg).StartSearch(grid, task, nil)
		if first.PathFound != second.PathFound || first.Makespan != second.Makespan || first.Tries != second.Tries {
			t.Errorf("rescheduling %d: runs differ: (%v, %v, %d) vs (%v, %v, %d)", resched,
				first.PathFound, first.Makespan, first.Tries,
				second.PathFound, second.Makespan, second.Tries)
		}
		if diff := cmp.Diff(first.Order, second.Order); diff != "" {
			t.Errorf("rescheduling %d: final orders differ (-first +second):\n%s", resched, diff)
		}
		if first.PathFound {
			if c := CheckConflicts(task.Agents, first.Results, 0.01); len(c) != 0 {
				t.Errorf("rescheduling %d: accepted solution has conflicts %v", resched, c)
			}
		}
	}
}

func TestStartSearch_AvoidsDynamicObstacle(t *testing.T) {
	grid := core.NewGrid(5, 3)
	// Parks on the middle of row 0 during [2, 5], entering from and leaving to outside the map.
	obstacles := &core.DynamicObstacles{Obstacles: []core.Obstacle{{
		ID:   "cart",
		Size: 0.3,
		Waypoints: []core.TimedPoint{
			{Point: core.Point{I: -3, J: 2}, T: 1.9},
			{Point: core.Point{I: 0, J: 2}, T: 2},
			{Point: core.Point{I: 0, J: 2}, T: 5},
			{Point: core.Point{I: -3, J: 2}, T: 5.1},
		},
	}}}
	task := &core.Task{Agents: []core.Agent{
		{ID: 0, Start: core.Cell{I: 0, J: 0}, Goal: core.Cell{I: 0, J: 4}},
	}}

	res := newTestPlanner(testConfig()).StartSearch(grid, task, obstacles)
	if !res.PathFound {
		t.Fatalf("expected a path, got %v", res.Results[0].Err)
	}
	tr := res.Results[0].Sections
	for tm := 2.0; tm <= 5; tm += 0.01 {
		p := tr.PositionAt(tm)
		if p.Dist(core.Point{I: 0, J: 2}) < 0.3+core.DefaultAgentSize {
			t.Fatalf("agent overlaps the parked obstacle at t=%.2f (position %v)", tm, p)
		}
	}
}

func TestStartSearch_StartSafeInterval(t *testing.T) {
	grid := core.NewGrid(5, 3)
	task := &core.Task{Agents: []core.Agent{
		{ID: 0, Start: core.Cell{I: 1, J: 0}, Goal: core.Cell{I: 1, J: 4}},
		{ID: 1, Start: core.Cell{I: 1, J: 2}, Goal: core.Cell{I: 2, J: 2}},
	}}
	cfg := testConfig()
	cfg.StartSafeInterval = 3

	res := newTestPlanner(cfg).StartSearch(grid, task, nil)
	if !res.PathFound {
		t.Fatalf("expected a joint solution, got conflicts %v", res.Conflicts)
	}
	// Agent 0 is planned first and must route around agent 1, which sits on its straight line.
	if res.Tries != 1 {
		t.Errorf("Tries = %d, want 1", res.Tries)
	}
	if cost := res.Results[0].Cost; cost <= 4 {
		t.Errorf("agent 0 cost %v should exceed the straight-line 4", cost)
	}
}
