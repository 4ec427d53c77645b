package algo

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/elektrokombinacija/aasipp/internal/core"
)

func TestCut(t *testing.T) {
	inf := core.Inf
	tests := []struct {
		name string
		ivs  []Interval
		w    Interval
		want []Interval
	}{
		{"split", []Interval{{0, inf}}, Interval{2, 5}, []Interval{{0, 2}, {5, inf}}},
		{"trim head", []Interval{{0, inf}}, Interval{0, 3}, []Interval{{3, inf}}},
		{"remove whole", []Interval{{0, 1}, {4, inf}}, Interval{0, 2}, []Interval{{4, inf}}},
		{"no overlap", []Interval{{0, 1}, {4, inf}}, Interval{2, 3}, []Interval{{0, 1}, {4, inf}}},
		{"spanning two", []Interval{{0, 2}, {3, inf}}, Interval{1, 4}, []Interval{{0, 1}, {4, inf}}},
		{"drop sliver", []Interval{{0, inf}}, Interval{1e-9, 2}, []Interval{{2, inf}}},
	}

	for _, tt := range tests {
		got := cut(tt.ivs, tt.w)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s: cut mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestIntervalStore_SeedAndRestore(t *testing.T) {
	grid := gridFromRows("..#")
	s := NewIntervalStore(grid, 0)

	if got := s.Intervals(core.Cell{I: 0, J: 2}, 0); got != nil {
		t.Errorf("blocked cell has intervals %v", got)
	}
	if got := s.Intervals(core.Cell{I: 5, J: 5}, 0); got != nil {
		t.Errorf("out-of-bounds cell has intervals %v", got)
	}

	s.ReserveHold(core.Point{I: 0, J: 0}, 3, 0.3)
	want := []Interval{{0, 3}}
	if diff := cmp.Diff(want, s.Intervals(core.Cell{I: 0, J: 0}, 0)); diff != "" {
		t.Errorf("after hold (-want +got):\n%s", diff)
	}

	s.Restore()
	want = []Interval{{0, core.Inf}}
	if diff := cmp.Diff(want, s.Intervals(core.Cell{I: 0, J: 0}, 0)); diff != "" {
		t.Errorf("after restore (-want +got):\n%s", diff)
	}
}

func TestIntervalStore_ReserveMove(t *testing.T) {
	grid := core.NewGrid(3, 1)
	s := NewIntervalStore(grid, 0.5)
	s.Reserve(core.Trajectory{
		{From: core.Point{I: 0, J: 0}, To: core.Point{I: 0, J: 2}, T0: 10, T1: 12},
	}, 0.3)

	// Middle cell is covered while the center is within 0.8 of j = 1, padded by 0.5.
	got := s.Intervals(core.Cell{I: 0, J: 1}, 0)
	if len(got) != 2 {
		t.Fatalf("got %v, want two intervals", got)
	}
	if math.Abs(got[0].End-9.7) > 1e-4 || math.Abs(got[1].Begin-12.3) > 1e-4 {
		t.Errorf("middle cell intervals %v, want [0, 9.7) and [12.3, inf)", got)
	}
}

func TestIntervalStore_StartOverlay(t *testing.T) {
	grid := core.NewGrid(3, 1)
	s := NewIntervalStore(grid, 0)
	owner := core.Agent{ID: 1, Start: core.Cell{I: 0, J: 0}}
	s.AddStartOverlay(owner, 2)

	start := core.Cell{I: 0, J: 0}
	if diff := cmp.Diff([]Interval{{0, core.Inf}}, s.Intervals(start, 1)); diff != "" {
		t.Errorf("owner view (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Interval{{2, core.Inf}}, s.Intervals(start, 2)); diff != "" {
		t.Errorf("other agent view (-want +got):\n%s", diff)
	}

	s.RemoveStartOverlay(1)
	if diff := cmp.Diff([]Interval{{0, core.Inf}}, s.Intervals(start, 2)); diff != "" {
		t.Errorf("after removal (-want +got):\n%s", diff)
	}
}

func TestArrival(t *testing.T) {
	grid := core.NewGrid(3, 1)
	r := core.DefaultAgentSize

	tests := []struct {
		name    string
		blockJ1 Interval
		target  Interval
		fromEnd float64
		want    float64
		wantOK  bool
	}{
		{"free move", Interval{100, 101}, Interval{0, core.Inf}, core.Inf, 1, true},
		{"wait for second interval", Interval{0, 3}, Interval{3, core.Inf}, core.Inf, 3.5 + r, true},
		{"origin closes too early", Interval{0, 3}, Interval{3, core.Inf}, 2, 0, false},
		{"target ends before arrival", Interval{0.5, 100}, Interval{0, 0.5}, core.Inf, 0, false},
	}

	for _, tt := range tests {
		s := NewIntervalStore(grid, 0)
		s.block(core.Cell{I: 0, J: 1}, tt.blockJ1)
		got, ok := s.Arrival(Move{
			From:     core.Cell{I: 0, J: 0},
			To:       core.Cell{I: 0, J: 1},
			FromEnd:  tt.fromEnd,
			Duration: 1,
			Target:   tt.target,
			Size:     r,
		})
		if ok != tt.wantOK {
			t.Errorf("%s: ok = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if ok && math.Abs(got-tt.want) > 1e-4 {
			t.Errorf("%s: arrival = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestArrival_WaitsForCrossedCell(t *testing.T) {
	grid := core.NewGrid(3, 1)
	s := NewIntervalStore(grid, 0)
	s.block(core.Cell{I: 0, J: 1}, Interval{0, 4})

	// Moving from j=0 to j=2 sweeps the middle cell, which frees at t=4.
	got, ok := s.Arrival(Move{
		From:     core.Cell{I: 0, J: 0},
		To:       core.Cell{I: 0, J: 2},
		FromEnd:  core.Inf,
		Duration: 2,
		Target:   Interval{0, core.Inf},
		Size:     0.3,
	})
	if !ok {
		t.Fatal("expected a feasible arrival")
	}
	// Disc enters the middle square 0.2 after departure.
	if want := 4 - 0.2 + 2; math.Abs(got-want) > 1e-4 {
		t.Errorf("arrival = %v, want %v", got, want)
	}
}
