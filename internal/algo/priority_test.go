package algo

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/elektrokombinacija/aasipp/internal/config"
	"github.com/elektrokombinacija/aasipp/internal/core"
)

func policyAgents() []core.Agent {
	return []core.Agent{
		{ID: 0, Start: core.Cell{I: 0, J: 0}, Goal: core.Cell{I: 0, J: 5}},
		{ID: 1, Start: core.Cell{I: 1, J: 0}, Goal: core.Cell{I: 1, J: 1}},
		{ID: 2, Start: core.Cell{I: 2, J: 0}, Goal: core.Cell{I: 2, J: 3}},
	}
}

func TestInitialOrder(t *testing.T) {
	tests := []struct {
		mode config.Prioritization
		want []core.AgentID
	}{
		{config.PriorityIdentity, []core.AgentID{0, 1, 2}},
		{config.PriorityShortestFirst, []core.AgentID{1, 2, 0}},
		{config.PriorityLongestFirst, []core.AgentID{0, 2, 1}},
	}

	for _, tt := range tests {
		cfg := config.Default()
		cfg.InitialPrioritization = tt.mode
		got := NewPolicy(cfg).Initial(policyAgents())
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("mode %d: order mismatch (-want +got):\n%s", tt.mode, diff)
		}
	}
}

func TestInitialOrder_RandomIsSeeded(t *testing.T) {
	cfg := config.Default()
	cfg.InitialPrioritization = config.PriorityRandom
	cfg.Seed = 42

	a := NewPolicy(cfg).Initial(policyAgents())
	b := NewPolicy(cfg).Initial(policyAgents())
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different orders (-first +second):\n%s", diff)
	}
	if len(a) != 3 {
		t.Errorf("order has %d agents, want 3", len(a))
	}
}

func TestRaiseAtFault(t *testing.T) {
	p := &RaiseAtFault{}
	order := []core.AgentID{0, 1, 2, 3}

	tests := []struct {
		name  string
		fault Fault
		want  []core.AgentID
	}{
		{"unsolved goes first", Fault{Agent: 2, Unsolved: true}, []core.AgentID{2, 0, 1, 3}},
		{"collider jumps ahead", Fault{Agent: 3, Ahead: 1}, []core.AgentID{0, 3, 1, 2}},
		{"first already", Fault{Agent: 0, Unsolved: true}, []core.AgentID{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		got, ok := p.Change(order, tt.fault)
		if !ok {
			t.Errorf("%s: Change gave up", tt.name)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s: order mismatch (-want +got):\n%s", tt.name, diff)
		}
	}

	if _, ok := p.Change(order, Fault{Agent: 9, Unsolved: true}); ok {
		t.Error("unknown agent should not change the order")
	}
	if diff := cmp.Diff([]core.AgentID{0, 1, 2, 3}, order); diff != "" {
		t.Errorf("Change mutated its input (-want +got):\n%s", diff)
	}
}

func TestNoRescheduleAndShuffle(t *testing.T) {
	cfg := config.Default()
	cfg.Rescheduling = config.RescheduleNone
	if _, ok := NewPolicy(cfg).Change([]core.AgentID{0, 1}, Fault{Agent: 1, Unsolved: true}); ok {
		t.Error("NoReschedule should give up")
	}

	cfg.Rescheduling = config.RescheduleShuffle
	order := []core.AgentID{0, 1, 2, 3, 4}
	first, ok := NewPolicy(cfg).Change(order, Fault{})
	if !ok {
		t.Fatal("Shuffle should always produce an order")
	}
	second, _ := NewPolicy(cfg).Change(order, Fault{})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Shuffle is not reproducible for a seed (-first +second):\n%s", diff)
	}
}
