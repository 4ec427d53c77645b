package algo

import (
	"math/rand"
	"sort"

	"github.com/elektrokombinacija/aasipp/internal/config"
	"github.com/elektrokombinacija/aasipp/internal/core"
)

// Fault names the agent blamed for a failed round. When Unsolved is false,
// Agent collided with the higher-priority agent Ahead.
type Fault struct {
	Agent    core.AgentID
	Ahead    core.AgentID
	Unsolved bool
}

// PriorityPolicy decides the planning order and how it changes after a failed
// round. Change returns false when the policy gives up.
type PriorityPolicy interface {
	Initial(agents []core.Agent) []core.AgentID
	Change(order []core.AgentID, f Fault) ([]core.AgentID, bool)
}

// NewPolicy builds the policy selected by cfg. Random choices draw from a
// source seeded with cfg.Seed, so one policy value replays the same sequence.
func NewPolicy(cfg *config.Config) PriorityPolicy {
	base := initialOrder{mode: cfg.InitialPrioritization, rng: rand.New(rand.NewSource(cfg.Seed))}
	switch cfg.Rescheduling {
	case config.RescheduleRaise:
		return &RaiseAtFault{initialOrder: base}
	case config.RescheduleShuffle:
		return &Shuffle{initialOrder: base}
	default:
		return &NoReschedule{initialOrder: base}
	}
}

type initialOrder struct {
	mode config.Prioritization
	rng  *rand.Rand
}

// Initial orders agents by the configured prioritization. Distance ties keep task order.
func (o initialOrder) Initial(agents []core.Agent) []core.AgentID {
	sorted := make([]core.Agent, len(agents))
	copy(sorted, agents)
	switch o.mode {
	case config.PriorityShortestFirst:
		sort.SliceStable(sorted, func(i, j int) bool {
			return core.Dist(sorted[i].Start, sorted[i].Goal) < core.Dist(sorted[j].Start, sorted[j].Goal)
		})
	case config.PriorityLongestFirst:
		sort.SliceStable(sorted, func(i, j int) bool {
			return core.Dist(sorted[i].Start, sorted[i].Goal) > core.Dist(sorted[j].Start, sorted[j].Goal)
		})
	case config.PriorityRandom:
		o.rng.Shuffle(len(sorted), func(i, j int) { sorted[i], sorted[j] = sorted[j], sorted[i] })
	}
	order := make([]core.AgentID, len(sorted))
	for i, a := range sorted {
		order[i] = a.ID
	}
	return order
}

// NoReschedule keeps the first order and never retries.
type NoReschedule struct{ initialOrder }

func (p *NoReschedule) Change(order []core.AgentID, f Fault) ([]core.AgentID, bool) {
	return order, false
}

// RaiseAtFault moves an unsolved agent to the top, or a colliding agent to
// just ahead of the agent it collided with.
type RaiseAtFault struct{ initialOrder }

func (p *RaiseAtFault) Change(order []core.AgentID, f Fault) ([]core.AgentID, bool) {
	rest := make([]core.AgentID, 0, len(order))
	for _, id := range order {
		if id != f.Agent {
			rest = append(rest, id)
		}
	}
	if len(rest) == len(order) {
		return order, false
	}
	at := 0
	if !f.Unsolved {
		at = indexOf(rest, f.Ahead)
		if at < 0 {
			return order, false
		}
	}
	next := make([]core.AgentID, 0, len(order))
	next = append(next, rest[:at]...)
	next = append(next, f.Agent)
	next = append(next, rest[at:]...)
	return next, true
}

// Shuffle draws a fresh random order after every failure.
type Shuffle struct{ initialOrder }

func (p *Shuffle) Change(order []core.AgentID, f Fault) ([]core.AgentID, bool) {
	next := append([]core.AgentID(nil), order...)
	p.rng.Shuffle(len(next), func(i, j int) { next[i], next[j] = next[j], next[i] })
	return next, true
}

func indexOf(order []core.AgentID, id core.AgentID) int {
	for i, x := range order {
		if x == id {
			return i
		}
	}
	return -1
}
