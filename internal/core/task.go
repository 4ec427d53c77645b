package core

import (
	"errors"
	"fmt"
	"math"
)

// AgentID is a unique agent identifier.
type AgentID int

// DefaultAgentSize is the disc radius used when a task does not set one.
var DefaultAgentSize = math.Sqrt2 / 4

// Agent is a disc-shaped mobile agent with a start and a goal cell.
type Agent struct {
	ID    AgentID
	Start Cell
	Goal  Cell
	Size  float64 // Disc radius in cell units
}

// Radius returns the agent's disc radius, falling back to DefaultAgentSize.
func (a Agent) Radius() float64 {
	if a.Size > 0 {
		return a.Size
	}
	return DefaultAgentSize
}

// Task is the roster of agents to plan for, listed in input order.
type Task struct {
	Agents []Agent
}

// AgentByID finds an agent by ID.
func (t *Task) AgentByID(id AgentID) (Agent, bool) {
	for _, a := range t.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

// Validate checks the roster against a grid: ids are unique, starts and goals
// lie on traversable cells, and no two agents share a start or a goal.
func (t *Task) Validate(g *Grid) error {
	if len(t.Agents) == 0 {
		return errors.New("task has no agents")
	}
	ids := make(map[AgentID]bool, len(t.Agents))
	starts := make(map[Cell]AgentID, len(t.Agents))
	goals := make(map[Cell]AgentID, len(t.Agents))
	for _, a := range t.Agents {
		if ids[a.ID] {
			return fmt.Errorf("agent %d: duplicate id", a.ID)
		}
		ids[a.ID] = true
		if a.Size < 0 || a.Size >= 0.5 {
			return fmt.Errorf("agent %d: size %v outside [0, 0.5)", a.ID, a.Size)
		}
		if !g.Traversable(a.Start.I, a.Start.J) {
			return fmt.Errorf("agent %d: start (%d,%d) is blocked or out of bounds", a.ID, a.Start.I, a.Start.J)
		}
		if !g.Traversable(a.Goal.I, a.Goal.J) {
			return fmt.Errorf("agent %d: goal (%d,%d) is blocked or out of bounds", a.ID, a.Goal.I, a.Goal.J)
		}
		if other, ok := starts[a.Start]; ok {
			return fmt.Errorf("agent %d: start (%d,%d) shared with agent %d", a.ID, a.Start.I, a.Start.J, other)
		}
		starts[a.Start] = a.ID
		if other, ok := goals[a.Goal]; ok {
			return fmt.Errorf("agent %d: goal (%d,%d) shared with agent %d", a.ID, a.Goal.I, a.Goal.J, other)
		}
		goals[a.Goal] = a.ID
	}
	return nil
}
