package core

import "time"

// Waypoint is a primary-path node: the agent reaches Cell at time G facing Heading.
type Waypoint struct {
	Cell
	G       float64
	Heading float64
}

// Section is a secondary-path segment: straight-line motion from From at T0
// to To at T1. From == To is a wait.
type Section struct {
	From, To Point
	T0, T1   float64
}

// Duration of the section.
func (s Section) Duration() float64 {
	return s.T1 - s.T0
}

// PositionAt returns the position inside the section at time t, clamped to its ends.
func (s Section) PositionAt(t float64) Point {
	if t <= s.T0 || s.T1 <= s.T0 {
		return s.From
	}
	if t >= s.T1 {
		return s.To
	}
	return s.From.Lerp(s.To, (t-s.T0)/(s.T1-s.T0))
}

// Trajectory is a time-ordered chain of sections.
type Trajectory []Section

// PositionAt returns the position at time t. Before the first section the
// agent is at its start; after the last it stays at its final point.
func (tr Trajectory) PositionAt(t float64) Point {
	if len(tr) == 0 {
		return Point{}
	}
	for _, s := range tr {
		if t <= s.T1 {
			return s.PositionAt(t)
		}
	}
	return tr[len(tr)-1].To
}

// End returns the time the trajectory finishes.
func (tr Trajectory) End() float64 {
	if len(tr) == 0 {
		return 0
	}
	return tr[len(tr)-1].T1
}

// AgentResult is the outcome of one agent's search in the final round.
type AgentResult struct {
	AgentID    AgentID
	PathFound  bool
	Err        error
	Cost       float64 // Arrival time at the goal
	Expanded   int
	Generated  int
	Reopened   int
	Reexpanded int
	Runtime    time.Duration
	Nodes      []Waypoint // Primary path
	Sections   Trajectory // Secondary path
}

// Conflict is a pair of agents whose discs overlap at Time around Pos.
type Conflict struct {
	A, B AgentID
	Time float64
	Pos  Point
}

// SearchResult aggregates a full scheduling run.
type SearchResult struct {
	RunID        string
	PathFound    bool
	Agents       int
	AgentsSolved int
	Tries        int // Scheduling rounds run
	Reschedules  int // Priority changes applied
	Makespan     float64
	Flowtime     float64
	Runtime      time.Duration
	Order        []AgentID // Priority order of the final round
	Conflicts    []Conflict
	Results      []AgentResult // Indexed like Task.Agents
}

// ResultByID finds an agent's result.
func (r *SearchResult) ResultByID(id AgentID) *AgentResult {
	for i := range r.Results {
		if r.Results[i].AgentID == id {
			return &r.Results[i]
		}
	}
	return nil
}
