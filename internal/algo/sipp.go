package algo

import (
	"time"

	"github.com/elektrokombinacija/aasipp/internal/config"
	"github.com/elektrokombinacija/aasipp/internal/core"
)

// checkEvery is how many expansions pass between wall-clock checks.
const checkEvery = 256

// search is one AA-SIPP episode for a single agent. The arena and maps are
// discarded when it ends.
type search struct {
	cfg      *config.Config
	grid     *core.Grid
	store    *IntervalStore
	heur     Heuristic
	agent    core.Agent
	agentIdx int
	size     float64

	arena    []searchNode
	fr       *frontier
	best     map[nodeKey]int
	closed   map[nodeKey]bool
	expanded map[nodeKey]bool
	moves    map[core.Cell][]core.Cell
	stats    core.AgentResult
}

func newSearch(cfg *config.Config, grid *core.Grid, store *IntervalStore, heur Heuristic, agent core.Agent, agentIdx int) *search {
	s := &search{
		cfg:      cfg,
		grid:     grid,
		store:    store,
		heur:     heur,
		agent:    agent,
		agentIdx: agentIdx,
		size:     agent.Radius(),
		best:     make(map[nodeKey]int),
		closed:   make(map[nodeKey]bool),
		expanded: make(map[nodeKey]bool),
		moves:    make(map[core.Cell][]core.Cell),
	}
	s.fr = newFrontier(&s.arena, cfg.UseFocal, cfg.FocalWeight)
	s.stats.AgentID = agent.ID
	return s
}

// FindPath plans one agent against the current store. Failures are returned in
// the result, never as panics.
func FindPath(cfg *config.Config, grid *core.Grid, store *IntervalStore, heur Heuristic, agent core.Agent, agentIdx int) core.AgentResult {
	return newSearch(cfg, grid, store, heur, agent, agentIdx).run()
}

func (s *search) run() core.AgentResult {
	start := time.Now()
	goal, err := s.expand(start)
	s.stats.Runtime = time.Since(start)
	if err != nil {
		s.stats.Err = err
		return s.stats
	}
	s.stats.PathFound = true
	s.stats.Cost = s.arena[goal].g
	s.stats.Nodes = s.primaryPath(goal)
	s.stats.Sections = secondaryPath(s.stats.Nodes, s.cfg.AllowAnyAngle)
	return s.stats
}

// expand runs the main loop and returns the arena index of the goal node.
func (s *search) expand(start time.Time) (int, error) {
	a := s.agent
	if !s.grid.Traversable(a.Start.I, a.Start.J) || !s.grid.Traversable(a.Goal.I, a.Goal.J) {
		return -1, ErrOutOfBounds
	}

	root := -1
	for k, iv := range s.store.Intervals(a.Start, a.ID) {
		if iv.Contains(0) {
			root = s.add(searchNode{cell: a.Start, iv: k, ivBegin: iv.Begin, ivEnd: iv.End, parent: -1})
			break
		}
	}
	if root < 0 {
		return -1, ErrNoPath
	}

	limit := s.cfg.SearchTimeLimit()
	for !s.fr.empty() {
		if limit > 0 && s.stats.Expanded%checkEvery == 0 && time.Since(start) > limit {
			return -1, ErrTimeLimit
		}
		cur := s.fr.pop()
		k := s.arena[cur].key()
		s.closed[k] = true
		s.stats.Expanded++
		if s.expanded[k] {
			s.stats.Reexpanded++
		}
		s.expanded[k] = true

		if s.stopCriterion(cur) {
			return cur, nil
		}
		s.findSuccessors(cur)
	}
	return -1, ErrNoPath
}

// stopCriterion accepts the goal cell once it is safe forever.
func (s *search) stopCriterion(idx int) bool {
	n := &s.arena[idx]
	return n.cell == s.agent.Goal && n.ivEnd == core.Inf
}

// add inserts a node unless a no-worse one exists for its (cell, interval).
// A better g for a closed key reopens it, except in Likhachev mode.
func (s *search) add(n searchNode) int {
	k := n.key()
	if old, ok := s.best[k]; ok {
		if s.arena[old].g <= n.g+core.Epsilon {
			return -1
		}
		if s.closed[k] {
			if s.cfg.UseLikhachev {
				return -1
			}
			s.closed[k] = false
			s.stats.Reopened++
		} else {
			s.fr.remove(old)
		}
	}

	n.h = core.Dist(n.cell, s.agent.Goal)
	n.f = n.g + s.cfg.HWeight*n.h
	n.focal = s.heur.Value(n.cell.I, n.cell.J, n.g, s.agentIdx)
	n.openIdx, n.focalIdx = -1, -1

	idx := len(s.arena)
	s.arena = append(s.arena, n)
	s.best[k] = idx
	s.fr.push(idx)
	s.stats.Generated++
	return idx
}

func (s *search) validMoves(c core.Cell) []core.Cell {
	if m, ok := s.moves[c]; ok {
		return m
	}
	m := s.grid.ValidMoves(c.I, c.J, s.cfg.Connectedness, s.size)
	s.moves[c] = m
	return m
}

// rotation is the time to turn from a node's heading to a new one. The root
// has no heading yet.
func (s *search) rotation(n *searchNode, heading float64) float64 {
	if !s.cfg.PlanForTurns || n.parent < 0 {
		return 0
	}
	return core.HeadingDelta(n.heading, heading) / 180 * s.cfg.RotationCost
}

// move builds the store query for leaving node n toward a target interval.
func (s *search) move(n *searchNode, to core.Cell, target Interval) (Move, float64) {
	heading := core.Heading(n.cell, to)
	return Move{
		Agent:    s.agent.ID,
		From:     n.cell,
		To:       to,
		Depart:   n.g,
		FromEnd:  n.ivEnd,
		Prep:     s.rotation(n, heading),
		Duration: core.Dist(n.cell, to),
		Target:   target,
		Size:     s.size,
	}, heading
}

// findSuccessors generates one node per reachable safe interval of every
// neighbouring cell.
func (s *search) findSuccessors(cur int) {
	for _, m := range s.validMoves(s.arena[cur].cell) {
		c := &s.arena[cur]
		to := c.cell.Add(m)
		for k, iv := range s.store.Intervals(to, s.agent.ID) {
			mv, heading := s.move(c, to, iv)
			if iv.Begin-mv.Prep-mv.Duration >= c.ivEnd {
				break
			}
			arrival, ok := s.store.Arrival(mv)
			if !ok {
				continue
			}
			n := searchNode{
				cell: to, iv: k, ivBegin: iv.Begin, ivEnd: iv.End,
				g: arrival, heading: heading, parent: cur,
			}
			if s.cfg.AllowAnyAngle && c.parent >= 0 {
				s.resetParent(&n, c.parent)
			}
			s.add(n)
			c = &s.arena[cur]
		}
	}
}

// resetParent tries to reach n straight from the grandparent p, keeping the
// shortcut when it has line of sight and arrives strictly earlier.
func (s *search) resetParent(n *searchNode, p int) {
	par := &s.arena[p]
	if par.cell == n.cell || !s.grid.LineOfSight(par.cell, n.cell, s.size) {
		return
	}
	mv, heading := s.move(par, n.cell, Interval{Begin: n.ivBegin, End: n.ivEnd})
	arrival, ok := s.store.Arrival(mv)
	if !ok || arrival >= n.g-core.Epsilon {
		return
	}
	n.g = arrival
	n.heading = heading
	n.parent = p
}
