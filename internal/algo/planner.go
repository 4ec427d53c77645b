package algo

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/aasipp/internal/config"
	"github.com/elektrokombinacija/aasipp/internal/core"
	"github.com/elektrokombinacija/aasipp/internal/logging"
)

// Planner is the prioritized AA-SIPP scheduler.
type Planner struct {
	cfg       *config.Config
	log       *slog.Logger
	newPolicy func(*config.Config) PriorityPolicy
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the planner logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) { p.log = l }
}

// WithPolicy replaces the priority policy constructor. It is called once per
// StartSearch so that repeated searches replay the same decisions.
func WithPolicy(f func(*config.Config) PriorityPolicy) Option {
	return func(p *Planner) { p.newPolicy = f }
}

// NewPlanner creates a planner for a validated config.
func NewPlanner(cfg *config.Config, opts ...Option) *Planner {
	p := &Planner{
		cfg:       cfg,
		log:       logging.New("aasipp"),
		newPolicy: NewPolicy,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Planner) Name() string {
	switch {
	case p.cfg.UseFocal:
		return fmt.Sprintf("AA-SIPP-focal(%.2f)", p.cfg.FocalWeight)
	case p.cfg.UseLikhachev:
		return fmt.Sprintf("AA-SIPP-wA*(%.2f)", p.cfg.HWeight)
	case p.cfg.HWeight > 1:
		return fmt.Sprintf("AA-SIPP-weighted(%.2f)", p.cfg.HWeight)
	default:
		return "AA-SIPP"
	}
}

// Solve implements Solver.
func (p *Planner) Solve(inst *core.Instance) *core.SearchResult {
	return p.StartSearch(inst.Grid, inst.Task, inst.Obstacles)
}

// round is the outcome of planning every agent in one priority order.
type round struct {
	results   []core.AgentResult // Task order
	conflicts []core.Conflict
	fault     Fault
	solved    int
}

func (r *round) ok() bool {
	return r.solved == len(r.results) && len(r.conflicts) == 0
}

// env is the state shared by the rounds of one StartSearch call.
type env struct {
	grid   *core.Grid
	agents []core.Agent
	index  map[core.AgentID]int
	store  *IntervalStore
	heur   Heuristic

	// The last executed order and its per-position results, for prefix reuse.
	lastOrder   []core.AgentID
	lastResults []core.AgentResult
}

// StartSearch plans all agents of the task, rescheduling on failure until a
// round is conflict-free or the retry budget is spent.
func (p *Planner) StartSearch(grid *core.Grid, task *core.Task, obstacles *core.DynamicObstacles) *core.SearchResult {
	start := time.Now()
	agents := task.Agents
	res := &core.SearchResult{
		RunID:  uuid.NewString(),
		Agents: len(agents),
	}

	e := &env{
		grid:   grid,
		agents: agents,
		index:  make(map[core.AgentID]int, len(agents)),
		store:  NewIntervalStore(grid, p.cfg.InflateCollisionIntervals),
		heur:   NewHeuristic(p.cfg.FocalType),
	}
	for k, a := range agents {
		e.index[a.ID] = k
	}
	e.store.ReserveObstacles(obstacles)
	e.store.Snapshot()
	e.heur.Init(grid.Width, grid.Height, len(agents))
	for k, a := range agents {
		if grid.Traversable(a.Start.I, a.Start.J) && grid.Traversable(a.Goal.I, a.Goal.J) {
			e.heur.Precompute(grid, a, k, p.cfg.Connectedness)
		}
	}

	policy := p.newPolicy(p.cfg)
	order := policy.Initial(agents)
	tried := make(map[string]*round)
	var last *round
	for {
		key := orderKey(order)
		r, seen := tried[key]
		if !seen {
			r = p.runRound(e, order)
			tried[key] = r
		}
		last = r
		res.Tries++
		p.log.Debug("round finished",
			slog.Int("try", res.Tries),
			slog.String("order", key),
			slog.Bool("cached", seen),
			slog.Int("solved", r.solved),
			slog.Int("conflicts", len(r.conflicts)))

		if r.ok() || res.Reschedules >= p.cfg.MaxReschedules {
			break
		}
		next, ok := policy.Change(order, r.fault)
		if !ok {
			break
		}
		order = next
		res.Reschedules++
	}

	res.Order = order
	res.Results = last.results
	res.Conflicts = last.conflicts
	res.AgentsSolved = last.solved
	res.PathFound = last.ok()
	for _, ar := range last.results {
		if !ar.PathFound {
			continue
		}
		res.Flowtime += ar.Cost
		if ar.Cost > res.Makespan {
			res.Makespan = ar.Cost
		}
	}
	res.Runtime = time.Since(start)

	p.log.Info("search finished",
		slog.String("run", res.RunID),
		slog.Bool("found", res.PathFound),
		slog.Int("solved", res.AgentsSolved),
		slog.Int("agents", res.Agents),
		slog.Int("tries", res.Tries),
		slog.Float64("makespan", res.Makespan),
		slog.Float64("flowtime", res.Flowtime),
		slog.Duration("runtime", res.Runtime))
	return res
}

// runRound plans the agents in order. Agents sharing a prefix with the
// previous round keep their results; the store is rebuilt from the obstacle
// snapshot with their reservations.
func (p *Planner) runRound(e *env, order []core.AgentID) *round {
	e.store.Restore()
	for _, a := range e.agents {
		e.store.AddStartOverlay(a, p.cfg.StartSafeInterval)
	}

	reuse := 0
	for reuse < len(order) && reuse < len(e.lastOrder) && order[reuse] == e.lastOrder[reuse] {
		reuse++
	}

	byPos := make([]core.AgentResult, len(order))
	for pos, id := range order {
		agent := e.agents[e.index[id]]
		e.store.RemoveStartOverlay(id)
		var ar core.AgentResult
		if pos < reuse {
			ar = e.lastResults[pos]
		} else {
			ar = FindPath(p.cfg, e.grid, e.store, e.heur, agent, e.index[id])
		}
		if ar.PathFound {
			e.store.Reserve(ar.Sections, agent.Radius())
			e.store.ReserveHold(agent.Goal.Center(), ar.Cost, agent.Radius())
		}
		byPos[pos] = ar
	}
	e.lastOrder = append([]core.AgentID(nil), order...)
	e.lastResults = byPos

	r := &round{results: make([]core.AgentResult, len(e.agents))}
	for _, ar := range byPos {
		r.results[e.index[ar.AgentID]] = ar
		if ar.PathFound {
			r.solved++
		}
	}
	r.conflicts = CheckConflicts(e.agents, r.results, p.cfg.CollisionStep)
	r.fault = blame(order, byPos, r.conflicts)
	return r
}

// blame picks the agent to promote: the first unsolved agent in priority order,
// otherwise the lower-priority agent of the earliest conflict.
func blame(order []core.AgentID, byPos []core.AgentResult, conflicts []core.Conflict) Fault {
	for pos, ar := range byPos {
		if !ar.PathFound {
			return Fault{Agent: order[pos], Unsolved: true}
		}
	}
	if len(conflicts) == 0 {
		return Fault{}
	}
	c := conflicts[0]
	if indexOf(order, c.A) > indexOf(order, c.B) {
		return Fault{Agent: c.A, Ahead: c.B}
	}
	return Fault{Agent: c.B, Ahead: c.A}
}

func orderKey(order []core.AgentID) string {
	parts := make([]string, len(order))
	for i, id := range order {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}
