package algo

import (
	"container/heap"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/elektrokombinacija/aasipp/internal/config"
	"github.com/elektrokombinacija/aasipp/internal/core"
)

// Heuristic is the per-agent guidance oracle. Its value is the focal key: zero
// on the agent's unconstrained route and growing with deviation from it.
type Heuristic interface {
	// Init resets all per-agent tables.
	Init(width, height, agents int)
	// Precompute prepares agent idx. Must run before the agent is searched.
	Precompute(grid *core.Grid, agent core.Agent, idx, connectedness int)
	// Value returns the guidance for being at (i, j) at time g.
	Value(i, j int, g float64, agentIdx int) float64
}

// NewHeuristic returns the oracle for a focal type.
func NewHeuristic(ft config.FocalType) Heuristic {
	switch ft {
	case config.FocalPathDistance:
		return &PathDistance{}
	case config.FocalPathTime:
		return &PathTime{}
	default:
		return &GoalDistance{}
	}
}

// costToGo runs a backward Dijkstra from goal over the grid moves, with
// Euclidean step costs. Unreachable cells hold +inf.
func costToGo(grid *core.Grid, goal core.Cell, connectedness int, size float64) []float64 {
	dist := make([]float64, grid.Width*grid.Height)
	for k := range dist {
		dist[k] = math.Inf(1)
	}
	if !grid.Traversable(goal.I, goal.J) {
		return dist
	}

	dist[grid.Index(goal)] = 0
	pq := &cellHeap{{cell: goal, d: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(cellItem)
		if cur.d > dist[grid.Index(cur.cell)] {
			continue
		}
		// Moves are symmetric, so forward moves from cur are backward moves into it.
		for _, m := range grid.ValidMoves(cur.cell.I, cur.cell.J, connectedness, size) {
			next := cur.cell.Add(m)
			nd := cur.d + math.Hypot(float64(m.I), float64(m.J))
			if nd < dist[grid.Index(next)] {
				dist[grid.Index(next)] = nd
				heap.Push(pq, cellItem{cell: next, d: nd})
			}
		}
	}
	return dist
}

type cellItem struct {
	cell core.Cell
	d    float64
}

// cellHeap implements heap.Interface.
type cellHeap []cellItem

func (h cellHeap) Len() int { return len(h) }
func (h cellHeap) Less(i, j int) bool {
	if h[i].d != h[j].d {
		return h[i].d < h[j].d
	}
	if h[i].cell.I != h[j].cell.I {
		return h[i].cell.I < h[j].cell.I
	}
	return h[i].cell.J < h[j].cell.J
}
func (h cellHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *cellHeap) Push(x any)   { *h = append(*h, x.(cellItem)) }
func (h *cellHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// staticPath follows the cost-to-go table downhill from start, giving an
// optimal obstacle-aware route that ignores other agents. Each waypoint carries
// its travel time from start.
func staticPath(grid *core.Grid, agent core.Agent, dist []float64, connectedness int) []core.Waypoint {
	if math.IsInf(dist[grid.Index(agent.Start)], 1) {
		return []core.Waypoint{{Cell: agent.Goal}}
	}
	path := []core.Waypoint{{Cell: agent.Start}}
	cur := agent.Start
	g := 0.0
	for cur != agent.Goal {
		here := dist[grid.Index(cur)]
		best := cur
		for _, m := range grid.ValidMoves(cur.I, cur.J, connectedness, agent.Radius()) {
			next := cur.Add(m)
			there := dist[grid.Index(next)]
			if there < here && math.Abs(there+math.Hypot(float64(m.I), float64(m.J))-here) < core.Epsilon {
				best = next
				break
			}
		}
		if best == cur {
			break
		}
		g += core.Dist(cur, best)
		cur = best
		path = append(path, core.Waypoint{Cell: cur, G: g})
	}
	return path
}

// GoalDistance stores the exact grid cost-to-go of every cell, per agent.
type GoalDistance struct {
	width  int
	tables [][]float64
}

func (h *GoalDistance) Init(width, height, agents int) {
	h.width = width
	h.tables = make([][]float64, agents)
}

func (h *GoalDistance) Precompute(grid *core.Grid, agent core.Agent, idx, connectedness int) {
	h.tables[idx] = costToGo(grid, agent.Goal, connectedness, agent.Radius())
}

func (h *GoalDistance) Value(i, j int, g float64, agentIdx int) float64 {
	return h.tables[agentIdx][i*h.width+j]
}

// PathDistance is the planar distance to the nearest waypoint of the agent's
// static route, looked up in a k-d tree.
type PathDistance struct {
	trees []*kdtree.Tree
}

func (h *PathDistance) Init(width, height, agents int) {
	h.trees = make([]*kdtree.Tree, agents)
}

func (h *PathDistance) Precompute(grid *core.Grid, agent core.Agent, idx, connectedness int) {
	dist := costToGo(grid, agent.Goal, connectedness, agent.Radius())
	path := staticPath(grid, agent, dist, connectedness)
	pts := make(kdtree.Points, len(path))
	for k, w := range path {
		pts[k] = kdtree.Point{float64(w.I), float64(w.J)}
	}
	h.trees[idx] = kdtree.New(pts, false)
}

func (h *PathDistance) Value(i, j int, g float64, agentIdx int) float64 {
	q := kdtree.Point{float64(i), float64(j)}
	nearest, _ := h.trees[agentIdx].Nearest(q)
	p := nearest.(kdtree.Point)
	return math.Hypot(p[0]-q[0], p[1]-q[1])
}

// PathTime is the planar distance to the static-route waypoint whose arrival
// time is nearest to g.
type PathTime struct {
	paths [][]core.Waypoint
}

func (h *PathTime) Init(width, height, agents int) {
	h.paths = make([][]core.Waypoint, agents)
}

func (h *PathTime) Precompute(grid *core.Grid, agent core.Agent, idx, connectedness int) {
	dist := costToGo(grid, agent.Goal, connectedness, agent.Radius())
	h.paths[idx] = staticPath(grid, agent, dist, connectedness)
}

func (h *PathTime) Value(i, j int, g float64, agentIdx int) float64 {
	path := h.paths[agentIdx]
	k := sort.Search(len(path), func(k int) bool { return path[k].G >= g })
	switch {
	case k == len(path):
		k = len(path) - 1
	case k > 0 && g-path[k-1].G < path[k].G-g:
		k--
	}
	return core.Dist(core.Cell{I: i, J: j}, path[k].Cell)
}
