package algo

import (
	"math"
	"sort"

	"github.com/elektrokombinacija/aasipp/internal/core"
)

// primaryPath walks the parent chain from the goal node back to the root and
// returns the waypoints in travel order.
func (s *search) primaryPath(goal int) []core.Waypoint {
	var path []core.Waypoint
	for idx := goal; idx >= 0; idx = s.arena[idx].parent {
		n := &s.arena[idx]
		path = append(path, core.Waypoint{Cell: n.cell, G: n.g, Heading: n.heading})
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// secondaryPath turns waypoints into timed straight sections. Time spent at a
// waypoint before moving on (waiting or turning) becomes a wait section. Grid
// moves are split where they cross cell borders; any-angle moves stay whole.
func secondaryPath(nodes []core.Waypoint, anyAngle bool) core.Trajectory {
	var tr core.Trajectory
	for k := 1; k < len(nodes); k++ {
		prev, next := nodes[k-1], nodes[k]
		from, to := prev.Center(), next.Center()
		motion := next.G - from.Dist(to)
		if motion > prev.G+core.Epsilon {
			tr = append(tr, core.Section{From: from, To: from, T0: prev.G, T1: motion})
		} else {
			motion = prev.G
		}
		move := core.Section{From: from, To: to, T0: motion, T1: next.G}
		if anyAngle {
			tr = append(tr, move)
			continue
		}
		tr = append(tr, calculateLineSegment(move)...)
	}
	return tr
}

// calculateLineSegment splits a section at every crossing of a cell border
// (the half-integer grid lines) that falls strictly inside it.
func calculateLineSegment(sec core.Section) []core.Section {
	var cuts []float64
	cross := func(a, b float64) {
		if a == b {
			return
		}
		lo, hi := math.Min(a, b), math.Max(a, b)
		for x := math.Floor(lo+0.5) + 0.5; x < hi; x++ {
			if alpha := (x - a) / (b - a); alpha > core.Epsilon && alpha < 1-core.Epsilon {
				cuts = append(cuts, alpha)
			}
		}
	}
	cross(sec.From.I, sec.To.I)
	cross(sec.From.J, sec.To.J)
	if len(cuts) == 0 {
		return []core.Section{sec}
	}
	sort.Float64s(cuts)
	cuts = append(cuts, 1)

	out := make([]core.Section, 0, len(cuts))
	prevAlpha, prevPt := 0.0, sec.From
	for _, alpha := range cuts {
		if alpha-prevAlpha <= core.Epsilon {
			continue
		}
		pt, t1 := sec.From.Lerp(sec.To, alpha), sec.T0+alpha*sec.Duration()
		if alpha == 1 {
			pt, t1 = sec.To, sec.T1
		}
		out = append(out, core.Section{
			From: prevPt,
			To:   pt,
			T0:   sec.T0 + prevAlpha*sec.Duration(),
			T1:   t1,
		})
		prevAlpha, prevPt = alpha, pt
	}
	return out
}
