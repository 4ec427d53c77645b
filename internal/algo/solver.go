// Package algo implements AA-SIPP search and prioritized multi-agent scheduling.
package algo

import (
	"errors"
	"math"
	"sort"

	"github.com/elektrokombinacija/aasipp/internal/core"
)

// Solver is the interface for multi-agent planners.
type Solver interface {
	// Solve plans every agent of the instance. Failure is reported in the result.
	Solve(inst *core.Instance) *core.SearchResult

	// Name returns the algorithm name.
	Name() string
}

// Per-agent search failures, recorded in core.AgentResult.Err.
var (
	ErrNoPath      = errors.New("no path under current safe intervals")
	ErrTimeLimit   = errors.New("search time limit exceeded")
	ErrOutOfBounds = errors.New("start or goal outside the traversable grid")
)

// CollisionTolerance is how deep two discs must overlap to count as a collision.
const CollisionTolerance = 1e-4

// CheckConflicts samples the secondary paths of all solved agents every step
// time units and reports one conflict per contiguous overlap episode of each
// pair, at the first sampled time of the episode. Agents stay at their last
// position after finishing. Results are ordered by time, then agent ids.
func CheckConflicts(agents []core.Agent, results []core.AgentResult, step float64) []core.Conflict {
	type track struct {
		id     core.AgentID
		radius float64
		tr     core.Trajectory
	}
	var tracks []track
	horizon := 0.0
	for k, r := range results {
		if !r.PathFound || len(r.Sections) == 0 {
			continue
		}
		tracks = append(tracks, track{id: agents[k].ID, radius: agents[k].Radius(), tr: r.Sections})
		horizon = math.Max(horizon, r.Sections.End())
	}

	var conflicts []core.Conflict
	n := int(math.Ceil(horizon/step)) + 1
	for a := 0; a < len(tracks); a++ {
		for b := a + 1; b < len(tracks); b++ {
			ta, tb := tracks[a], tracks[b]
			limit := ta.radius + tb.radius - CollisionTolerance
			inEpisode := false
			for k := 0; k < n; k++ {
				t := math.Min(float64(k)*step, horizon)
				pa, pb := ta.tr.PositionAt(t), tb.tr.PositionAt(t)
				hit := pa.Dist(pb) < limit
				if hit && !inEpisode {
					first, second := ta.id, tb.id
					if second < first {
						first, second = second, first
					}
					conflicts = append(conflicts, core.Conflict{
						A: first, B: second, Time: t,
						Pos: pa.Lerp(pb, 0.5),
					})
				}
				inEpisode = hit
			}
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Time != conflicts[j].Time {
			return conflicts[i].Time < conflicts[j].Time
		}
		if conflicts[i].A != conflicts[j].A {
			return conflicts[i].A < conflicts[j].A
		}
		return conflicts[i].B < conflicts[j].B
	})
	return conflicts
}
