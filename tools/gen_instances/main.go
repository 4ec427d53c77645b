// Package main generates random grid instances for planner benchmarks.
// Generation is deterministic in the seed.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/elektrokombinacija/aasipp/internal/core"
	"github.com/elektrokombinacija/aasipp/internal/scenario"
)

// InstanceParams defines parameters for instance generation.
type InstanceParams struct {
	Seed       int64
	NumAgents  int
	GridWidth  int
	GridHeight int
	Density    float64 // Fraction of blocked cells
	AgentSize  float64 // 0 keeps the default radius
	Obstacles  int     // Dynamic obstacles crossing the map
	Horizon    float64 // Time by which every obstacle has finished moving
}

// Generated is one instance split into its file forms.
type Generated struct {
	Name      string
	Grid      *core.Grid
	Task      *core.Task
	Obstacles *core.DynamicObstacles
}

// generateInstance creates an instance from parameters. Starts and goals are
// distinct free cells, so the result always passes validation as long as the
// grid has room for 2*NumAgents free cells.
func generateInstance(params InstanceParams) (*Generated, error) {
	rng := rand.New(rand.NewSource(params.Seed))

	g := core.NewGrid(params.GridWidth, params.GridHeight)
	var free []core.Cell
	for i := 0; i < params.GridHeight; i++ {
		for j := 0; j < params.GridWidth; j++ {
			if rng.Float64() < params.Density {
				g.SetBlocked(i, j, true)
				continue
			}
			free = append(free, core.Cell{I: i, J: j})
		}
	}
	if len(free) < 2*params.NumAgents {
		return nil, fmt.Errorf("only %d free cells for %d agents", len(free), params.NumAgents)
	}

	rng.Shuffle(len(free), func(a, b int) { free[a], free[b] = free[b], free[a] })
	task := &core.Task{Agents: make([]core.Agent, params.NumAgents)}
	for k := range task.Agents {
		task.Agents[k] = core.Agent{
			ID:    core.AgentID(k),
			Start: free[2*k],
			Goal:  free[2*k+1],
			Size:  params.AgentSize,
		}
	}

	obs := &core.DynamicObstacles{}
	for k := 0; k < params.Obstacles; k++ {
		from := free[rng.Intn(len(free))]
		to := free[rng.Intn(len(free))]
		depart := rng.Float64() * params.Horizon / 2
		arrive := depart + math.Max(1, from.Center().Dist(to.Center()))
		obs.Obstacles = append(obs.Obstacles, core.Obstacle{
			ID: fmt.Sprintf("obstacle-%d", k),
			Waypoints: []core.TimedPoint{
				{Point: from.Center(), T: depart},
				{Point: to.Center(), T: arrive},
			},
		})
	}

	return &Generated{
		Name:      fmt.Sprintf("grid_%dx%d_%d_%d", params.GridWidth, params.GridHeight, params.NumAgents, params.Seed),
		Grid:      g,
		Task:      task,
		Obstacles: obs,
	}, nil
}

func obstaclesFile(obs *core.DynamicObstacles) *scenario.ObstaclesFile {
	of := &scenario.ObstaclesFile{}
	for _, o := range obs.Obstacles {
		spec := scenario.ObstacleSpec{ID: o.ID, Size: o.Size}
		for _, w := range o.Waypoints {
			spec.Waypoints = append(spec.Waypoints, scenario.WaypointSpec{I: w.I, J: w.J, T: w.T})
		}
		of.Obstacles = append(of.Obstacles, spec)
	}
	return of
}

// write stores the instance as <name>.map.yaml, <name>.yaml and, when there
// are obstacles, <name>.obstacles.yaml.
func write(dir string, gen *Generated) error {
	if err := scenario.Write(filepath.Join(dir, gen.Name+".map.yaml"), scenario.GridFile(gen.Grid)); err != nil {
		return err
	}
	if err := scenario.Write(filepath.Join(dir, gen.Name+".yaml"), scenario.TaskFileOf(gen.Task)); err != nil {
		return err
	}
	if len(gen.Obstacles.Obstacles) == 0 {
		return nil
	}
	return scenario.Write(filepath.Join(dir, gen.Name+".obstacles.yaml"), obstaclesFile(gen.Obstacles))
}

func main() {
	seed := flag.Int64("seed", 42, "Random seed for deterministic generation")
	numAgents := flag.Int("agents", 10, "Number of agents")
	gridWidth := flag.Int("width", 16, "Grid width")
	gridHeight := flag.Int("height", 16, "Grid height")
	density := flag.Float64("density", 0.15, "Blocked cell density (0-1)")
	agentSize := flag.Float64("size", 0, "Agent disc radius (0 = default)")
	obstacles := flag.Int("obstacles", 0, "Number of dynamic obstacles")
	horizon := flag.Float64("horizon", 40, "Latest obstacle departure is half of this")
	outputDir := flag.String("output", "testdata", "Output directory")
	scalingMode := flag.Bool("scaling", false, "Generate scaling instances (5, 10, 20, 40, 80 agents)")

	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	base := InstanceParams{
		Seed:       *seed,
		NumAgents:  *numAgents,
		GridWidth:  *gridWidth,
		GridHeight: *gridHeight,
		Density:    *density,
		AgentSize:  *agentSize,
		Obstacles:  *obstacles,
		Horizon:    *horizon,
	}

	params := []InstanceParams{base}
	if *scalingMode {
		params = params[:0]
		for _, size := range []int{5, 10, 20, 40, 80} {
			p := base
			p.NumAgents = size
			// Grid side scales with sqrt of agents
			side := max(10, int(math.Ceil(math.Sqrt(float64(size))*4)))
			p.GridWidth, p.GridHeight = side, side
			params = append(params, p)
		}
	}

	failed := false
	for _, p := range params {
		gen, err := generateInstance(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %d agents on %dx%d: %v\n", p.NumAgents, p.GridWidth, p.GridHeight, err)
			failed = true
			continue
		}
		if err := write(*outputDir, gen); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing instance %s: %v\n", gen.Name, err)
			failed = true
			continue
		}
		fmt.Printf("Generated: %s (%d agents, %dx%d grid, %d obstacles)\n",
			gen.Name, p.NumAgents, p.GridWidth, p.GridHeight, len(gen.Obstacles.Obstacles))
	}
	if failed {
		os.Exit(1)
	}
}
