// Package scenario loads maps, agent tasks and dynamic obstacles from YAML.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/aasipp/internal/core"
)

// MapFile is the on-disk map: one string per row, '.' free and any of "#@TOW" blocked.
type MapFile struct {
	Width  int      `yaml:"width,omitempty"`
	Height int      `yaml:"height,omitempty"`
	Grid   []string `yaml:"grid"`
}

// AgentSpec is one agent of a task file. Cells are [row, column].
type AgentSpec struct {
	ID    int     `yaml:"id"`
	Start [2]int  `yaml:"start,flow"`
	Goal  [2]int  `yaml:"goal,flow"`
	Size  float64 `yaml:"size,omitempty"`
}

// TaskFile is the on-disk agent roster.
type TaskFile struct {
	Agents []AgentSpec `yaml:"agents"`
}

// WaypointSpec is a timed obstacle position.
type WaypointSpec struct {
	I float64 `yaml:"i"`
	J float64 `yaml:"j"`
	T float64 `yaml:"t"`
}

// ObstacleSpec is one moving obstacle.
type ObstacleSpec struct {
	ID        string         `yaml:"id"`
	Size      float64        `yaml:"size,omitempty"`
	Waypoints []WaypointSpec `yaml:"waypoints"`
}

// ObstaclesFile is the on-disk dynamic obstacle set.
type ObstaclesFile struct {
	Obstacles []ObstacleSpec `yaml:"obstacles"`
}

const blockedCells = "#@TOW"

func readYAML(path, what string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s file: %w", what, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s YAML: %w", what, err)
	}
	return nil
}

// LoadGrid reads a map file.
func LoadGrid(path string) (*core.Grid, error) {
	var mf MapFile
	if err := readYAML(path, "map", &mf); err != nil {
		return nil, err
	}
	return mf.Build()
}

// Build converts the rows into a grid, checking declared dimensions.
func (mf *MapFile) Build() (*core.Grid, error) {
	if len(mf.Grid) == 0 {
		return nil, fmt.Errorf("map has no rows")
	}
	width := len(mf.Grid[0])
	if mf.Width != 0 && mf.Width != width {
		return nil, fmt.Errorf("map width %d, rows are %d wide", mf.Width, width)
	}
	if mf.Height != 0 && mf.Height != len(mf.Grid) {
		return nil, fmt.Errorf("map height %d, found %d rows", mf.Height, len(mf.Grid))
	}

	g := core.NewGrid(width, len(mf.Grid))
	for i, row := range mf.Grid {
		if len(row) != width {
			return nil, fmt.Errorf("row %d is %d wide, want %d", i, len(row), width)
		}
		for j, ch := range row {
			switch {
			case ch == '.':
			case strings.ContainsRune(blockedCells, ch):
				g.SetBlocked(i, j, true)
			default:
				return nil, fmt.Errorf("row %d column %d: unknown cell %q", i, j, ch)
			}
		}
	}
	return g, nil
}

// GridFile renders a grid back into its file form.
func GridFile(g *core.Grid) *MapFile {
	mf := &MapFile{Width: g.Width, Height: g.Height}
	for i := 0; i < g.Height; i++ {
		var b strings.Builder
		for j := 0; j < g.Width; j++ {
			if g.Blocked(i, j) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		mf.Grid = append(mf.Grid, b.String())
	}
	return mf
}

// LoadTask reads a task file.
func LoadTask(path string) (*core.Task, error) {
	var tf TaskFile
	if err := readYAML(path, "task", &tf); err != nil {
		return nil, err
	}
	return tf.Build(), nil
}

// Build converts the specs into a task.
func (tf *TaskFile) Build() *core.Task {
	task := &core.Task{Agents: make([]core.Agent, len(tf.Agents))}
	for k, a := range tf.Agents {
		task.Agents[k] = core.Agent{
			ID:    core.AgentID(a.ID),
			Start: core.Cell{I: a.Start[0], J: a.Start[1]},
			Goal:  core.Cell{I: a.Goal[0], J: a.Goal[1]},
			Size:  a.Size,
		}
	}
	return task
}

// TaskFileOf renders a task back into its file form.
func TaskFileOf(task *core.Task) *TaskFile {
	tf := &TaskFile{Agents: make([]AgentSpec, len(task.Agents))}
	for k, a := range task.Agents {
		tf.Agents[k] = AgentSpec{
			ID:    int(a.ID),
			Start: [2]int{a.Start.I, a.Start.J},
			Goal:  [2]int{a.Goal.I, a.Goal.J},
			Size:  a.Size,
		}
	}
	return tf
}

// LoadObstacles reads a dynamic obstacle file. An empty path gives no obstacles.
func LoadObstacles(path string) (*core.DynamicObstacles, error) {
	if path == "" {
		return &core.DynamicObstacles{}, nil
	}
	var of ObstaclesFile
	if err := readYAML(path, "obstacles", &of); err != nil {
		return nil, err
	}
	obs := &core.DynamicObstacles{Obstacles: make([]core.Obstacle, len(of.Obstacles))}
	for k, o := range of.Obstacles {
		wps := make([]core.TimedPoint, len(o.Waypoints))
		for n, w := range o.Waypoints {
			wps[n] = core.TimedPoint{Point: core.Point{I: w.I, J: w.J}, T: w.T}
		}
		obs.Obstacles[k] = core.Obstacle{ID: o.ID, Size: o.Size, Waypoints: wps}
	}
	if err := obs.Validate(); err != nil {
		return nil, err
	}
	return obs, nil
}

// LoadInstance reads and validates a full instance. obstaclesPath may be empty.
func LoadInstance(name, mapPath, taskPath, obstaclesPath string) (*core.Instance, error) {
	grid, err := LoadGrid(mapPath)
	if err != nil {
		return nil, err
	}
	task, err := LoadTask(taskPath)
	if err != nil {
		return nil, err
	}
	obs, err := LoadObstacles(obstaclesPath)
	if err != nil {
		return nil, err
	}
	inst := &core.Instance{Name: name, Grid: grid, Task: task, Obstacles: obs}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// Write marshals a file form (MapFile, TaskFile or ObstaclesFile) to path.
func Write(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
