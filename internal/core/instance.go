package core

import "fmt"

// Instance is a complete planning problem: map, agent roster and moving obstacles.
type Instance struct {
	Name      string
	Grid      *Grid
	Task      *Task
	Obstacles *DynamicObstacles
}

// NewInstance creates an instance without obstacles.
func NewInstance(name string, grid *Grid, task *Task) *Instance {
	return &Instance{
		Name:      name,
		Grid:      grid,
		Task:      task,
		Obstacles: &DynamicObstacles{},
	}
}

// Validate checks instance consistency.
func (inst *Instance) Validate() error {
	if inst.Grid == nil || inst.Grid.Width <= 0 || inst.Grid.Height <= 0 {
		return fmt.Errorf("instance %q: empty grid", inst.Name)
	}
	if inst.Task == nil {
		return fmt.Errorf("instance %q: no task", inst.Name)
	}
	if err := inst.Task.Validate(inst.Grid); err != nil {
		return fmt.Errorf("instance %q: %w", inst.Name, err)
	}
	if err := inst.Obstacles.Validate(); err != nil {
		return fmt.Errorf("instance %q: %w", inst.Name, err)
	}
	return nil
}
