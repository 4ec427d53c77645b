package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/aasipp/internal/core"
	"github.com/elektrokombinacija/aasipp/internal/scenario"
)

func TestGenerateInstance_Valid(t *testing.T) {
	params := InstanceParams{Seed: 7, NumAgents: 6, GridWidth: 12, GridHeight: 9, Density: 0.2, Obstacles: 2, Horizon: 20}
	gen, err := generateInstance(params)
	require.NoError(t, err)

	inst := &core.Instance{Name: gen.Name, Grid: gen.Grid, Task: gen.Task, Obstacles: gen.Obstacles}
	require.NoError(t, inst.Validate())
	assert.Len(t, gen.Task.Agents, 6)
	assert.Len(t, gen.Obstacles.Obstacles, 2)
}

func TestGenerateInstance_Deterministic(t *testing.T) {
	params := InstanceParams{Seed: 3, NumAgents: 4, GridWidth: 8, GridHeight: 8, Density: 0.3}
	a, err := generateInstance(params)
	require.NoError(t, err)
	b, err := generateInstance(params)
	require.NoError(t, err)

	assert.Equal(t, scenario.GridFile(a.Grid), scenario.GridFile(b.Grid))
	assert.Equal(t, a.Task, b.Task)
}

func TestGenerateInstance_TooDense(t *testing.T) {
	_, err := generateInstance(InstanceParams{Seed: 1, NumAgents: 5, GridWidth: 3, GridHeight: 3})
	assert.ErrorContains(t, err, "free cells")
}

func TestWrite_LoadsBack(t *testing.T) {
	dir := t.TempDir()
	gen, err := generateInstance(InstanceParams{Seed: 11, NumAgents: 3, GridWidth: 10, GridHeight: 10, Density: 0.1, Obstacles: 1, Horizon: 10})
	require.NoError(t, err)
	require.NoError(t, write(dir, gen))

	inst, err := scenario.LoadInstance(gen.Name,
		filepath.Join(dir, gen.Name+".map.yaml"),
		filepath.Join(dir, gen.Name+".yaml"),
		filepath.Join(dir, gen.Name+".obstacles.yaml"))
	require.NoError(t, err)
	assert.Equal(t, gen.Task.Agents, inst.Task.Agents)
	require.Len(t, inst.Obstacles.Obstacles, 1)
	assert.Equal(t, gen.Obstacles.Obstacles[0].Waypoints, inst.Obstacles.Obstacles[0].Waypoints)
}
