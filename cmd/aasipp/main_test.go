package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMap = `
grid:
  - "....."
  - "....."
  - "....."
`

const pairTask = `
agents:
  - id: 0
    start: [0, 0]
    goal: [2, 4]
  - id: 1
    start: [2, 0]
    goal: [0, 4]
`

const singleTask = `
agents:
  - id: 7
    start: [1, 0]
    goal: [1, 4]
`

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func TestSolveAndRuns(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeTemp(t, dir, "map.yaml", testMap)
	taskPath := writeTemp(t, dir, "pair.yaml", pairTask)
	dbPath := filepath.Join(dir, "runs.db")
	jsonPath := filepath.Join(dir, "pair.json")

	out, err := execute(t, "solve", "--map", mapPath, "--task", taskPath, "--db", dbPath, "--json", jsonPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "solved")
	assert.Contains(t, out, "2/2")

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "pair"`)

	out, err = execute(t, "runs", "--db", dbPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "pair")
}

func TestSolve_ReportsFailure(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeTemp(t, dir, "map.yaml", "grid:\n  - \".....\"\n")
	taskPath := writeTemp(t, dir, "swap.yaml", `
agents:
  - id: 0
    start: [0, 0]
    goal: [0, 4]
  - id: 1
    start: [0, 4]
    goal: [0, 0]
`)

	out, err := execute(t, "solve", "--map", mapPath, "--task", taskPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict-free solution")
	assert.Contains(t, out, "failed")
}

func TestSolve_BadInstance(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeTemp(t, dir, "map.yaml", testMap)
	taskPath := writeTemp(t, dir, "bad.yaml", "agents:\n  - id: 0\n    start: [9, 9]\n    goal: [0, 0]\n")

	_, err := execute(t, "solve", "--map", mapPath, "--task", taskPath)
	assert.ErrorContains(t, err, "loading instance")
}

func TestBench(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeTemp(t, dir, "map.yaml", testMap)
	first := writeTemp(t, dir, "pair.yaml", pairTask)
	second := writeTemp(t, dir, "single.yaml", singleTask)
	csvPath := filepath.Join(dir, "bench.csv")

	out, err := execute(t, "bench", "--map", mapPath, "--parallel", "2", "--csv", csvPath, first, second)
	require.NoError(t, err, out)
	assert.Contains(t, out, "pair")
	assert.Contains(t, out, "single")

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "pair", records[1][4])
	assert.Equal(t, "single", records[2][4])
}

func TestBench_RejectsZeroParallel(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeTemp(t, dir, "map.yaml", testMap)
	taskPath := writeTemp(t, dir, "pair.yaml", pairTask)

	_, err := execute(t, "bench", "--map", mapPath, "--parallel", "0", taskPath)
	assert.ErrorContains(t, err, "at least 1 worker")
}
