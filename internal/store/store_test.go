package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/aasipp/internal/core"
)

func sampleResult() *core.SearchResult {
	return &core.SearchResult{
		RunID:        uuid.NewString(),
		PathFound:    false,
		Agents:       2,
		AgentsSolved: 1,
		Tries:        3,
		Reschedules:  2,
		Makespan:     4.5,
		Flowtime:     4.5,
		Runtime:      1500 * time.Microsecond,
		Order:        []core.AgentID{1, 0},
		Conflicts:    []core.Conflict{{A: 0, B: 1, Time: 2}},
		Results: []core.AgentResult{
			{AgentID: 0, PathFound: false, Err: errors.New("no path"), Cost: core.Inf, Expanded: 40},
			{
				AgentID: 1, PathFound: true, Cost: 4.5, Expanded: 12, Generated: 30, Reopened: 1,
				Runtime:  200 * time.Microsecond,
				Sections: core.Trajectory{{T0: 0, T1: 2}, {T0: 2, T1: 4.5}},
			},
		},
	}
}

func TestSaveRunAndAgentResults(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	res := sampleResult()
	runID, err := store.SaveRun(ctx, "corridor", res)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, runID)

	run, err := store.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "corridor", run.Name)
	assert.False(t, run.PathFound)
	assert.Equal(t, 3, run.Tries)
	assert.Equal(t, 2, run.Reschedules)
	assert.Equal(t, 1, run.Conflicts)
	assert.Equal(t, []core.AgentID{1, 0}, run.Order)
	assert.Equal(t, 1500*time.Microsecond, run.Runtime)

	records, err := store.AgentResults(ctx, runID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "no path", records[0].LastError)
	assert.Zero(t, records[0].Cost)
	assert.True(t, records[1].PathFound)
	assert.Equal(t, 2, records[1].Sections)
	assert.Equal(t, 1, records[1].Reopened)
}

func TestSaveRun_AssignsID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	res := sampleResult()
	res.RunID = ""
	runID, err := store.SaveRun(ctx, "fresh", res)
	require.NoError(t, err)
	_, err = uuid.Parse(runID)
	assert.NoError(t, err)
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		id, err := store.SaveRun(ctx, name, sampleResult())
		require.NoError(t, err)
		ids = append(ids, id)
	}

	all, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest run first")

	two, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestDeleteRunCascades(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	runID, err := store.SaveRun(ctx, "gone", sampleResult())
	require.NoError(t, err)
	require.NoError(t, store.DeleteRun(ctx, runID))

	records, err := store.AgentResults(ctx, runID)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = store.GetRun(ctx, runID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteRun(ctx, runID), ErrNotFound)
}

func TestSaveRun_DuplicateIDFails(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	res := sampleResult()
	_, err := store.SaveRun(ctx, "first", res)
	require.NoError(t, err)
	_, err = store.SaveRun(ctx, "second", res)
	assert.Error(t, err)

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		store.Close()
		t.Fatalf("migrate store: %v", err)
	}
	return store
}
