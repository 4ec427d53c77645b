// Package store persists planning runs and their per-agent statistics in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/elektrokombinacija/aasipp/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	path_found INTEGER NOT NULL,
	agents INTEGER NOT NULL,
	agents_solved INTEGER NOT NULL,
	tries INTEGER NOT NULL,
	reschedules INTEGER NOT NULL,
	makespan REAL NOT NULL,
	flowtime REAL NOT NULL,
	runtime_us INTEGER NOT NULL,
	priority_order TEXT NOT NULL,
	conflicts INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS agent_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	agent_id INTEGER NOT NULL,
	path_found INTEGER NOT NULL,
	last_error TEXT NOT NULL DEFAULT '',
	cost REAL NOT NULL,
	expanded INTEGER NOT NULL,
	generated INTEGER NOT NULL,
	reopened INTEGER NOT NULL,
	reexpanded INTEGER NOT NULL,
	runtime_us INTEGER NOT NULL,
	sections INTEGER NOT NULL,
	UNIQUE(run_id, agent_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_agent_results_run ON agent_results(run_id, agent_id);
`

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

// Run is one stored planning run.
type Run struct {
	ID           string
	Name         string
	PathFound    bool
	Agents       int
	AgentsSolved int
	Tries        int
	Reschedules  int
	Makespan     float64
	Flowtime     float64
	Runtime      time.Duration
	Order        []core.AgentID
	Conflicts    int
	CreatedAt    time.Time
}

// AgentRecord is the stored search statistics of one agent in a run.
type AgentRecord struct {
	RunID      string
	AgentID    core.AgentID
	PathFound  bool
	LastError  string
	Cost       float64
	Expanded   int
	Generated  int
	Reopened   int
	Reexpanded int
	Runtime    time.Duration
	Sections   int
}

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set sqlite pragma %q: %w", stmt, err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// SaveRun stores a search result and its agent rows in one transaction.
// A result without a RunID gets a fresh one, which is returned.
func (s *Store) SaveRun(ctx context.Context, name string, res *core.SearchResult) (string, error) {
	runID := res.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	order, err := json.Marshal(res.Order)
	if err != nil {
		return "", fmt.Errorf("encode priority order: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx save run: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO runs(
			id, name, path_found, agents, agents_solved, tries, reschedules,
			makespan, flowtime, runtime_us, priority_order, conflicts, created_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, name, boolToInt(res.PathFound), res.Agents, res.AgentsSolved, res.Tries, res.Reschedules,
		res.Makespan, res.Flowtime, res.Runtime.Microseconds(), string(order), len(res.Conflicts),
		time.Now().UTC().Unix(),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, ar := range res.Results {
		lastError := ""
		if ar.Err != nil {
			lastError = ar.Err.Error()
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO agent_results(
				run_id, agent_id, path_found, last_error, cost, expanded, generated,
				reopened, reexpanded, runtime_us, sections
			) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, int(ar.AgentID), boolToInt(ar.PathFound), lastError, finite(ar.Cost),
			ar.Expanded, ar.Generated, ar.Reopened, ar.Reexpanded, ar.Runtime.Microseconds(), len(ar.Sections),
		); err != nil {
			return "", fmt.Errorf("insert agent %d result: %w", ar.AgentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save run: %w", err)
	}
	return runID, nil
}

const runColumns = `id, name, path_found, agents, agents_solved, tries, reschedules,
	makespan, flowtime, runtime_us, priority_order, conflicts, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var found int
	var runtimeUS, created int64
	var order string
	if err := row.Scan(
		&r.ID, &r.Name, &found, &r.Agents, &r.AgentsSolved, &r.Tries, &r.Reschedules,
		&r.Makespan, &r.Flowtime, &runtimeUS, &order, &r.Conflicts, &created,
	); err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(order), &r.Order); err != nil {
		return Run{}, fmt.Errorf("decode priority order of run %s: %w", r.ID, err)
	}
	r.PathFound = found != 0
	r.Runtime = time.Duration(runtimeUS) * time.Microsecond
	r.CreatedAt = time.Unix(created, 0).UTC()
	return r, nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first. limit <= 0 lists all of them.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	result := make([]Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return result, nil
}

// AgentResults returns the agent rows of a run ordered by agent id.
func (s *Store) AgentResults(ctx context.Context, runID string) ([]AgentRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, agent_id, path_found, last_error, cost, expanded, generated,
			reopened, reexpanded, runtime_us, sections
		FROM agent_results WHERE run_id = ? ORDER BY agent_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list agent results: %w", err)
	}
	defer rows.Close()

	var records []AgentRecord
	for rows.Next() {
		var a AgentRecord
		var agentID, found int
		var runtimeUS int64
		if err := rows.Scan(
			&a.RunID, &agentID, &found, &a.LastError, &a.Cost, &a.Expanded, &a.Generated,
			&a.Reopened, &a.Reexpanded, &runtimeUS, &a.Sections,
		); err != nil {
			return nil, fmt.Errorf("scan agent result: %w", err)
		}
		a.AgentID = core.AgentID(agentID)
		a.PathFound = found != 0
		a.Runtime = time.Duration(runtimeUS) * time.Microsecond
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agent results: %w", err)
	}
	return records, nil
}

// DeleteRun removes a run; its agent rows go with it.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete run %s: %w", runID, ErrNotFound)
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// finite maps the infinite cost of unsolved agents to 0.
func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
