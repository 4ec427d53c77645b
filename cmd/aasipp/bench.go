package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/aasipp/internal/algo"
	"github.com/elektrokombinacija/aasipp/internal/core"
	"github.com/elektrokombinacija/aasipp/internal/logging"
	"github.com/elektrokombinacija/aasipp/internal/report"
	"github.com/elektrokombinacija/aasipp/internal/scenario"
)

func benchCmd(g *globals) *cobra.Command {
	var mapPath, obstaclesPath, dbPath, csvPath string
	var parallel int

	cmd := &cobra.Command{
		Use:   "bench task.yaml [task.yaml...]",
		Short: "Plan many tasks on one map and tabulate the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if parallel < 1 {
				return fmt.Errorf("--parallel %d: need at least 1 worker", parallel)
			}
			log := logging.New("bench")
			results := make([]namedResult, len(args))

			eg, ctx := errgroup.WithContext(cmd.Context())
			eg.SetLimit(parallel)
			for i, taskPath := range args {
				i, taskPath := i, taskPath
				eg.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					inst, err := scenario.LoadInstance(instanceName(taskPath), mapPath, taskPath, obstaclesPath)
					if err != nil {
						return fmt.Errorf("loading %s: %w", taskPath, err)
					}
					// Each instance gets its own planner; a planner run is single-threaded.
					res := algo.NewPlanner(g.cfg, algo.WithLogger(log.With("instance", inst.Name))).Solve(inst)
					results[i] = namedResult{name: inst.Name, res: res}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				return err
			}

			rows := make([]report.BenchRow, len(results))
			for i, r := range results {
				rows[i] = report.BenchRow{Name: r.name, Result: r.res}
			}
			if err := report.Bench(cmd.OutOrStdout(), rows, g.mode()); err != nil {
				return err
			}
			if csvPath != "" {
				if err := writeCSV(csvPath, results); err != nil {
					return err
				}
			}
			if dbPath != "" {
				return saveRuns(cmd, dbPath, results)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&mapPath, "map", "m", "", "map YAML file shared by every task")
	f.StringVarP(&obstaclesPath, "obstacles", "o", "", "dynamic obstacles YAML file")
	f.IntVarP(&parallel, "parallel", "p", runtime.NumCPU(), "instances planned concurrently")
	f.StringVar(&dbPath, "db", "", "SQLite database to record the runs in")
	f.StringVar(&csvPath, "csv", "", "write one CSV row per instance to this file")
	_ = cmd.MarkFlagRequired("map")
	return cmd
}

var csvHeader = []string{
	"timestamp", "go_version", "os", "arch", "instance", "agents", "solved", "success",
	"tries", "reschedules", "makespan", "flowtime", "runtime_ms", "conflicts", "nodes_expanded",
}

func writeCSV(path string, results []namedResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	stamp := time.Now().UTC().Format(time.RFC3339)
	for _, r := range results {
		if err := w.Write(csvRow(stamp, r.name, r.res)); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return f.Close()
}

func csvRow(stamp, name string, res *core.SearchResult) []string {
	expanded := 0
	for _, ar := range res.Results {
		expanded += ar.Expanded
	}
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
	return []string{
		stamp, runtime.Version(), runtime.GOOS, runtime.GOARCH, name,
		strconv.Itoa(res.Agents), strconv.Itoa(res.AgentsSolved), strconv.FormatBool(res.PathFound),
		strconv.Itoa(res.Tries), strconv.Itoa(res.Reschedules),
		ff(res.Makespan), ff(res.Flowtime), ff(float64(res.Runtime.Microseconds()) / 1000),
		strconv.Itoa(len(res.Conflicts)), strconv.Itoa(expanded),
	}
}
