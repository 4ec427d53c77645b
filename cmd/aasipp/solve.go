package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/aasipp/internal/algo"
	"github.com/elektrokombinacija/aasipp/internal/core"
	"github.com/elektrokombinacija/aasipp/internal/logging"
	"github.com/elektrokombinacija/aasipp/internal/report"
	"github.com/elektrokombinacija/aasipp/internal/scenario"
	"github.com/elektrokombinacija/aasipp/internal/store"
)

func solveCmd(g *globals) *cobra.Command {
	var mapPath, taskPath, obstaclesPath, dbPath, jsonPath string

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Plan one instance and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inst, err := scenario.LoadInstance(instanceName(taskPath), mapPath, taskPath, obstaclesPath)
			if err != nil {
				return fmt.Errorf("loading instance: %w", err)
			}

			planner := algo.NewPlanner(g.cfg, algo.WithLogger(logging.New("scheduler")))
			res := planner.Solve(inst)

			if err := report.Summary(cmd.OutOrStdout(), res, g.mode()); err != nil {
				return err
			}
			if jsonPath != "" {
				if err := writeJSON(jsonPath, inst, res); err != nil {
					return err
				}
			}
			if dbPath != "" {
				if err := saveRuns(cmd, dbPath, []namedResult{{inst.Name, res}}); err != nil {
					return err
				}
			}
			if !res.PathFound {
				return fmt.Errorf("no conflict-free solution after %d tries (%d/%d agents solved)",
					res.Tries, res.AgentsSolved, res.Agents)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&mapPath, "map", "m", "", "map YAML file")
	f.StringVarP(&taskPath, "task", "t", "", "task YAML file")
	f.StringVarP(&obstaclesPath, "obstacles", "o", "", "dynamic obstacles YAML file")
	f.StringVar(&dbPath, "db", "", "SQLite database to record the run in")
	f.StringVar(&jsonPath, "json", "", "write the result document to this file")
	_ = cmd.MarkFlagRequired("map")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func instanceName(taskPath string) string {
	return strings.TrimSuffix(filepath.Base(taskPath), filepath.Ext(taskPath))
}

func writeJSON(path string, inst *core.Instance, res *core.SearchResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := report.WriteJSON(f, inst, res); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

type namedResult struct {
	name string
	res  *core.SearchResult
}

func saveRuns(cmd *cobra.Command, dbPath string, runs []namedResult) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	for _, r := range runs {
		id, err := st.SaveRun(ctx, r.name, r.res)
		if err != nil {
			return err
		}
		logging.New("store").Debug("run saved", "run", id, "name", r.name)
	}
	return nil
}
