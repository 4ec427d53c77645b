package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/aasipp/internal/core"
	"github.com/elektrokombinacija/aasipp/internal/report"
	"github.com/elektrokombinacija/aasipp/internal/store"
)

func runsCmd(g *globals) *cobra.Command {
	var dbPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded runs, or show the agents of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			if err := st.Migrate(ctx); err != nil {
				return err
			}

			if len(args) == 0 {
				runs, err := st.ListRuns(ctx, limit)
				if err != nil {
					return err
				}
				return report.Runs(cmd.OutOrStdout(), runs, g.mode())
			}

			run, err := st.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			records, err := st.AgentResults(ctx, run.ID)
			if err != nil {
				return err
			}
			return report.Summary(cmd.OutOrStdout(), storedResult(run, records), g.mode())
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "runs.db", "SQLite database")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "runs to list, 0 for all")
	return cmd
}

// storedResult rebuilds the summary view of a stored run. Trajectories are not
// stored, so only section counts survive.
func storedResult(run store.Run, records []store.AgentRecord) *core.SearchResult {
	res := &core.SearchResult{
		RunID:        run.ID,
		PathFound:    run.PathFound,
		Agents:       run.Agents,
		AgentsSolved: run.AgentsSolved,
		Tries:        run.Tries,
		Reschedules:  run.Reschedules,
		Makespan:     run.Makespan,
		Flowtime:     run.Flowtime,
		Runtime:      run.Runtime,
		Order:        run.Order,
	}
	for _, r := range records {
		ar := core.AgentResult{
			AgentID:    r.AgentID,
			PathFound:  r.PathFound,
			Cost:       r.Cost,
			Expanded:   r.Expanded,
			Generated:  r.Generated,
			Reopened:   r.Reopened,
			Reexpanded: r.Reexpanded,
			Runtime:    r.Runtime,
			Sections:   make(core.Trajectory, r.Sections),
		}
		if r.LastError != "" {
			ar.Err = errors.New(r.LastError)
		}
		res.Results = append(res.Results, ar)
	}
	return res
}
