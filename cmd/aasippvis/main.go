// Command aasippvis plans an instance and plays the trajectories back in a window.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/aasipp/internal/algo"
	"github.com/elektrokombinacija/aasipp/internal/config"
	"github.com/elektrokombinacija/aasipp/internal/logging"
	"github.com/elektrokombinacija/aasipp/internal/scenario"
	"github.com/elektrokombinacija/aasipp/internal/vis"
	"github.com/elektrokombinacija/aasipp/internal/vis/state"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, mapPath, taskPath, obstaclesPath string

	cmd := &cobra.Command{
		Use:          "aasippvis",
		Short:        "Plan an instance and play it back",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			level, err := cfg.Level()
			if err != nil {
				return err
			}
			logging.Init(level, cfg.LogFormat)

			name := strings.TrimSuffix(filepath.Base(taskPath), filepath.Ext(taskPath))
			inst, err := scenario.LoadInstance(name, mapPath, taskPath, obstaclesPath)
			if err != nil {
				return fmt.Errorf("loading instance: %w", err)
			}

			planner := algo.NewPlanner(cfg, algo.WithLogger(logging.New("scheduler")))
			res := planner.Solve(inst)
			slog.Info("planned",
				"instance", inst.Name,
				"solved", res.AgentsSolved,
				"agents", res.Agents,
				"tries", res.Tries,
				"conflicts", len(res.Conflicts))

			go func() {
				window := new(app.Window)
				window.Option(
					app.Title("AA-SIPP: "+inst.Name),
					app.Size(unit.Dp(1400), unit.Dp(900)),
				)
				if err := vis.NewApp(state.NewState(inst, res), planner.Name()).Run(window); err != nil {
					slog.Error("viewer stopped", "err", err)
					os.Exit(1)
				}
				os.Exit(0)
			}()
			app.Main()
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "TOML planner config (defaults when empty)")
	f.StringVarP(&mapPath, "map", "m", "", "map YAML file")
	f.StringVarP(&taskPath, "task", "t", "", "task YAML file")
	f.StringVarP(&obstaclesPath, "obstacles", "o", "", "dynamic obstacles YAML file")
	_ = cmd.MarkFlagRequired("map")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}
