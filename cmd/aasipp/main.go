// Command aasipp plans collision-free trajectories for disc agents on a grid
// with prioritized any-angle safe-interval search.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/aasipp/internal/config"
	"github.com/elektrokombinacija/aasipp/internal/logging"
	"github.com/elektrokombinacija/aasipp/internal/report"
)

// globals are the flags shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
	markdown   bool

	cfg *config.Config
}

func (g *globals) mode() report.Mode {
	if g.markdown {
		return report.Markdown
	}
	return report.ASCII
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:           "aasipp",
		Short:         "Prioritized any-angle SIPP planner for disc agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.load(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "TOML planner config (defaults when empty)")
	pf.StringVar(&g.logLevel, "log-level", "", "override log level: debug, info, warn, error")
	pf.StringVar(&g.logFormat, "log-format", "", "override log format: text or json")
	pf.BoolVar(&g.markdown, "markdown", false, "print tables as Markdown")

	rootCmd.AddCommand(solveCmd(g))
	rootCmd.AddCommand(benchCmd(g))
	rootCmd.AddCommand(runsCmd(g))
	return rootCmd
}

// load reads the config, applies flag overrides and initialises logging.
func (g *globals) load(cmd *cobra.Command) error {
	cfg := config.Default()
	if g.configPath != "" {
		loaded, err := config.Load(g.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logging.Init(level, cfg.LogFormat)
	g.cfg = cfg
	return nil
}
