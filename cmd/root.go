package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dfgsched/dfgsched/sched/ilp"
	_ "github.com/dfgsched/dfgsched/sched/ilp/bnb" // registers "bnb"
	_ "github.com/dfgsched/dfgsched/sched/ilp/cbc" // registers "cbc"
)

var (
	logLevel   string // Log verbosity level
	configPath string // Optional YAML run file
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "dfgsched",
	Short: "Latency/memory trade-off explorer for dataflow graph schedules",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// resolveConfig merges the run file (if any) with the flags the user set.
func resolveConfig(cmd *cobra.Command) RunConfig {
	cfg := DefaultRunConfig()
	if configPath != "" {
		loaded, err := LoadRunConfig(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		cfg = loaded
	}
	if err := applyFlags(cmd.Flags(), &cfg); err != nil {
		logrus.Fatalf("Reading flags: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// newSolver constructs the configured backend; cfg is already validated.
func newSolver(cfg RunConfig) ilp.Solver {
	solver, err := ilp.New(cfg.Solver)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	return solver
}

func registerRunFlags(fs *pflag.FlagSet) {
	def := DefaultRunConfig()
	fs.String("solver", def.Solver, "ILP backend (bnb, cbc)")
	fs.Duration("time-limit", def.TimeLimit, "Wall-clock budget per solve")
	fs.StringP("memory-model", "M", def.MemoryModel, "Memory model (pessimistic, optimistic)")
}

func registerParetoFlags(fs *pflag.FlagSet) {
	def := DefaultRunConfig().Pareto
	fs.Int("samples", def.Samples, "Number of alpha values for the linearization strategy")
	fs.Bool("skip-infeasible", def.SkipInfeasible, "Skip infeasible interior points instead of aborting")
	fs.String("artifact-dir", def.ArtifactDir, "Directory for one LP file per solve (empty disables)")
	fs.String("output-dir", def.OutputDir, "Directory for front reports")
	fs.String("trace", def.Trace, "Solve trace level in reports (none, solves)")
	fs.String("format", def.Format, "Report format (yaml, json)")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML run file")
	registerRunFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(solveCmd, paretoCmd, batchCmd, generateCmd)
}
