package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/dfgsched/dfgsched/sched"
	"github.com/dfgsched/dfgsched/sched/ilp"
	"github.com/dfgsched/dfgsched/sched/trace"
)

// RunConfig is the optional YAML run file. Flags given on the command line
// override it; flags left at their defaults never do.
// All top-level sections must be listed to satisfy KnownFields(true).
type RunConfig struct {
	Solver      string        `yaml:"solver"`
	TimeLimit   time.Duration `yaml:"time_limit"`
	MemoryModel string        `yaml:"memory_model"`
	Pareto      ParetoConfig  `yaml:"pareto"`
	Batch       BatchConfig   `yaml:"batch"`
}

// ParetoConfig configures front exploration and its report.
type ParetoConfig struct {
	Strategy       string `yaml:"strategy"`
	Samples        int    `yaml:"samples"`
	SkipInfeasible bool   `yaml:"skip_infeasible"`
	ArtifactDir    string `yaml:"artifact_dir"` // empty: no LP artifacts
	OutputDir      string `yaml:"output_dir"`
	Trace          string `yaml:"trace"`
	Format         string `yaml:"format"` // yaml or json
}

// BatchConfig lists the combinations run for every benchmark.
type BatchConfig struct {
	MemoryModels []string `yaml:"memory_models"`
	Strategies   []string `yaml:"strategies"`
}

var validFormats = map[string]bool{"yaml": true, "json": true}

// DefaultRunConfig returns the settings used when neither a run file nor a
// flag says otherwise.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Solver:      "cbc",
		TimeLimit:   sched.DefaultTimeLimit,
		MemoryModel: string(sched.Pessimistic),
		Pareto: ParetoConfig{
			Strategy:  string(sched.StrategySweep),
			Samples:   sched.DefaultSamples,
			OutputDir: "results",
			Trace:     string(trace.TraceLevelNone),
			Format:    "yaml",
		},
		Batch: BatchConfig{
			MemoryModels: []string{string(sched.Optimistic)},
			Strategies:   []string{string(sched.StrategySweep)},
		},
	}
}

// LoadRunConfig parses a run file over the defaults, so omitted keys keep
// their default values. Unknown keys are errors.
func LoadRunConfig(path string) (RunConfig, error) {
	cfg := DefaultRunConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading run config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing run config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every token before any graph is loaded.
func (c RunConfig) Validate() error {
	if _, err := ilp.New(c.Solver); err != nil {
		return err
	}
	if c.TimeLimit < 0 {
		return fmt.Errorf("time_limit must be non-negative, got %v", c.TimeLimit)
	}
	if _, err := sched.ParseMemoryModel(c.MemoryModel); err != nil {
		return err
	}
	if _, err := sched.ParseStrategy(c.Pareto.Strategy); err != nil {
		return err
	}
	if c.Pareto.Samples < 0 {
		return fmt.Errorf("pareto.samples must be non-negative, got %d", c.Pareto.Samples)
	}
	if !trace.IsValidTraceLevel(c.Pareto.Trace) {
		return fmt.Errorf("unknown pareto.trace %q; valid: none, solves", c.Pareto.Trace)
	}
	if !validFormats[c.Pareto.Format] {
		return fmt.Errorf("unknown pareto.format %q; valid: yaml, json", c.Pareto.Format)
	}
	for i, mm := range c.Batch.MemoryModels {
		if _, err := sched.ParseMemoryModel(mm); err != nil {
			return fmt.Errorf("batch.memory_models[%d]: %w", i, err)
		}
	}
	for i, st := range c.Batch.Strategies {
		if _, err := sched.ParseStrategy(st); err != nil {
			return fmt.Errorf("batch.strategies[%d]: %w", i, err)
		}
	}
	return nil
}

// explorerConfig maps the pareto section onto one exploration.
func (c RunConfig) explorerConfig(mm sched.MemoryModel, st sched.Strategy) sched.ExplorerConfig {
	return sched.ExplorerConfig{
		MemoryModel:    mm,
		Strategy:       st,
		Samples:        c.Pareto.Samples,
		SkipInfeasible: c.Pareto.SkipInfeasible,
		ArtifactDir:    c.Pareto.ArtifactDir,
		TimeLimit:      c.TimeLimit,
	}
}

// applyFlags copies every explicitly set flag of fs into c. Flags that a
// command does not define are ignored.
func applyFlags(fs *pflag.FlagSet, c *RunConfig) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && fs.Lookup(name) != nil && fs.Changed(name) {
			err = apply()
		}
	}
	set("solver", func() (e error) { c.Solver, e = fs.GetString("solver"); return })
	set("time-limit", func() (e error) { c.TimeLimit, e = fs.GetDuration("time-limit"); return })
	set("memory-model", func() (e error) { c.MemoryModel, e = fs.GetString("memory-model"); return })
	set("pareto-type", func() (e error) { c.Pareto.Strategy, e = fs.GetString("pareto-type"); return })
	set("samples", func() (e error) { c.Pareto.Samples, e = fs.GetInt("samples"); return })
	set("skip-infeasible", func() (e error) { c.Pareto.SkipInfeasible, e = fs.GetBool("skip-infeasible"); return })
	set("artifact-dir", func() (e error) { c.Pareto.ArtifactDir, e = fs.GetString("artifact-dir"); return })
	set("output-dir", func() (e error) { c.Pareto.OutputDir, e = fs.GetString("output-dir"); return })
	set("trace", func() (e error) { c.Pareto.Trace, e = fs.GetString("trace"); return })
	set("format", func() (e error) { c.Pareto.Format, e = fs.GetString("format"); return })
	set("memory-models", func() (e error) { c.Batch.MemoryModels, e = fs.GetStringSlice("memory-models"); return })
	set("pareto-types", func() (e error) { c.Batch.Strategies, e = fs.GetStringSlice("pareto-types"); return })
	return err
}
