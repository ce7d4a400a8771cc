// Package report renders the outcome of a Pareto exploration: a
// machine-readable front report in YAML or JSON, and a terminal table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dfgsched/dfgsched/sched"
	"github.com/dfgsched/dfgsched/sched/trace"
)

// FrontReport is the persisted result of one exploration.
type FrontReport struct {
	Benchmark   string              `yaml:"benchmark" json:"benchmark"`
	MemoryModel sched.MemoryModel   `yaml:"memory_model" json:"memory_model"`
	Strategy    sched.Strategy      `yaml:"strategy" json:"strategy"`
	Solver      string              `yaml:"solver" json:"solver"`
	OpCount     int                 `yaml:"opcount" json:"opcount"`
	Edges       int                 `yaml:"edges" json:"edges"`
	Mmin        int64               `yaml:"memory_min" json:"memory_min"`
	Lmin        int64               `yaml:"latency_min" json:"latency_min"`
	MemorySpan  [2]int64            `yaml:"memory_span,flow" json:"memory_span"`
	LatencySpan [2]int64            `yaml:"latency_span,flow" json:"latency_span"`
	Collapsed   bool                `yaml:"collapsed" json:"collapsed"`
	Front       []sched.DesignPoint `yaml:"front" json:"front"`
	Points      []sched.DesignPoint `yaml:"points" json:"points"`
	Skipped     []string            `yaml:"skipped,omitempty" json:"skipped,omitempty"`
	Summary     *trace.TraceSummary `yaml:"summary,omitempty" json:"summary,omitempty"`
	Solves      []trace.SolveRecord `yaml:"solves,omitempty" json:"solves,omitempty"`
}

// Meta identifies what was explored.
type Meta struct {
	Benchmark   string
	MemoryModel sched.MemoryModel
	Strategy    sched.Strategy
	Solver      string
}

// New assembles a report. tr may be nil; when it is enabled the per-solve
// records and their summary are included.
func New(meta Meta, g *sched.DependencyGraph, x *sched.Exploration, tr *trace.ExplorationTrace) *FrontReport {
	r := &FrontReport{
		Benchmark:   meta.Benchmark,
		MemoryModel: meta.MemoryModel,
		Strategy:    meta.Strategy,
		Solver:      meta.Solver,
		OpCount:     g.OpCount(),
		Edges:       g.NumEdges(),
		Mmin:        x.Mmin,
		Lmin:        x.Lmin,
		MemorySpan:  x.MemorySpan,
		LatencySpan: x.LatencySpan,
		Collapsed:   x.Collapsed,
		Front:       x.Front(),
		Points:      x.Points,
		Skipped:     x.SkippedSteps,
	}
	if tr.Enabled() {
		r.Summary = trace.Summarize(tr)
		r.Solves = tr.Solves
	}
	return r
}

// FileName is the report name for a benchmark:
// <bench>_<memory model>_pareto_<strategy>.yaml.
func FileName(bench string, mm sched.MemoryModel, st sched.Strategy) string {
	return fmt.Sprintf("%s_%s_pareto_%s.yaml", bench, mm, st)
}

// WriteYAML encodes r as YAML.
func (r *FrontReport) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

// WriteJSON encodes r as indented JSON.
func (r *FrontReport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteFile writes r to path, as JSON when the extension is .json and as
// YAML otherwise. Parent directories are created.
func (r *FrontReport) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = r.WriteJSON(f)
	} else {
		err = r.WriteYAML(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
