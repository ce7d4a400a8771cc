package trace

import "time"

// TraceSummary aggregates statistics from an ExplorationTrace.
type TraceSummary struct {
	TotalSolves    int            `yaml:"total_solves" json:"total_solves"`
	SkippedSolves  int            `yaml:"skipped_solves" json:"skipped_solves"`
	StatusCounts   map[string]int `yaml:"status_counts" json:"status_counts"` // status name → count of solves
	TotalElapsed   time.Duration  `yaml:"total_elapsed" json:"total_elapsed"`
	SlowestStep    string         `yaml:"slowest_step" json:"slowest_step"`
	SlowestElapsed time.Duration  `yaml:"slowest_elapsed" json:"slowest_elapsed"`
}

// Summarize computes aggregate statistics from an ExplorationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(et *ExplorationTrace) *TraceSummary {
	summary := &TraceSummary{
		StatusCounts: make(map[string]int),
	}
	if et == nil {
		return summary
	}

	summary.TotalSolves = len(et.Solves)
	for _, s := range et.Solves {
		summary.StatusCounts[s.Status]++
		summary.TotalElapsed += s.Elapsed
		if s.Skipped {
			summary.SkippedSolves++
		}
		if s.Elapsed > summary.SlowestElapsed {
			summary.SlowestElapsed = s.Elapsed
			summary.SlowestStep = s.Step
		}
	}
	return summary
}
