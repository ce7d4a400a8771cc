package trace

// TraceLevel controls the verbosity of exploration tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSolves captures every solve of an exploration.
	TraceLevelSolves TraceLevel = "solves"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelSolves: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// ExplorationTrace collects solve records in the order they were issued.
type ExplorationTrace struct {
	Level  TraceLevel    `yaml:"level" json:"level"`
	Solves []SolveRecord `yaml:"solves" json:"solves"`
}

// NewExplorationTrace creates an ExplorationTrace ready for recording.
func NewExplorationTrace(level TraceLevel) *ExplorationTrace {
	return &ExplorationTrace{
		Level:  level,
		Solves: make([]SolveRecord, 0),
	}
}

// Enabled reports whether records are kept. Safe on a nil trace.
func (et *ExplorationTrace) Enabled() bool {
	return et != nil && et.Level == TraceLevelSolves
}

// RecordSolve appends a solve record. No-op when tracing is disabled.
func (et *ExplorationTrace) RecordSolve(record SolveRecord) {
	if !et.Enabled() {
		return
	}
	et.Solves = append(et.Solves, record)
}
