package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldenfronts.json.
type GoldenDataset struct {
	Tests []GoldenFrontCase `json:"tests"`
}

// GoldenFrontCase is a small graph with its exact Pareto front per memory model.
type GoldenFrontCase struct {
	Name         string      `json:"name"`
	OpCount      int         `json:"opcount"`
	Edges        []EdgeSpec  `json:"edges"`
	MemoryModels []string    `json:"memory_models"`
	Strategies   []string    `json:"strategies"`
	LatencyMin   int64       `json:"latency_min"`
	Front        GoldenFront `json:"front"`
}

// GoldenFront maps a memory model token to its expected front as
// [memory, latency] pairs ordered by latency.
type GoldenFront map[string][][2]int64

// Fixture converts the case to a graph fixture.
func (c GoldenFrontCase) Fixture() Fixture {
	return Fixture{Name: c.Name, OpCount: c.OpCount, Edges: c.Edges}
}

// LoadGoldenDataset loads the golden fronts from the testdata directory.
// The path is resolved relative to this source file: sched/internal/testutil/ -> testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldenfronts.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	return &dataset
}
