package sched

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dfgsched/dfgsched/sched/ilp/bnb"
	"github.com/dfgsched/dfgsched/sched/internal/testutil"
)

func fixtureGraph(t *testing.T, f testutil.Fixture) *DependencyGraph {
	t.Helper()
	edges := make([]Edge, len(f.Edges))
	for i, e := range f.Edges {
		edges[i] = Edge{From: int(e[0]), To: int(e[1]), Weight: e[2]}
	}
	g, err := NewDependencyGraph(f.OpCount, edges)
	require.NoError(t, err, f.Name)
	return g
}

// solveBnB runs one solve on the in-process backend.
func solveBnB(t *testing.T, g *DependencyGraph, cfg SolveConfig) Result {
	t.Helper()
	if cfg.TimeLimit == 0 {
		cfg.TimeLimit = 30 * time.Second
	}
	r, err := Solve(context.Background(), g, cfg, bnb.New())
	require.NoError(t, err)
	return r
}
