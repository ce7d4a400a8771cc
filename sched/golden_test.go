package sched

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfgsched/dfgsched/sched/ilp/bnb"
	"github.com/dfgsched/dfgsched/sched/internal/testutil"
)

func TestExplore_GoldenFronts(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Tests)

	for _, tc := range dataset.Tests {
		for _, mm := range tc.MemoryModels {
			for _, st := range tc.Strategies {
				t.Run(fmt.Sprintf("%s/%s/%s", tc.Name, mm, st), func(t *testing.T) {
					// GIVEN a graph with a known front
					g := fixtureGraph(t, tc.Fixture())
					want, ok := tc.Front[mm]
					require.True(t, ok, "no expected front for %s", mm)

					// WHEN the explorer traces it on the in-process backend
					e, err := NewExplorer(g, bnb.New(), ExplorerConfig{
						MemoryModel: MemoryModel(mm),
						Strategy:    Strategy(st),
						TimeLimit:   30 * time.Second,
					})
					require.NoError(t, err)
					x, err := e.Explore(context.Background())
					require.NoError(t, err)

					// THEN the front and the latency lower bound match exactly
					got := make([][2]int64, 0, len(x.Front()))
					for _, p := range x.Front() {
						got = append(got, [2]int64{p.M, p.L})
					}
					assert.Equal(t, want, got)
					assert.Equal(t, tc.LatencyMin, x.Lmin)
					assert.Equal(t, want[len(want)-1][0], x.Mmin, "memory lower bound is the cheapest front point")
				})
			}
		}
	}
}
