package graphio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dfgsched/dfgsched/sched"
)

// EdgeListExt is the extension of benchmark edge lists.
const EdgeListExt = ".edgelist"

// Load reads a graph, choosing the format by extension: .yaml and .yml
// are YAML, anything else is an edge list.
func Load(path string) (*sched.DependencyGraph, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening graph: %w", err)
		}
		defer f.Close()
		g, err := ReadYAML(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return g, nil
	default:
		return LoadEdgeList(path)
	}
}

// Save writes g to path in the format implied by its extension.
func Save(path string, g *sched.DependencyGraph) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating graph file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = WriteYAML(f, BenchmarkName(path), g)
	default:
		if iso := isolated(g); len(iso) > 0 {
			logrus.Warnf("%s: %d operations without edges are not representable in an edge list", path, len(iso))
		}
		err = WriteEdgeList(f, g)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// BenchmarkName is the file name of path without its extension.
func BenchmarkName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FindBenchmarks returns the edge lists directly inside dir, sorted.
func FindBenchmarks(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+EdgeListExt))
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("benchmark directory: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}
