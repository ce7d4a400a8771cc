package graphio

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dfgsched/dfgsched/sched"
)

// GraphFile is the YAML form of a dependency graph.
type GraphFile struct {
	Name    string      `yaml:"name,omitempty"`
	OpCount int         `yaml:"opcount"`
	Edges   []EdgeEntry `yaml:"edges"`
}

// EdgeEntry is one weighted dependency.
type EdgeEntry struct {
	From   int   `yaml:"from"`
	To     int   `yaml:"to"`
	Weight int64 `yaml:"weight"`
}

// Validate checks counts and labels before a graph is built.
func (f *GraphFile) Validate() error {
	if f.OpCount < 0 {
		return fmt.Errorf("opcount must be non-negative, got %d", f.OpCount)
	}
	for i, e := range f.Edges {
		if e.From < 0 || e.From >= f.OpCount || e.To < 0 || e.To >= f.OpCount {
			return fmt.Errorf("edges[%d]: label outside [0,%d)", i, f.OpCount)
		}
		if e.Weight < 0 {
			return fmt.Errorf("edges[%d]: weight must be non-negative, got %d", i, e.Weight)
		}
	}
	return nil
}

// Graph builds the dependency graph described by the file.
func (f *GraphFile) Graph() (*sched.DependencyGraph, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	edges := make([]sched.Edge, len(f.Edges))
	for i, e := range f.Edges {
		edges[i] = sched.Edge{From: e.From, To: e.To, Weight: e.Weight}
	}
	return sched.NewDependencyGraph(f.OpCount, edges)
}

// NewGraphFile converts a graph to its YAML form.
func NewGraphFile(name string, g *sched.DependencyGraph) *GraphFile {
	f := &GraphFile{Name: name, OpCount: g.OpCount(), Edges: make([]EdgeEntry, 0, g.NumEdges())}
	for _, e := range g.Edges() {
		f.Edges = append(f.Edges, EdgeEntry{From: e.From, To: e.To, Weight: e.Weight})
	}
	return f
}

// ReadYAML parses a YAML graph strictly: unknown keys are rejected.
func ReadYAML(r io.Reader) (*sched.DependencyGraph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading graph: %w", err)
	}
	var f GraphFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing graph: %w", err)
	}
	return f.Graph()
}

// WriteYAML writes g in YAML form.
func WriteYAML(w io.Writer, name string, g *sched.DependencyGraph) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewGraphFile(name, g)); err != nil {
		return err
	}
	return enc.Close()
}
