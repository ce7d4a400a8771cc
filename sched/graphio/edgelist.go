package graphio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dfgsched/dfgsched/sched"
)

// ReadEdgeList parses a weighted edge list. Weights may be written as
// floats ("5.0") but must be integral and non-negative.
func ReadEdgeList(r io.Reader) (*sched.DependencyGraph, error) {
	var edges []sched.Edge
	labels := make(map[int]bool)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected \"u v weight\", got %d fields", lineNo, len(fields))
		}
		from, err := parseLabel(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		to, err := parseLabel(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		w, err := parseWeight(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		labels[from], labels[to] = true, true
		edges = append(edges, sched.Edge{From: from, To: to, Weight: w})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading edge list: %w", err)
	}

	opcount := len(labels)
	for l := range labels {
		if l >= opcount {
			return nil, fmt.Errorf("operation labels must be 0..%d without gaps, found %d", opcount-1, l)
		}
	}
	return sched.NewDependencyGraph(opcount, edges)
}

// LoadEdgeList reads a weighted edge list from a file.
func LoadEdgeList(path string) (*sched.DependencyGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening edge list: %w", err)
	}
	defer f.Close()
	g, err := ReadEdgeList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// WriteEdgeList writes g as "u v w" lines in edge order. Operations
// without edges are lost; use WriteYAML to keep them.
func WriteEdgeList(w io.Writer, g *sched.DependencyGraph) error {
	bw := bufio.NewWriter(w)
	for _, e := range g.Edges() {
		if _, err := fmt.Fprintf(bw, "%d %d %d\n", e.From, e.To, e.Weight); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func parseLabel(s string) (int, error) {
	l, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("operation label %q is not an integer", s)
	}
	if l < 0 {
		return 0, fmt.Errorf("operation label %d is negative", l)
	}
	return l, nil
}

func parseWeight(s string) (int64, error) {
	if w, err := strconv.ParseInt(s, 10, 64); err == nil {
		if w < 0 {
			return 0, fmt.Errorf("weight %d is negative", w)
		}
		return w, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("weight %q is not a number", s)
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt64/2 {
		return 0, fmt.Errorf("weight %v must be a non-negative integer", f)
	}
	return int64(f), nil
}

// isolated returns the operations of g that no edge touches.
func isolated(g *sched.DependencyGraph) []int {
	touched := make([]bool, g.OpCount())
	for _, e := range g.Edges() {
		touched[e.From], touched[e.To] = true, true
	}
	var out []int
	for o, ok := range touched {
		if !ok {
			out = append(out, o)
		}
	}
	return out
}
