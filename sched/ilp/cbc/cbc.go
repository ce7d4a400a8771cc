// Package cbc runs the COIN-OR branch-and-cut solver as an external
// process. The model is handed over as the LP artifact and the answer is
// read back from cbc's solution file.
package cbc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dfgsched/dfgsched/sched/ilp"
)

// ErrBinaryNotFound is returned when the cbc executable cannot be located.
var ErrBinaryNotFound = errors.New("cbc executable not found")

// Solver invokes the cbc command line tool.
type Solver struct {
	// Path is the executable name or path. Empty means "cbc" on $PATH.
	Path string
	// ExtraArgs are inserted before the solve directive.
	ExtraArgs []string
}

// New returns a Solver that looks up cbc on $PATH.
func New() *Solver {
	return &Solver{}
}

// Solve implements ilp.Solver.
func (s *Solver) Solve(ctx context.Context, m *ilp.Model, opts ilp.Options) (*ilp.Solution, error) {
	bin := s.Path
	if bin == "" {
		bin = "cbc"
	}
	bin, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBinaryNotFound, err)
	}

	workDir, err := os.MkdirTemp("", "dfgsched-cbc-")
	if err != nil {
		return nil, fmt.Errorf("create cbc work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	lpPath := opts.ArtifactPath
	if lpPath == "" {
		lpPath = filepath.Join(workDir, "model.lp")
		if err := ilp.WriteLPFile(lpPath, m); err != nil {
			return nil, err
		}
	}
	solPath := filepath.Join(workDir, "model.sol")

	args := []string{lpPath}
	if opts.TimeLimit > 0 {
		secs := int64(math.Ceil(opts.TimeLimit.Seconds()))
		args = append(args, "-sec", strconv.FormatInt(secs, 10), "-timeMode", "elapsed")
	}
	args = append(args, s.ExtraArgs...)
	args = append(args, "-branch", "-printingOptions", "all", "-solution", solPath)

	logrus.Debugf("cbc: %s %s", bin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("run cbc: %w\n%s", err, out.String())
	}

	f, err := os.Open(solPath)
	if err != nil {
		return nil, fmt.Errorf("cbc produced no solution file: %w\n%s", err, out.String())
	}
	defer f.Close()
	return ParseSolution(f, m)
}

// ParseSolution reads a cbc solution file for m. The first line carries the
// status and objective; each following line is "index name value reduced".
// Lines flagged with "**" (infeasibility markers) are read the same way.
func ParseSolution(r io.Reader, m *ilp.Model) (*ilp.Solution, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read cbc solution: %w", err)
		}
		return nil, fmt.Errorf("read cbc solution: empty file")
	}
	header := strings.TrimSpace(sc.Text())
	sol := &ilp.Solution{Status: parseStatus(header)}
	if i := strings.LastIndex(header, "objective value"); i >= 0 {
		fields := strings.Fields(header[i+len("objective value"):])
		if len(fields) > 0 {
			if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
				sol.Objective = v
			}
		}
	}

	index := make(map[string]int, m.NumVars())
	for i, v := range m.Vars {
		index[v.Name] = i
	}
	values := make([]float64, m.NumVars())
	seen := 0
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) > 0 && fields[0] == "**" {
			fields = fields[1:]
		}
		if len(fields) < 3 {
			continue
		}
		i, ok := index[fields[1]]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse value of %s: %w", fields[1], err)
		}
		values[i] = v
		seen++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cbc solution: %w", err)
	}

	// cbc prints an assignment even when it stopped without a feasible one.
	if sol.Status == ilp.Feasible && seen == 0 {
		sol.Status = ilp.NotSolved
	}
	if sol.Status.HasValues() {
		sol.Values = values
	}
	return sol, nil
}

func parseStatus(header string) ilp.Status {
	switch {
	case strings.HasPrefix(header, "Optimal"):
		return ilp.Optimal
	case strings.HasPrefix(header, "Infeasible"), strings.HasPrefix(header, "Integer infeasible"):
		return ilp.Infeasible
	case strings.HasPrefix(header, "Unbounded"):
		return ilp.Unbounded
	case strings.HasPrefix(header, "Stopped"):
		if strings.Contains(header, "objective value") {
			return ilp.Feasible
		}
		return ilp.NotSolved
	default:
		return ilp.Undefined
	}
}
