package report

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/dfgsched/dfgsched/sched"
)

// Palette colors the table. Disabled palettes print plain text.
type Palette struct {
	Header    *color.Color
	Front     *color.Color
	Dominated *color.Color
	Note      *color.Color
}

// NewPalette returns the default palette, enabled or not.
func NewPalette(enabled bool) *Palette {
	p := &Palette{
		Header:    color.New(color.Bold),
		Front:     color.New(color.FgGreen, color.Bold),
		Dominated: color.New(color.FgHiBlack),
		Note:      color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.Header, p.Front, p.Dominated, p.Note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RenderTable prints every distinct design point, marking the front.
func RenderTable(w io.Writer, r *FrontReport, p *Palette) {
	onFront := make(map[sched.DesignPoint]bool, len(r.Front))
	for _, pt := range r.Front {
		onFront[pt] = true
	}

	fmt.Fprintln(w, p.Header.Sprintf("%s (%s, %s): %d operations, %d edges",
		r.Benchmark, r.MemoryModel, r.Strategy, r.OpCount, r.Edges))
	if r.Collapsed {
		fmt.Fprintln(w, p.Note.Sprintf("search space is empty: M=%d L=%d is optimal in both objectives", r.Mmin, r.Lmin))
	}

	header := fmt.Sprintf("%-10s %-10s %s", "LATENCY", "MEMORY", "FRONT")
	fmt.Fprintln(w, p.Header.Sprint(header))
	seen := make(map[sched.DesignPoint]bool, len(r.Points))
	for _, pt := range sortedPoints(r.Points) {
		if seen[pt] {
			continue
		}
		seen[pt] = true
		if onFront[pt] {
			fmt.Fprintln(w, p.Front.Sprintf("%-10d %-10d *", pt.L, pt.M))
		} else {
			fmt.Fprintln(w, p.Dominated.Sprintf("%-10d %d", pt.L, pt.M))
		}
	}
	for _, s := range r.Skipped {
		fmt.Fprintln(w, p.Note.Sprintf("skipped %s: infeasible", s))
	}
}

func sortedPoints(points []sched.DesignPoint) []sched.DesignPoint {
	out := append([]sched.DesignPoint(nil), points...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].L != out[j].L {
			return out[i].L < out[j].L
		}
		return out[i].M < out[j].M
	})
	return out
}
