package ilp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// dummyVar stands in for empty expressions, which the LP format cannot express.
const dummyVar = "__dummy"

// termsPerLine keeps LP lines well below the 255 character limit of older readers.
const termsPerLine = 8

// WriteLPFile serializes m in CPLEX LP format to path, creating parent
// directories as needed.
func WriteLPFile(path string, m *Model) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create artifact directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create LP file %q: %w", path, err)
	}
	if err := WriteLP(f, m); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close LP file %q: %w", path, err)
	}
	return nil
}

// WriteLP serializes m in CPLEX LP format.
func WriteLP(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	needDummy := len(m.Objective.Terms) == 0

	fmt.Fprintf(bw, "\\* %s *\\\n", m.Name)
	if m.Objective.Constant != 0 {
		fmt.Fprintf(bw, "\\* objective constant %s omitted *\\\n", formatNumber(m.Objective.Constant))
	}
	bw.WriteString("Minimize\n")
	if len(m.Objective.Terms) == 0 {
		fmt.Fprintf(bw, "OBJ: %s\n", dummyVar)
	} else {
		fmt.Fprintf(bw, "OBJ: %s\n", formatTerms(m, m.Objective.Terms))
	}

	bw.WriteString("Subject To\n")
	for i, c := range m.Constraints {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("_C%d", i+1)
		}
		lhs := "0 " + dummyVar
		if len(c.Expr.Terms) > 0 {
			lhs = formatTerms(m, c.Expr.Terms)
		} else {
			needDummy = true
		}
		fmt.Fprintf(bw, "%s: %s %s %s\n", name, lhs, c.Sense, formatNumber(c.RHS))
	}

	var generals, binaries []string
	bw.WriteString("Bounds\n")
	if needDummy {
		fmt.Fprintf(bw, " %s = 0\n", dummyVar)
	}
	for _, v := range m.Vars {
		switch v.Kind {
		case Binary:
			binaries = append(binaries, v.Name)
			continue
		default:
			generals = append(generals, v.Name)
		}
		if b := formatBounds(v); b != "" {
			fmt.Fprintf(bw, " %s\n", b)
		}
	}
	writeSection(bw, "Generals", generals)
	writeSection(bw, "Binaries", binaries)
	bw.WriteString("End\n")
	return bw.Flush()
}

func writeSection(bw *bufio.Writer, title string, names []string) {
	if len(names) == 0 {
		return
	}
	bw.WriteString(title + "\n")
	for _, n := range names {
		bw.WriteString(n + "\n")
	}
}

func formatBounds(v Variable) string {
	loInf := math.IsInf(v.Lower, -1)
	hiInf := math.IsInf(v.Upper, 1)
	switch {
	case loInf && hiInf:
		return v.Name + " free"
	case loInf:
		return fmt.Sprintf("-inf <= %s <= %s", v.Name, formatNumber(v.Upper))
	case v.Lower == v.Upper:
		return fmt.Sprintf("%s = %s", v.Name, formatNumber(v.Lower))
	case hiInf && v.Lower == 0:
		return ""
	case hiInf:
		return fmt.Sprintf("%s >= %s", v.Name, formatNumber(v.Lower))
	case v.Lower == 0:
		return fmt.Sprintf("%s <= %s", v.Name, formatNumber(v.Upper))
	default:
		return fmt.Sprintf("%s <= %s <= %s", formatNumber(v.Lower), v.Name, formatNumber(v.Upper))
	}
}

func formatTerms(m *Model, terms []Term) string {
	var sb strings.Builder
	for i, t := range terms {
		if i > 0 && i%termsPerLine == 0 {
			sb.WriteString("\n ")
		}
		coef := t.Coef
		switch {
		case i == 0 && coef < 0:
			sb.WriteString("- ")
			coef = -coef
		case i > 0 && coef < 0:
			sb.WriteString(" - ")
			coef = -coef
		case i > 0:
			sb.WriteString(" + ")
		}
		if coef != 1 {
			sb.WriteString(formatNumber(coef))
			sb.WriteByte(' ')
		}
		sb.WriteString(m.Vars[t.Var].Name)
	}
	return sb.String()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', 12, 64)
}
