package lang

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// String renders v the way the interpreter prints it: scalars inline,
// vectors in brackets, strings quoted and higher ranks as a boxed grid.
func (v Value) String() string {
	switch v.Rank() {
	case 0:
		return v.elem(0)
	case 1:
		if v.kind == CharKind {
			return strconv.Quote(v.Text())
		}
		parts := make([]string, len(v.data))
		for i := range v.data {
			parts[i] = v.elem(i)
		}
		return "[" + strings.Join(parts, " ") + "]"
	}
	return v.grid()
}

func (v Value) elem(i int) string {
	if v.kind == CharKind {
		q := strconv.QuoteRune(rune(v.data[i]))
		return "@" + q[1:len(q)-1]
	}
	return FormatNum(v.data[i])
}

// FormatNum renders a number with a high minus for negatives.
func FormatNum(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "∞"
	case math.IsInf(x, -1):
		return "¯∞"
	}
	var s string
	if math.Abs(x) >= 1e16 || (x != 0 && math.Abs(x) < 1e-6) {
		s = strconv.FormatFloat(x, 'e', -1, 64)
	} else {
		s = strconv.FormatFloat(x, 'f', -1, 64)
	}
	return strings.ReplaceAll(s, "-", "¯")
}

// grid renders a rank 2+ array as rows of right-aligned cells.
// Leading axes beyond the last two separate blocks with blank lines.
func (v Value) grid() string {
	cols := v.shape[len(v.shape)-1]
	rowsPerBlock := v.shape[len(v.shape)-2]
	cells := make([]string, len(v.data))
	width := make([]int, cols)
	for i := range v.data {
		if v.kind == CharKind {
			cells[i] = string(rune(v.data[i]))
		} else {
			cells[i] = FormatNum(v.data[i])
		}
		if cols > 0 {
			width[i%cols] = max(width[i%cols], utf8.RuneCountInString(cells[i]))
		}
	}

	var b strings.Builder
	b.WriteString("╭─")
	totalRows := 0
	if cols > 0 {
		totalRows = len(v.data) / cols
	} else {
		totalRows = product(v.shape[:len(v.shape)-1])
	}
	for r := range totalRows {
		b.WriteString("\n")
		if r > 0 && rowsPerBlock > 0 && r%rowsPerBlock == 0 {
			b.WriteString("\n")
		}
		if r == 0 {
			b.WriteString(strings.Repeat("╷", len(v.shape)-1) + " ")
		} else {
			b.WriteString(strings.Repeat(" ", len(v.shape)-1) + " ")
		}
		for c := range cols {
			cell := cells[r*cols+c]
			if c > 0 && v.kind == NumKind {
				b.WriteString(" ")
			}
			if v.kind == NumKind {
				b.WriteString(strings.Repeat(" ", width[c]-utf8.RuneCountInString(cell)))
			}
			b.WriteString(cell)
		}
	}
	b.WriteString("\n╯")
	return b.String()
}
