package cli

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Alignment controls how a column is padded.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Table represents a simple table formatter with dynamic column widths.
// Cells may contain ANSI colour codes; they do not count towards widths.
type Table struct {
	headers []string
	rows    [][]string
	padding int
	align   map[int]Alignment
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		padding: 2, // 2 spaces between columns
		align:   make(map[int]Alignment),
	}
}

// SetAlign sets the alignment of a column.
func (t *Table) SetAlign(col int, a Alignment) {
	t.align[col] = a
}

// AddRow adds a row to the table, padding or truncating it to the header count.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], visibleWidth(cell))
		}
	}

	sep := strings.Repeat(" ", t.padding)
	var sb strings.Builder

	t.writeLine(&sb, t.headers, widths, sep)

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	sb.WriteString(strings.Join(rule, sep))
	sb.WriteString("\n")

	for _, row := range t.rows {
		t.writeLine(&sb, row, widths, sep)
	}

	return sb.String()
}

func (t *Table) writeLine(sb *strings.Builder, cells []string, widths []int, sep string) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = pad(cell, widths[i], t.align[i])
	}
	// Trailing spaces on the last column are noise in terminal output.
	sb.WriteString(strings.TrimRight(strings.Join(parts, sep), " "))
	sb.WriteString("\n")
}

// visibleWidth returns the number of runes s occupies on screen.
func visibleWidth(s string) int {
	if strings.IndexByte(s, 0x1b) >= 0 {
		s = ansiEscape.ReplaceAllString(s, "")
	}
	return utf8.RuneCountInString(s)
}

func pad(s string, width int, a Alignment) string {
	n := width - visibleWidth(s)
	if n <= 0 {
		return s
	}
	if a == AlignRight {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}
