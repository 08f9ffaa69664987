package cli

import (
	"strings"
	"testing"
)

func TestTableAddRow(t *testing.T) {
	table := NewTable("Name", "Count")

	table.AddRow("Alice", "30")
	table.AddRow("Bob")
	table.AddRow("Charlie", "25", "Extra")

	if table.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", table.Len())
	}
	if got := table.rows[1]; len(got) != 2 || got[1] != "" {
		t.Errorf("Expected short row to be padded, got %q", got)
	}
	if got := table.rows[2]; len(got) != 2 {
		t.Errorf("Expected long row to be truncated, got %q", got)
	}
}

func TestTableRender(t *testing.T) {
	table := NewTable("Hex", "Count")
	table.SetAlign(1, AlignRight)
	table.AddRow("#FF0000", "2")
	table.AddRow("#0000FF", "100")

	want := "" +
		"Hex      Count\n" +
		"-------  -----\n" +
		"#FF0000      2\n" +
		"#0000FF    100\n"

	if got := table.Render(); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestTableRenderIgnoresANSI(t *testing.T) {
	swatch := "\x1b[48;2;255;0;0m    \x1b[0m"
	table := NewTable("", "Hex")
	table.AddRow(swatch, "#FF0000")

	lines := strings.Split(strings.TrimSuffix(table.Render(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	if lines[1] != "----  -------" {
		t.Errorf("rule = %q, want swatch column of width 4", lines[1])
	}
	if !strings.HasPrefix(lines[2], swatch+"  #FF0000") {
		t.Errorf("row = %q", lines[2])
	}
}

func TestTableRenderEmpty(t *testing.T) {
	if got := NewTable().Render(); got != "" {
		t.Errorf("Expected empty output for no headers, got %q", got)
	}

	got := NewTable("A", "B").Render()
	if got != "A  B\n-  -\n" {
		t.Errorf("Render() = %q", got)
	}
}

func TestVisibleWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"hsl(0, 100%, 50%)", 17},
		{"\x1b[48;2;1;2;3m  \x1b[0m", 2},
		{"héllo", 5},
	}
	for _, tt := range tests {
		if got := visibleWidth(tt.in); got != tt.want {
			t.Errorf("visibleWidth(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
