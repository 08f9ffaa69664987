package colour

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Entry is one colour in an extraction report.
type Entry struct {
	Hex   string `json:"hex"`
	RGB   string `json:"rgb"`
	HSL   string `json:"hsl"`
	Count int    `json:"count"`
}

// NewEntry builds the textual representations of a colour.
func NewEntry(rgb RGB, count int) Entry {
	return Entry{
		Hex:   rgb.Hex(),
		RGB:   rgb.String(),
		HSL:   FormatHSL(rgb),
		Count: count,
	}
}

// Value parses the entry's hex code back into its colour.
func (e Entry) Value() RGB {
	rgb, _ := ParseHex(e.Hex)
	return rgb
}

// Report is the ordered result of one extraction.
type Report struct {
	Algorithm Algorithm `json:"algorithm"`
	// Total is the number of pixels that contributed to the counts.
	Total   int     `json:"total"`
	Colours []Entry `json:"colours"`
}

// Len returns the number of colours in the report.
func (r *Report) Len() int {
	return len(r.Colours)
}

// ToJSON converts the report to indented JSON.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// String returns a human-readable representation of the report.
func (r *Report) String() string {
	if len(r.Colours) == 0 {
		return "Empty report"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d colours (%s, %d pixels):\n", len(r.Colours), r.Algorithm, r.Total)
	for i, e := range r.Colours {
		fmt.Fprintf(&sb, "  %2d: %s  %-18s  %-20s  %d\n", i+1, e.Hex, e.RGB, e.HSL, e.Count)
	}
	return sb.String()
}

// All returns an iterator over the report entries.
func (r *Report) All() func(func(int, Entry) bool) {
	return func(yield func(int, Entry) bool) {
		for i, e := range r.Colours {
			if !yield(i, e) {
				return
			}
		}
	}
}
