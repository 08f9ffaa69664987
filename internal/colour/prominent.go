package colour

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"slices"

	"github.com/EdlinOrg/prominentcolor"

	"github.com/jmylchreest/toolshub/internal/security"
)

// ProminentExtractor groups similar colours with k-means clustering. It is
// better suited to photographs, where exact colour matches rarely dominate.
// Counts in its reports are cluster sizes measured on a resized copy of the
// image, so they are relative rather than exact pixel counts.
type ProminentExtractor struct {
	// ResizeTo is the size the image is scaled to before clustering.
	ResizeTo uint
}

// NewProminentExtractor creates a ProminentExtractor with the library defaults.
func NewProminentExtractor() *ProminentExtractor {
	return &ProminentExtractor{ResizeTo: prominentcolor.DefaultSize}
}

// Extract implements Extractor.
func (e *ProminentExtractor) Extract(img image.Image, limit int) (*Report, error) {
	if err := checkBounds(img); err != nil {
		return nil, err
	}
	if !hasVisiblePixels(img) {
		return nil, ErrEmptyResult
	}

	k := clampLimit(limit)
	items, err := prominentcolor.KmeansWithAll(
		k,
		img,
		prominentcolor.ArgumentNoCropping,
		e.ResizeTo,
		[]prominentcolor.ColorBackgroundMask{},
	)
	if err != nil {
		return nil, fmt.Errorf("k-means clustering failed: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyResult
	}

	slices.SortStableFunc(items, func(a, b prominentcolor.ColorItem) int {
		return cmp.Compare(b.Cnt, a.Cnt)
	})

	seen := make(map[string]bool, len(items))
	entries := make([]Entry, 0, min(k, len(items)))
	total := 0
	for _, item := range items {
		if len(entries) == k {
			break
		}
		entry := NewEntry(RGB{
			R: security.SafeUint8FromUint32(item.Color.R),
			G: security.SafeUint8FromUint32(item.Color.G),
			B: security.SafeUint8FromUint32(item.Color.B),
		}, item.Cnt)
		// Two centroids can round to the same 8-bit colour.
		if seen[entry.Hex] {
			continue
		}
		seen[entry.Hex] = true
		entries = append(entries, entry)
		total += item.Cnt
	}

	return &Report{
		Algorithm: AlgorithmProminent,
		Total:     total,
		Colours:   entries,
	}, nil
}

// hasVisiblePixels reports whether any pixel reaches TransparencyCutoff.
func hasVisiblePixels(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA).A >= TransparencyCutoff {
				return true
			}
		}
	}
	return false
}
