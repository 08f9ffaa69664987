package colour

import (
	"cmp"
	"image"
	"image/color"
	"slices"
)

// TransparencyCutoff is the lowest alpha value a pixel needs to be counted.
const TransparencyCutoff = 128

// Sample is one exact colour observed during an extraction pass.
type Sample struct {
	RGB   RGB
	Count int
	// FirstSeen is the row-major index of the first pixel with this colour.
	FirstSeen int
}

// DominantExtractor ranks exact pixel colours by how often they occur.
// No quantisation is applied: colours one unit apart are counted separately,
// which suits flat-colour graphics better than photographs.
type DominantExtractor struct{}

// NewDominantExtractor creates a new DominantExtractor.
func NewDominantExtractor() *DominantExtractor {
	return &DominantExtractor{}
}

// ExtractDominant returns up to MaxColours entries for img.
func ExtractDominant(img image.Image) ([]Entry, error) {
	report, err := NewDominantExtractor().Extract(img, MaxColours)
	if err != nil {
		return nil, err
	}
	return report.Colours, nil
}

// Extract implements Extractor.
func (e *DominantExtractor) Extract(img image.Image, limit int) (*Report, error) {
	if err := checkBounds(img); err != nil {
		return nil, err
	}

	samples, total := e.sample(img)
	if len(samples) == 0 {
		return nil, ErrEmptyResult
	}

	slices.SortStableFunc(samples, func(a, b Sample) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.FirstSeen, b.FirstSeen)
	})

	n := min(clampLimit(limit), len(samples))
	entries := make([]Entry, n)
	for i := range n {
		entries[i] = NewEntry(samples[i].RGB, samples[i].Count)
	}

	return &Report{
		Algorithm: AlgorithmDominant,
		Total:     total,
		Colours:   entries,
	}, nil
}

// sample walks the image row by row and returns the samples in first-seen
// order along with the number of counted pixels.
func (e *DominantExtractor) sample(img image.Image) ([]Sample, int) {
	bounds := img.Bounds()
	index := make(map[uint32]int)
	var samples []Sample
	total := 0
	pos := 0

	add := func(c color.NRGBA) {
		at := pos
		pos++
		if c.A < TransparencyCutoff {
			return
		}
		total++
		rgb := RGB{R: c.R, G: c.G, B: c.B}
		k := rgb.key()
		if i, ok := index[k]; ok {
			samples[i].Count++
			return
		}
		index[k] = len(samples)
		samples = append(samples, Sample{RGB: rgb, Count: 1, FirstSeen: at})
	}

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			row := nrgba.Pix[nrgba.PixOffset(bounds.Min.X, y):]
			for x := 0; x < bounds.Dx(); x++ {
				p := row[x*4 : x*4+4 : x*4+4]
				add(color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]})
			}
		}
		return samples, total
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			add(color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA))
		}
	}
	return samples, total
}
