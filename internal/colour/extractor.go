// Package colour provides dominant colour extraction and colour formatting.
package colour

import (
	"fmt"
	"image"
	"slices"
)

// MaxColours is the largest number of entries a report may hold.
const MaxColours = 10

// Extractor defines the interface for colour extraction algorithms.
type Extractor interface {
	// Extract builds a report of at most limit colours from an image.
	// A limit <= 0 or above MaxColours is treated as MaxColours.
	Extract(img image.Image, limit int) (*Report, error)
}

// Algorithm represents the colour extraction algorithm type.
type Algorithm string

const (
	// AlgorithmDominant counts exact pixel colours and ranks them by frequency.
	AlgorithmDominant Algorithm = "dominant"

	// AlgorithmProminent clusters pixels with k-means and ranks the clusters by size.
	AlgorithmProminent Algorithm = "prominent"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmDominant,
		AlgorithmProminent,
	}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	return slices.Contains(ValidAlgorithms(), alg)
}

// NewExtractor creates a new Extractor based on the specified algorithm.
func NewExtractor(alg Algorithm) (Extractor, error) {
	switch alg {
	case AlgorithmDominant:
		return NewDominantExtractor(), nil
	case AlgorithmProminent:
		return NewProminentExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

// ExtractorConfig holds configuration for colour extraction.
type ExtractorConfig struct {
	Algorithm   Algorithm
	ColourCount int
}

// DefaultExtractorConfig returns the default extractor configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Algorithm:   AlgorithmDominant,
		ColourCount: MaxColours,
	}
}

// Validate validates the extractor configuration.
func (c ExtractorConfig) Validate() error {
	if !IsValidAlgorithm(c.Algorithm) {
		return fmt.Errorf("invalid algorithm: %s", c.Algorithm)
	}
	if c.ColourCount < 1 {
		return fmt.Errorf("colour count must be at least 1, got %d", c.ColourCount)
	}
	if c.ColourCount > MaxColours {
		return fmt.Errorf("colour count too large: %d (maximum: %d)", c.ColourCount, MaxColours)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxColours {
		return MaxColours
	}
	return limit
}

func checkBounds(img image.Image) error {
	if img == nil {
		return ErrInvalidImage
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidImage, b.Dx(), b.Dy())
	}
	return nil
}
