package colour

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB represents a colour in 8-bit RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the colour as an uppercase hex string (e.g., "#1A2B3C").
func (rgb RGB) Hex() string {
	return HexOf(rgb.R, rgb.G, rgb.B)
}

// HSL returns the colour in the format "hsl(h, s%, l%)".
func (rgb RGB) HSL() string {
	return FormatHSL(rgb)
}

// key packs the colour into a 24-bit integer.
func (rgb RGB) key() uint32 {
	return uint32(rgb.R)<<16 | uint32(rgb.G)<<8 | uint32(rgb.B)
}

// HexOf encodes the channels as "#RRGGBB" using uppercase hex digits.
func HexOf(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// ParseHex parses "#RRGGBB" or "RRGGBB" (either case) into an RGB value.
func ParseHex(s string) (RGB, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid hex colour %q: expected 6 hex digits", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// RGBToHSL converts RGB to HSL colour space.
// Returns hue (0-360), saturation (0-1), lightness (0-1).
func RGBToHSL(rgb RGB) (h, s, l float64) {
	r := float64(rgb.R) / 255.0
	g := float64(rgb.G) / 255.0
	b := float64(rgb.B) / 255.0

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))

	l = (maxVal + minVal) / 2.0

	if maxVal == minVal {
		return 0, 0, l
	}

	d := maxVal - minVal
	if l > 0.5 {
		s = d / (2.0 - maxVal - minVal)
	} else {
		s = d / (maxVal + minVal)
	}

	// Computed as a fraction of a turn so rounding matches other
	// renderings of the same formula.
	var turn float64
	switch maxVal {
	case r:
		offset := 0.0
		if g < b {
			offset = 6
		}
		turn = ((g-b)/d + offset) / 6
	case g:
		turn = ((b-r)/d + 2) / 6
	default:
		turn = ((r-g)/d + 4) / 6
	}

	return turn * 360, s, l
}

// FormatHSL renders the colour as "hsl(H, S%, L%)" with each component
// rounded half away from zero.
func FormatHSL(rgb RGB) string {
	h, s, l := RGBToHSL(rgb)
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)",
		int(math.Round(h)), int(math.Round(s*100)), int(math.Round(l*100)))
}
