package colour

import "testing"

func TestHexOf(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    string
	}{
		{name: "red", r: 255, want: "#FF0000"},
		{name: "black", want: "#000000"},
		{name: "mixed", r: 0x1a, g: 0x2b, b: 0x3c, want: "#1A2B3C"},
		{name: "single digit channels", r: 1, g: 2, b: 15, want: "#01020F"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HexOf(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("HexOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHexRoundTripAllChannels(t *testing.T) {
	for v := 0; v < 256; v++ {
		for _, rgb := range []RGB{
			{R: uint8(v)},
			{G: uint8(v)},
			{B: uint8(v)},
			{R: uint8(v), G: uint8(255 - v), B: uint8(v / 2)},
		} {
			got, err := ParseHex(rgb.Hex())
			if err != nil {
				t.Fatalf("ParseHex(%s) error = %v", rgb.Hex(), err)
			}
			if got != rgb {
				t.Fatalf("ParseHex(%s) = %+v, want %+v", rgb.Hex(), got, rgb)
			}
		}
	}
}

func TestParseHexInvalid(t *testing.T) {
	for _, in := range []string{"", "#", "#FFF", "#GG0000", "#12345678", "zzzzzz"} {
		if _, err := ParseHex(in); err == nil {
			t.Errorf("ParseHex(%q) expected error", in)
		}
	}
}

func TestParseHexLowercase(t *testing.T) {
	got, err := ParseHex("a0b1c2")
	if err != nil {
		t.Fatalf("ParseHex() error = %v", err)
	}
	if want := (RGB{R: 0xa0, G: 0xb1, B: 0xc2}); got != want {
		t.Errorf("ParseHex() = %+v, want %+v", got, want)
	}
}

func TestFormatHSL(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want string
	}{
		{name: "white", rgb: RGB{R: 255, G: 255, B: 255}, want: "hsl(0, 0%, 100%)"},
		{name: "black", rgb: RGB{}, want: "hsl(0, 0%, 0%)"},
		{name: "red", rgb: RGB{R: 255}, want: "hsl(0, 100%, 50%)"},
		{name: "green", rgb: RGB{G: 255}, want: "hsl(120, 100%, 50%)"},
		{name: "blue", rgb: RGB{B: 255}, want: "hsl(240, 100%, 50%)"},
		{name: "magenta", rgb: RGB{R: 255, B: 255}, want: "hsl(300, 100%, 50%)"},
		{name: "grey", rgb: RGB{R: 128, G: 128, B: 128}, want: "hsl(0, 0%, 50%)"},
		{name: "orange", rgb: RGB{R: 255, G: 128}, want: "hsl(30, 100%, 50%)"},
		{name: "dark slate", rgb: RGB{R: 0x1a, G: 0x2b, B: 0x3c}, want: "hsl(210, 40%, 17%)"},
		// Hue 359.76 rounds up to 360 rather than wrapping to 0.
		{name: "red just short of a full turn", rgb: RGB{R: 255, B: 1}, want: "hsl(360, 100%, 50%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatHSL(tt.rgb); got != tt.want {
				t.Errorf("FormatHSL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRGBString(t *testing.T) {
	if got := (RGB{R: 12, G: 0, B: 255}).String(); got != "rgb(12, 0, 255)" {
		t.Errorf("String() = %s", got)
	}
}

