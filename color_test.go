package corkboard

import "testing"

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#ffffff", Color{1, 1, 1, 1}, true},
		{"000000", Color{0, 0, 0, 1}, true},
		{"#f00", Color{1, 0, 0, 1}, true},
		{" #00FF00 ", Color{0, 1, 0, 1}, true},
		{"yellow", Color{}, false},
		{"#12345", Color{}, false},
		{"#gggggg", Color{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseColor(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCardColorFallsBack(t *testing.T) {
	want := Color{1, 248.0 / 255, 176.0 / 255, 1}
	got := CardColor(Card{Color: "not a colour"})
	if !approxEqual(got.R, want.R, epsilon) || !approxEqual(got.G, want.G, epsilon) || !approxEqual(got.B, want.B, epsilon) {
		t.Errorf("CardColor fallback = %v, want %v", got, want)
	}
}

func TestColorNRGBA(t *testing.T) {
	c := Color{R: 1, G: 0.5, B: -1, A: 2}.NRGBA()
	if c.R != 255 || c.G != 128 || c.B != 0 || c.A != 255 {
		t.Errorf("NRGBA = %v", c)
	}
	d := Color{R: 1, G: 1, B: 1, A: 1}.Darken(0.5).NRGBA()
	if d.R != 128 || d.A != 255 {
		t.Errorf("Darken(0.5) = %v", d)
	}
}
