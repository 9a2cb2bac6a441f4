package render

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette assigns a color to member i of n.
type Palette func(i, n int) color.Color

// Greens sweeps hue from 150° to 240°, green through blue.
func Greens(i, n int) color.Color {
	return hue(150 + 90*frac(i, n))
}

// Rainbow sweeps the full hue circle.
func Rainbow(i, n int) color.Color {
	return hue(360 * frac(i, n))
}

func frac(i, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(i) / float64(n)
}

func hue(h float64) color.Color {
	c := colorful.Hsv(h, 1, 1).Clamped()
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// PaletteByName returns a named palette, falling back to Greens.
func PaletteByName(name string) Palette {
	if name == "rainbow" {
		return Rainbow
	}
	return Greens
}

// ParseColor reads a "#rrggbb" colour. An empty string yields nil, which
// draws in the scene foreground.
func ParseColor(s string) (color.Color, error) {
	if s == "" {
		return nil, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
