package kernel

import (
	"fmt"
	"strings"
)

// RGB is a 24-bit color.
type RGB struct {
	R, G, B uint8
}

// Black is used for points that never escaped.
var Black = RGB{}

// Palette is a named, ordered list of colors indexed by iteration count.
type Palette struct {
	Name   string
	Colors []RGB
}

// Len returns the number of colors in the palette.
func (p Palette) Len() int { return len(p.Colors) }

// Colorize maps an iteration count to a color. Counts equal to maxIter are
// inside the set and render black; everything else wraps around the palette.
func Colorize(count, maxIter int, p Palette) RGB {
	if count == maxIter || len(p.Colors) == 0 {
		return Black
	}
	if count < 0 {
		count = -count
	}
	return p.Colors[count%len(p.Colors)]
}

// Palette names.
const (
	PaletteRainbow   = "rainbow"
	PaletteClassic   = "classic"
	PaletteFire      = "fire"
	PaletteOcean     = "ocean"
	PaletteGrayscale = "grayscale"
)

var paletteOrder = []string{PaletteRainbow, PaletteClassic, PaletteFire, PaletteOcean, PaletteGrayscale}

// Palettes returns the built-in palettes in display order. The classic
// palette depends on maxIter because it runs its gradient backwards from the
// iteration cap.
func Palettes(maxIter int) []Palette {
	return []Palette{
		{Name: PaletteRainbow, Colors: colorWheel()},
		{Name: PaletteClassic, Colors: classic(maxIter)},
		{Name: PaletteFire, Colors: gradient(64, RGB{32, 0, 0}, RGB{255, 96, 0}, RGB{255, 255, 160})},
		{Name: PaletteOcean, Colors: gradient(64, RGB{0, 8, 48}, RGB{0, 128, 192}, RGB{224, 255, 255})},
		{Name: PaletteGrayscale, Colors: gradient(32, RGB{40, 40, 40}, RGB{255, 255, 255})},
	}
}

// PaletteNames returns the built-in palette names in display order.
func PaletteNames() []string {
	out := make([]string, len(paletteOrder))
	copy(out, paletteOrder)
	return out
}

// PaletteIndex resolves a palette name to its position in Palettes.
func PaletteIndex(name string) (int, error) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	for i, n := range paletteOrder {
		if n == trimmed {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown palette %q (have %s)", name, strings.Join(PaletteNames(), ", "))
}

// colorWheel walks the hue circle in 255 steps per sextant:
// red, yellow, green, cyan, blue, magenta and back to red.
func colorWheel() []RGB {
	out := make([]RGB, 0, 255*6)
	for i := 0; i < 255; i++ {
		out = append(out, RGB{255, uint8(i), 0})
	}
	for i := 0; i < 255; i++ {
		out = append(out, RGB{uint8(255 - i), 255, 0})
	}
	for i := 0; i < 255; i++ {
		out = append(out, RGB{0, 255, uint8(i)})
	}
	for i := 0; i < 255; i++ {
		out = append(out, RGB{0, uint8(255 - i), 255})
	}
	for i := 0; i < 255; i++ {
		out = append(out, RGB{uint8(i), 0, 255})
	}
	for i := 0; i < 255; i++ {
		out = append(out, RGB{255, 0, uint8(255 - i)})
	}
	return out
}

func classic(maxIter int) []RGB {
	if maxIter < 1 {
		maxIter = 1
	}
	out := make([]RGB, maxIter)
	for i := range out {
		x := maxIter - i
		out[i] = RGB{uint8(x % 256), uint8((x % 128) * 2), uint8((x % 64) * 4)}
	}
	return out
}

// gradient interpolates linearly through stops and back again so the palette
// wraps without a visible seam.
func gradient(steps int, stops ...RGB) []RGB {
	if len(stops) < 2 || steps < 1 {
		return append([]RGB(nil), stops...)
	}
	forward := make([]RGB, 0, steps*(len(stops)-1))
	for s := 0; s < len(stops)-1; s++ {
		a, b := stops[s], stops[s+1]
		for i := 0; i < steps; i++ {
			t := float64(i) / float64(steps)
			forward = append(forward, RGB{lerp(a.R, b.R, t), lerp(a.G, b.G, t), lerp(a.B, b.B, t)})
		}
	}
	out := make([]RGB, 0, 2*len(forward))
	out = append(out, forward...)
	for i := len(forward) - 1; i > 0; i-- {
		out = append(out, forward[i])
	}
	return out
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
