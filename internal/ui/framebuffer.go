package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fractile/internal/engine"
	"github.com/five82/fractile/internal/kernel"
)

// halfBlock shows the upper pixel in the foreground color and the lower
// pixel in the background color, so one cell holds two vertical pixels.
const halfBlock = "▀"

// framebuffer is an RGB image the size of the drawable viewport.
type framebuffer struct {
	width, height int
	pix           []kernel.RGB
}

func newFramebuffer(width, height int) *framebuffer {
	width, height = max(width, 0), max(height, 0)
	return &framebuffer{width: width, height: height, pix: make([]kernel.RGB, width*height)}
}

func (fb *framebuffer) clear(c kernel.RGB) {
	for i := range fb.pix {
		fb.pix[i] = c
	}
}

func (fb *framebuffer) at(x, y int) kernel.RGB {
	return fb.pix[y*fb.width+x]
}

// blit copies a tile into the framebuffer, clipping at the edges.
func (fb *framebuffer) blit(b engine.Blit) {
	x0, y0 := max(b.X, 0), max(b.Y, 0)
	x1, y1 := min(b.X+b.Size, fb.width), min(b.Y+b.Size, fb.height)
	for y := y0; y < y1; y++ {
		src := ((y-b.Y)*b.Size + (x0 - b.X)) * 3
		dst := y*fb.width + x0
		for x := x0; x < x1; x++ {
			fb.pix[dst] = kernel.RGB{R: b.Pixels[src], G: b.Pixels[src+1], B: b.Pixels[src+2]}
			src += 3
			dst++
		}
	}
}

// compose redraws the framebuffer from a frame. Pixels with no ready tile
// show bg.
func (fb *framebuffer) compose(f engine.Frame, bg kernel.RGB) {
	fb.clear(bg)
	for _, b := range f.Blits {
		fb.blit(b)
	}
}

// cellRun is a horizontal run of cells sharing both colors.
type cellRun struct {
	fg, bg kernel.RGB
	n      int
}

// rowRuns merges the cells of text row r into runs.
func (fb *framebuffer) rowRuns(r int) []cellRun {
	top := 2 * r
	bottom := top + 1
	var runs []cellRun
	for x := 0; x < fb.width; x++ {
		fg := fb.at(x, top)
		bg := fg
		if bottom < fb.height {
			bg = fb.at(x, bottom)
		}
		if n := len(runs); n > 0 && runs[n-1].fg == fg && runs[n-1].bg == bg {
			runs[n-1].n++
			continue
		}
		runs = append(runs, cellRun{fg: fg, bg: bg, n: 1})
	}
	return runs
}

// render draws the framebuffer as rows of half blocks.
func (fb *framebuffer) render() string {
	rows := (fb.height + 1) / 2
	var b strings.Builder
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		for _, run := range fb.rowRuns(r) {
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(run.fg))).
				Background(lipgloss.Color(hex(run.bg)))
			b.WriteString(style.Render(strings.Repeat(halfBlock, run.n)))
		}
	}
	return b.String()
}

func hex(c kernel.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// parseHex reads a #rrggbb theme color. Malformed input yields black.
func parseHex(s string) kernel.RGB {
	var c kernel.RGB
	if _, err := fmt.Sscanf(strings.TrimPrefix(s, "#"), "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return kernel.Black
	}
	return c
}
