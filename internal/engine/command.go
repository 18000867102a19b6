package engine

import (
	"log/slog"

	"github.com/five82/fractile/internal/view"
)

// Command is a navigation intent. Commands are plain values so the UI can
// queue, log and compare them; Dispatch is the only place they act.
type Command interface {
	command()
}

// SetCenter moves the view center to plane coordinates.
type SetCenter struct{ X, Y float64 }

// ZoomBy changes the zoom level. Positive values zoom in.
type ZoomBy struct{ Levels int }

// ZoomAt zooms about a viewport pixel, keeping the plane point under it
// fixed on screen.
type ZoomAt struct {
	X, Y   int
	Levels int
}

// PanBy moves the center by a number of tile widths at the current level.
type PanBy struct{ DX, DY float64 }

// SelectPalette switches to the palette at Index.
type SelectPalette struct{ Index int }

// CyclePalette moves Delta palettes forward, wrapping around.
type CyclePalette struct{ Delta int }

// GoBack returns to the previous view.
type GoBack struct{}

// Home returns to the starting center and zoom, keeping the palette.
type Home struct{}

// Resize changes the viewport size in pixels.
type Resize struct{ Width, Height int }

func (SetCenter) command()     {}
func (ZoomBy) command()        {}
func (ZoomAt) command()        {}
func (PanBy) command()         {}
func (SelectPalette) command() {}
func (CyclePalette) command()  {}
func (GoBack) command()        {}
func (Home) command()          {}
func (Resize) command()        {}

// Dispatch applies cmd and reports whether the view changed. Navigation
// commands push onto history; GoBack moves the cursor back; Resize only
// changes the viewport.
func (e *Engine) Dispatch(cmd Command) bool {
	cur := e.history.Current()
	switch c := cmd.(type) {
	case SetCenter:
		if c.X == cur.CenterX && c.Y == cur.CenterY {
			return false
		}
		e.push(view.WithCenter(c.X, c.Y))

	case ZoomBy:
		if !e.zoomAllowed(cur, c.Levels) {
			return false
		}
		e.push(view.WithZoom(cur.Zoom + c.Levels))

	case ZoomAt:
		if !e.zoomAllowed(cur, c.Levels) {
			return false
		}
		px, py := view.ScreenToCoord(e.grid, cur, e.vp, c.X, c.Y)
		level := min(max(cur.Zoom+c.Levels, 0), e.history.MaxLevel())
		ps := e.grid.PixelSize(level)
		cx := px - (float64(c.X)-float64(e.vp.Width)/2)*ps
		cy := py - (float64(c.Y)-float64(e.vp.Height)/2)*ps
		e.push(view.WithZoom(level), view.WithCenter(cx, cy))

	case PanBy:
		if c.DX == 0 && c.DY == 0 {
			return false
		}
		w := e.grid.TileWidth(cur.Zoom)
		e.push(view.WithCenter(cur.CenterX+c.DX*w, cur.CenterY+c.DY*w))

	case SelectPalette:
		if c.Index < 0 || c.Index >= len(e.palettes) || c.Index == cur.Palette {
			return false
		}
		e.push(view.WithPalette(c.Index))

	case CyclePalette:
		n := len(e.palettes)
		next := ((cur.Palette+c.Delta)%n + n) % n
		if next == cur.Palette {
			return false
		}
		e.push(view.WithPalette(next))

	case GoBack:
		if !e.history.Back() {
			return false
		}
		slog.Debug("view back", "cursor", e.history.Cursor())

	case Home:
		if cur.CenterX == e.home.CenterX && cur.CenterY == e.home.CenterY && cur.Zoom == e.home.Zoom {
			return false
		}
		e.push(view.WithCenter(e.home.CenterX, e.home.CenterY), view.WithZoom(e.home.Zoom))

	case Resize:
		vp := view.Viewport{Width: max(c.Width, 0), Height: max(c.Height, 0)}
		if vp == e.vp {
			return false
		}
		e.vp = vp

	default:
		slog.Warn("unknown command", "command", cmd)
		return false
	}
	return true
}

func (e *Engine) zoomAllowed(cur view.State, levels int) bool {
	switch {
	case levels > 0:
		return !e.history.MaxZoomed()
	case levels < 0:
		return cur.Zoom > 0
	default:
		return false
	}
}

func (e *Engine) push(opts ...view.Override) {
	next, clamped := e.history.Push(opts...)
	if clamped {
		slog.Info("zoom clamped at precision floor", "level", next.Zoom, "pixel_size", e.grid.PixelSize(next.Zoom))
	}
	slog.Debug("view push",
		"cursor", e.history.Cursor(),
		"center_x", next.CenterX,
		"center_y", next.CenterY,
		"zoom", next.Zoom,
		"palette", next.Palette,
	)
}
