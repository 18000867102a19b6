package view

import (
	"math"
	"sort"

	"github.com/five82/fractile/internal/tile"
)

// Viewport is the drawable area in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Empty reports whether nothing can be drawn.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Placement positions a tile on screen. X and Y are the pixel offsets of the
// tile's minimum corner and may be negative for partially visible tiles.
type Placement struct {
	Key tile.Key
	X   int
	Y   int
}

// Layout is everything derived from a State for one viewport size.
type Layout struct {
	PixelSize  float64
	MinX, MinY float64
	MaxX, MaxY float64
	Cols, Rows int
	Placements []Placement
}

// Visible computes the tiles covering vp for state s. Offsets are whole
// multiples of the tile size from a single rounded base, so the placements
// cover every pixel exactly once. Placements are ordered center-out.
func Visible(g tile.Grid, s State, vp Viewport) Layout {
	p := g.PixelSize(s.Zoom)
	w, h := float64(vp.Width), float64(vp.Height)
	l := Layout{
		PixelSize: p,
		MinX:      s.CenterX - w/2*p,
		MinY:      s.CenterY - h/2*p,
		MaxX:      s.CenterX + w/2*p,
		MaxY:      s.CenterY + h/2*p,
	}
	if vp.Empty() || g.TileSize <= 0 {
		return l
	}

	size := g.TileSize
	tw := g.TileWidth(s.Zoom)
	leftCol, baseX := firstTile(l.MinX, g.OriginX, tw, size)
	topRow, baseY := firstTile(l.MinY, g.OriginY, tw, size)

	l.Cols = (vp.Width - baseX + size - 1) / size
	l.Rows = (vp.Height - baseY + size - 1) / size
	l.Placements = make([]Placement, 0, l.Cols*l.Rows)
	for r := 0; r < l.Rows; r++ {
		for c := 0; c < l.Cols; c++ {
			l.Placements = append(l.Placements, Placement{
				Key: tile.Key{Level: s.Zoom, Row: topRow + int64(r), Col: leftCol + int64(c)},
				X:   baseX + c*size,
				Y:   baseY + r*size,
			})
		}
	}

	cx, cy := vp.Width/2, vp.Height/2
	half := size / 2
	dist := func(pl Placement) int {
		dx := pl.X + half - cx
		dy := pl.Y + half - cy
		return dx*dx + dy*dy
	}
	sort.SliceStable(l.Placements, func(i, j int) bool {
		return dist(l.Placements[i]) < dist(l.Placements[j])
	})
	return l
}

// firstTile returns the index of the tile containing lo and the screen
// offset of that tile's leading edge, which is always in (-size, 0].
func firstTile(lo, origin, tileWidth float64, size int) (int64, int) {
	pos := (lo - origin) / tileWidth
	idx := math.Floor(pos)
	offset := -int(math.Round((pos - idx) * float64(size)))
	if offset <= -size {
		idx++
		offset = 0
	}
	return int64(idx), offset
}

// ScreenToCoord maps a viewport pixel to plane coordinates.
func ScreenToCoord(g tile.Grid, s State, vp Viewport, sx, sy int) (float64, float64) {
	p := g.PixelSize(s.Zoom)
	return s.CenterX + (float64(sx)-float64(vp.Width)/2)*p,
		s.CenterY + (float64(sy)-float64(vp.Height)/2)*p
}
