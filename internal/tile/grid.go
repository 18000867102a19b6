// Package tile addresses square blocks of the complex plane by zoom level,
// row and column, and computes their iteration counts.
package tile

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange reports a key whose tile lies outside the addressable plane.
var ErrOutOfRange = errors.New("tile key out of range")

// Key identifies a tile. It is purely spatial at a given zoom level and does
// not depend on viewport size or navigation history.
type Key struct {
	Level int
	Row   int64
	Col   int64
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Level, k.Row, k.Col)
}

// Grid describes how zoom levels, rows and columns map onto the plane.
type Grid struct {
	TileSize   int     // pixels per tile edge
	OriginX    float64 // minimum corner shared by every level
	OriginY    float64
	Extent     float64 // edge length of the addressable square
	BasePixel  float64 // coordinate width of one pixel at level 0
	ZoomFactor float64 // per-level scale, 0 < ZoomFactor < 1
}

// PixelSize returns the coordinate width of one pixel at level.
func (g Grid) PixelSize(level int) float64 {
	return g.BasePixel * math.Pow(g.ZoomFactor, float64(level))
}

// TileWidth returns the coordinate width of one tile at level.
func (g Grid) TileWidth(level int) float64 {
	return g.PixelSize(level) * float64(g.TileSize)
}

// Origin returns the minimum corner of the tile.
func (g Grid) Origin(k Key) (x, y float64) {
	w := g.TileWidth(k.Level)
	return g.OriginX + float64(k.Col)*w, g.OriginY + float64(k.Row)*w
}

// KeyAt returns the key of the tile containing (x, y) at level.
func (g Grid) KeyAt(level int, x, y float64) Key {
	w := g.TileWidth(level)
	return Key{
		Level: level,
		Row:   int64(math.Floor((y - g.OriginY) / w)),
		Col:   int64(math.Floor((x - g.OriginX) / w)),
	}
}

// InRange reports whether the tile's origin lies inside the addressable
// square [Origin, Origin+Extent) on both axes.
func (g Grid) InRange(k Key) bool {
	if k.Level < 0 || k.Row < 0 || k.Col < 0 {
		return false
	}
	x, y := g.Origin(k)
	return x < g.OriginX+g.Extent && y < g.OriginY+g.Extent
}

// MaxLevel returns the highest level whose pixel size is still at least
// floor. Deeper levels would step below the usable float64 precision.
func (g Grid) MaxLevel(floor float64) int {
	if floor <= 0 || g.BasePixel <= floor {
		return 0
	}
	level := int(math.Floor(math.Log(floor/g.BasePixel) / math.Log(g.ZoomFactor)))
	// Correct for rounding in the logarithms.
	for level > 0 && g.PixelSize(level) < floor {
		level--
	}
	for g.PixelSize(level+1) >= floor {
		level++
	}
	return level
}
