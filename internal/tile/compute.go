package tile

import (
	"fmt"

	"github.com/five82/fractile/internal/kernel"
)

// Computer turns keys into tiles. It is immutable and safe for concurrent use.
type Computer struct {
	Grid          Grid
	Iterate       kernel.Func
	MaxIterations int
}

// Compute fills a tile for k. The border is computed first; when every
// border pixel stayed in the set the interior is filled without iterating,
// since the set has no holes for a closed ring of members to enclose.
func (c Computer) Compute(k Key) (*Tile, error) {
	if !c.Grid.InRange(k) {
		return nil, fmt.Errorf("compute %s: %w", k, ErrOutOfRange)
	}
	t := New(k, c.Grid.TileSize)
	x0, y0 := c.Grid.Origin(k)
	step := c.Grid.PixelSize(k.Level)
	n := t.Size
	maxIter := c.MaxIterations

	inside := 0
	border := 0
	set := func(i, j int) {
		v := c.Iterate(x0+float64(i)*step, y0+float64(j)*step, maxIter)
		t.Counts[j*n+i] = uint16(v)
		border++
		if v == maxIter {
			inside++
		}
	}
	for j := 0; j < n; j++ {
		set(0, j)
		if n > 1 {
			set(n-1, j)
		}
	}
	for i := 1; i < n-1; i++ {
		set(i, 0)
		set(i, n-1)
	}

	if inside == border {
		fill := uint16(maxIter)
		for i := range t.Counts {
			t.Counts[i] = fill
		}
		return t, nil
	}

	for j := 1; j < n-1; j++ {
		y := y0 + float64(j)*step
		row := t.Counts[j*n : (j+1)*n]
		for i := 1; i < n-1; i++ {
			row[i] = uint16(c.Iterate(x0+float64(i)*step, y, maxIter))
		}
	}
	return t, nil
}

// computeFull iterates every pixel with no shortcut. Tests use it to check
// that the border shortcut never changes output.
func (c Computer) computeFull(k Key) *Tile {
	t := New(k, c.Grid.TileSize)
	x0, y0 := c.Grid.Origin(k)
	step := c.Grid.PixelSize(k.Level)
	for j := 0; j < t.Size; j++ {
		for i := 0; i < t.Size; i++ {
			t.Counts[j*t.Size+i] = uint16(c.Iterate(x0+float64(i)*step, y0+float64(j)*step, c.MaxIterations))
		}
	}
	return t
}
