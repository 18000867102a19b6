package tile

import "github.com/five82/fractile/internal/kernel"

// Tile holds the raw iteration counts for one key, row-major.
//
// Counts are kept instead of colors so a palette switch only recolors; the
// colored buffer is memoized per palette index. RGB is meant for the render
// thread and is not safe for concurrent use.
type Tile struct {
	Key    Key
	Size   int
	Counts []uint16

	rgb        []byte
	rgbPalette int
}

// New allocates an empty tile.
func New(k Key, size int) *Tile {
	return &Tile{Key: k, Size: size, Counts: make([]uint16, size*size), rgbPalette: -1}
}

// RGB returns a Size×Size×3 row-major buffer colored with palette. The buffer
// is reused until a different palette index is requested.
func (t *Tile) RGB(paletteIdx int, p kernel.Palette, maxIter int) []byte {
	if t.rgb != nil && t.rgbPalette == paletteIdx {
		return t.rgb
	}
	if t.rgb == nil {
		t.rgb = make([]byte, len(t.Counts)*3)
	}
	for i, c := range t.Counts {
		col := kernel.Colorize(int(c), maxIter, p)
		t.rgb[i*3] = col.R
		t.rgb[i*3+1] = col.G
		t.rgb[i*3+2] = col.B
	}
	t.rgbPalette = paletteIdx
	return t.rgb
}
