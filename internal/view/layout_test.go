package view

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/fractile/internal/tile"
)

func testGrid() tile.Grid {
	return tile.Grid{
		TileSize:   32,
		OriginX:    -4,
		OriginY:    -4,
		Extent:     8,
		BasePixel:  3.2 / 800,
		ZoomFactor: 0.9,
	}
}

func assertCoversOnce(t *testing.T, l Layout, vp Viewport, size int) {
	t.Helper()
	hits := make([]int, vp.Width*vp.Height)
	for _, p := range l.Placements {
		for y := p.Y; y < p.Y+size; y++ {
			if y < 0 || y >= vp.Height {
				continue
			}
			for x := p.X; x < p.X+size; x++ {
				if x < 0 || x >= vp.Width {
					continue
				}
				hits[y*vp.Width+x]++
			}
		}
	}
	for i, n := range hits {
		if n != 1 {
			t.Fatalf("pixel (%d, %d) covered %d times, want 1", i%vp.Width, i/vp.Width, n)
		}
	}
}

func TestVisible_Scenario800x496(t *testing.T) {
	g := testGrid()
	vp := Viewport{Width: 800, Height: 496}
	s := State{CenterX: -0.75, CenterY: 0, Zoom: 0}

	l := Visible(g, s, vp)
	assertCoversOnce(t, l, vp, g.TileSize)

	for _, p := range l.Placements {
		if p.X <= -g.TileSize || p.X >= vp.Width || p.Y <= -g.TileSize || p.Y >= vp.Height {
			t.Fatalf("placement %+v lies entirely off screen", p)
		}
		if p.Key.Level != 0 {
			t.Fatalf("placement %+v has level %d, want 0", p, p.Key.Level)
		}
	}
	if len(l.Placements) != l.Cols*l.Rows {
		t.Fatalf("placements = %d, want %d x %d", len(l.Placements), l.Cols, l.Rows)
	}

	again := Visible(g, s, vp)
	if diff := cmp.Diff(l, again); diff != "" {
		t.Fatalf("Visible is not deterministic (-first +second):\n%s", diff)
	}
}

func TestVisible_CoversAtManyCenters(t *testing.T) {
	g := testGrid()
	vp := Viewport{Width: 123, Height: 77}
	for i := 0; i < 50; i++ {
		s := State{
			CenterX: -2 + float64(i)*0.0371,
			CenterY: -1 + float64(i)*0.0213,
			Zoom:    i % 40,
		}
		assertCoversOnce(t, Visible(g, s, vp), vp, g.TileSize)
	}
}

func TestVisible_CenterFirst(t *testing.T) {
	g := testGrid()
	vp := Viewport{Width: 320, Height: 320}
	l := Visible(g, State{}, vp)
	first := l.Placements[0]
	if first.X > vp.Width/2 || first.X+g.TileSize < vp.Width/2 || first.Y > vp.Height/2 || first.Y+g.TileSize < vp.Height/2 {
		t.Fatalf("first placement %+v does not contain the viewport center", first)
	}
}

func TestVisible_KeysMatchCoordinates(t *testing.T) {
	g := testGrid()
	vp := Viewport{Width: 200, Height: 100}
	s := State{CenterX: 0.3, CenterY: -0.4, Zoom: 12}
	l := Visible(g, s, vp)
	for _, p := range l.Placements {
		ox, oy := g.Origin(p.Key)
		sx, sy := ScreenToCoord(g, s, vp, p.X, p.Y)
		if math.Abs(ox-sx) > l.PixelSize || math.Abs(oy-sy) > l.PixelSize {
			t.Fatalf("tile %s origin (%v, %v) drawn at (%v, %v)", p.Key, ox, oy, sx, sy)
		}
	}
}

func TestVisible_EmptyViewport(t *testing.T) {
	l := Visible(testGrid(), State{}, Viewport{Width: 0, Height: 40})
	if len(l.Placements) != 0 {
		t.Fatalf("placements = %d, want none for an empty viewport", len(l.Placements))
	}
}
