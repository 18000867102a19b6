package kernel

import (
	"math"
	"math/rand"
	"testing"
)

// referenceIterate is the textbook loop starting from z = 0. Its first pass
// lands on z = c with a count of one, which is where Iterate starts.
func referenceIterate(cx, cy float64, maxIter int) int {
	var x, y float64
	count := 0
	for x*x+y*y <= 4 && count < maxIter {
		x, y = x*x-y*y+cx, 2*x*y+cy
		count++
	}
	return count
}

func TestIterate_KnownPoints(t *testing.T) {
	const maxIter = 1000

	tests := []struct {
		name   string
		cx, cy float64
		want   int
	}{
		{"origin is in the set", 0, 0, maxIter},
		{"minus one is in the set", -1, 0, maxIter},
		{"far point escapes at once", 3, 3, 1},
		{"just outside radius", 2.0001, 0, 1},
		{"two stays bounded for one step", 2, 0, 2},
		{"i is in the set", 0, 1, maxIter},
		{"one escapes quickly", 1, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Iterate(tt.cx, tt.cy, maxIter); got != tt.want {
				t.Fatalf("Iterate(%v, %v) = %d, want %d", tt.cx, tt.cy, got, tt.want)
			}
		})
	}
}

func TestIterate_MatchesReferenceForEscapingPoints(t *testing.T) {
	const maxIter = 500
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		cx := rng.Float64()*6 - 3
		cy := rng.Float64()*6 - 3
		got := Iterate(cx, cy, maxIter)
		if got == maxIter {
			continue
		}
		want := referenceIterate(cx, cy, maxIter)
		if got != want {
			t.Fatalf("Iterate(%v, %v) = %d, reference = %d", cx, cy, got, want)
		}
	}
}

func TestIterateUnrolled_MatchesSimple(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, maxIter := range []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 17, 256, 1000} {
		for i := 0; i < 20000; i++ {
			cx := rng.Float64()*3.2 - 2.2
			cy := rng.Float64()*2.4 - 1.2
			if a, b := Iterate(cx, cy, maxIter), IterateUnrolled(cx, cy, maxIter); a != b {
				t.Fatalf("maxIter=%d (%v, %v): simple=%d unrolled=%d", maxIter, cx, cy, a, b)
			}
		}
	}
}

func TestIterateUnrolled_MatchesSimpleNearBoundary(t *testing.T) {
	const maxIter = 1000
	// Points straddling the cardioid and period-2 bulb boundaries, plus the
	// exact escape radius, exercise rollbacks at every batch offset.
	seeds := [][2]float64{
		{0.25, 0}, {-0.75, 0.1}, {-1.25, 0.25}, {-2, 0}, {2, 0}, {0, 2}, {0, -2},
		{-0.7436447860, 0.1318252536}, {0.2820, 0.0100}, {-1.7497, 0},
	}
	for _, s := range seeds {
		for i := -200; i <= 200; i++ {
			d := float64(i) * 1e-4
			for _, p := range [][2]float64{{s[0] + d, s[1]}, {s[0], s[1] + d}, {s[0] + d, s[1] - d}} {
				a := Iterate(p[0], p[1], maxIter)
				b := IterateUnrolled(p[0], p[1], maxIter)
				if a != b {
					t.Fatalf("(%v, %v): simple=%d unrolled=%d", p[0], p[1], a, b)
				}
			}
		}
	}
	for _, v := range []float64{math.Nextafter(2, 3), math.Nextafter(2, 1), math.SmallestNonzeroFloat64, -math.MaxFloat64} {
		if a, b := Iterate(v, 0, maxIter), IterateUnrolled(v, 0, maxIter); a != b {
			t.Fatalf("(%v, 0): simple=%d unrolled=%d", v, a, b)
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"simple", " Unrolled ", ""} {
		if _, err := ByName(name); err != nil {
			t.Fatalf("ByName(%q) returned error: %v", name, err)
		}
	}
	if _, err := ByName("avx512"); err == nil {
		t.Fatalf("ByName(avx512) returned nil error, want error")
	}
}

func BenchmarkIterate(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Iterate(-0.75, 0.1, 1000)
	}
}

func BenchmarkIterateUnrolled(b *testing.B) {
	for i := 0; i < b.N; i++ {
		IterateUnrolled(-0.75, 0.1, 1000)
	}
}
