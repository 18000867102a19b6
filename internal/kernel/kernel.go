// Package kernel implements the escape-time iteration for the Mandelbrot set
// and the palettes used to turn iteration counts into colors.
package kernel

import (
	"fmt"
	"strings"
)

// EscapeRadiusSq is the squared escape radius. A point escapes once
// x²+y² exceeds it.
const EscapeRadiusSq = 4.0

// Func computes the iteration count for the point (cx, cy), capped at maxIter.
type Func func(cx, cy float64, maxIter int) int

// Kernel names accepted by ByName.
const (
	NameSimple   = "simple"
	NameUnrolled = "unrolled"
)

// ByName resolves a kernel by its configuration name.
func ByName(name string) (Func, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameSimple:
		return Iterate, nil
	case NameUnrolled, "":
		return IterateUnrolled, nil
	default:
		return nil, fmt.Errorf("unknown kernel %q", name)
	}
}

// step advances z ← z² + c once. Both kernels go through it so the compiler
// emits the same floating point operations for each iteration.
func step(x, y, cx, cy float64) (float64, float64) {
	return x*x - y*y + cx, 2.0*x*y + cy
}

// Iterate returns the number of iterations before |z|² > 4, starting from
// z = c with a count of one. It returns maxIter exactly when the point did not
// escape and is presumed to be in the set.
func Iterate(cx, cy float64, maxIter int) int {
	x, y := cx, cy
	count := 1
	for x*x+y*y <= EscapeRadiusSq && count < maxIter {
		x, y = step(x, y, cx, cy)
		count++
	}
	return count
}

// IterateUnrolled returns the same count as Iterate for every input. It runs
// four iterations per bounds check and, when a batch overshoots the escape
// radius, rewinds to the checkpoint taken before that batch and finishes one
// step at a time.
func IterateUnrolled(cx, cy float64, maxIter int) int {
	x, y := cx, cy
	saveX, saveY := cx, cy
	count := 1

	for x*x+y*y <= EscapeRadiusSq && count < maxIter-4 {
		saveX, saveY = x, y
		x, y = step(x, y, cx, cy)
		x, y = step(x, y, cx, cy)
		x, y = step(x, y, cx, cy)
		x, y = step(x, y, cx, cy)
		count += 4
	}

	if x*x+y*y > EscapeRadiusSq && count > 4 {
		x, y = saveX, saveY
		count -= 4
	}

	for x*x+y*y <= EscapeRadiusSq && count < maxIter {
		x, y = step(x, y, cx, cy)
		count++
	}
	return count
}
