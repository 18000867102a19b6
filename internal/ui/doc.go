// Package ui provides the terminal front end for fractile.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model owns no fractal state of its own: it
// turns key presses and mouse events into engine commands, runs one engine
// Frame per tick and composes the returned tile blits into a framebuffer.
//
// # Drawing
//
// Each terminal cell shows two vertical pixels using the upper half block:
// the foreground color is the upper pixel and the background color the lower
// one. Adjacent cells with the same pair of colors are merged into a single
// styled run. Pixels whose tile has not arrived yet show the theme's Pending
// color.
//
// # Package Structure
//
//   - app.go: Model, Update loop and Run
//   - framebuffer.go: pixel buffer, blitting and half block rendering
//   - header.go: status bar and key hint footer
//   - help.go, stats.go, logs.go: overlays
//   - keys.go: key bindings
//   - theme.go, style_helpers.go: colors and background-safe styling
//
// # Overlays
//
// Three overlays replace the fractal body while open:
//
//   - Help (?): key bindings
//   - Stats (s): pool and cache figures, a braille plot of tiles delivered
//     per frame, and the most recomputed tiles
//   - Logs (L): the tail of the log file; tab switches between all lines and
//     WARN/ERROR only
//
// Mouse input only reaches the engine when no overlay is open.
package ui
