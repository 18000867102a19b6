// Package state provides thread-safe telemetry sharing for fractile.
//
// # Overview
//
// The render loop, the background sampler and the UI run on different
// goroutines. Instead of passing ad hoc flags between them, they share one
// typed Store:
//
//	Render loop:                  UI:
//	┌──────────────────┐          ┌──────────────────┐
//	│ engine.Frame()   │          │                  │
//	│      ↓           │          │                  │
//	│ RecordFrame()    │─────────→│ Snapshot()       │
//	│ RecordMiss()     │ (mutex)  │      ↓           │
//	└──────────────────┘          │ stats overlay    │
//	Sampler:                      │                  │
//	┌──────────────────┐          │                  │
//	│ Tick() every 1s  │─────────→│                  │
//	└──────────────────┘          └──────────────────┘
//
// # Core Types
//
// FrameStats:
//   - Figures for one frame: pool and cache sizes, history position,
//     zoom level, tiles delivered and discarded, drain time
//
// Snapshot:
//   - Latest FrameStats plus running totals
//   - Drain time statistics over a rolling window (last/avg/max)
//   - Delivered tiles per frame, oldest first, for plotting
//   - Hot tiles: keys missed most often over the sliding window
//
// # Hot Tiles
//
// Every cache miss is counted in a sliding top-k sketch
// (github.com/keilerkonzept/topk/sliding). Tick advances the window; the
// sampler calls it once per second, so the leaderboard covers roughly the
// last ten seconds. Keys that keep showing up are being evicted and
// recomputed, which means the cache is too small for how the user moves.
//
// # Concurrency Model
//
// Frame figures sit behind a sync.RWMutex; the sketch has its own mutex
// so a slow SortedSlice never blocks RecordFrame. Snapshot returns copies
// of every slice.
package state
