// Package app provides the orchestration layer for fractile.
//
// # Overview
//
// This package wires together configuration, logging, metrics, the render
// engine and the UI. It is the composition root where all dependencies are
// initialized and connected.
//
// # Startup
//
//  1. Load ~/.config/fractile/config.toml, applying command line overrides
//  2. Point log/slog at the log file; the terminal belongs to the UI
//  3. Load prefs for the theme and last palette
//  4. Build the Prometheus registry, the state.Store and the engine
//  5. Start the worker pool and the hot-tile sampler
//  6. Optionally serve /metrics
//  7. Start the TUI and block until the user exits or the context cancels
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()      Read config
//	       ├─────> engine.New()       Grid, history, cache, pool
//	       ├─────> StartSampler()     Advance hot-tile window
//	       ├─────> metrics.Serve()    Optional /metrics endpoint
//	       └─────> ui.Run()           Start TUI (blocks)
//
// Each UI tick runs engine.Frame, which publishes its figures to the store
// and the Prometheus pipeline. The sampler only moves the hot-tile window
// forward, once per second.
//
// # Error Handling
//
// Configuration and engine setup errors are returned from Run. Worker
// failures, metrics server errors and prefs write failures are logged and
// the program keeps running.
package app
