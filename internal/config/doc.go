// Package config loads fractile's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/fractile/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty/zero, use defaults
//
// Fields where zero is a meaningful value (origin and start center) are
// decoded through pointers so an explicit 0.0 is kept.
//
// # TOML Format
//
//	metrics_addr = ""
//
//	[render]
//	tile_size = 32
//	max_iterations = 1000
//	kernel = "unrolled"        # or "simple"
//	zoom_factor = 0.9
//	base_width = 3.2           # plane width of reference_width pixels at level 0
//	reference_width = 800
//	precision_floor = 1.6e-11
//	origin_x = -4.0
//	origin_y = -4.0
//	extent = 8.0
//
//	[pool]
//	workers = 0                # 0 = min(16, NumCPU)
//	queue_depth = 4096
//	reservation_timeout = "10s"
//
//	[frame]
//	interval = "33ms"
//	drain_budget = "33ms"
//	cache_multiplier = 4
//
//	[start]
//	center_x = -0.75
//	center_y = 0.0
//	zoom = 0
//	palette = "rainbow"
//
//	[log]
//	file = "~/.local/state/fractile/fractile.log"
//	level = "info"
//
// Durations use time.ParseDuration syntax. Tilde expansion is performed for
// the config path and log.file.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors and malformed durations ("parse config: ...")
//   - Values rejected by Validate
//
// Missing config files are NOT an error. fractile works out of the box.
package config
