package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.Log.File != wantLog {
		t.Fatalf("Log.File = %q, want %q", cfg.Log.File, wantLog)
	}
	if cfg.Render.TileSize != 32 || cfg.Render.MaxIterations != 1000 || cfg.Frame.Interval != 33*time.Millisecond {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
metrics_addr = "  127.0.0.1:9464  "

[render]
tile_size = 64
max_iterations = 2048
kernel = "  simple "
zoom_factor = 0.8
origin_x = 0.0

[pool]
workers = 3
queue_depth = 128
reservation_timeout = "2s"

[frame]
interval = "16ms"
cache_multiplier = 6

[start]
center_x = 0.0
center_y = 0.1
zoom = 12
palette = "fire"

[log]
file = "  ~/logs/fractile.log  "
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	want.Render.TileSize = 64
	want.Render.MaxIterations = 2048
	want.Render.Kernel = "simple"
	want.Render.ZoomFactor = 0.8
	want.Render.OriginX = 0
	want.Pool = Pool{Workers: 3, QueueDepth: 128, ReservationTimeout: 2 * time.Second}
	want.Frame.Interval = 16 * time.Millisecond
	want.Frame.CacheMultiplier = 6
	want.Start = Start{CenterX: 0, CenterY: 0.1, Zoom: 12, Palette: "fire"}
	want.Log = Log{File: filepath.Join(home, "logs/fractile.log"), Level: "debug"}
	want.MetricsAddr = "127.0.0.1:9464"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
[render]
kernel = "   "
tile_size = 0

[frame]
interval = ""

[log]
file = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := writeConfig(t, `[render`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_BadDurationFails(t *testing.T) {
	path := writeConfig(t, "[frame]\ninterval = \"soon\"\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "frame.interval") {
		t.Fatalf("Load error = %v, want frame.interval parse error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"tile too small", func(c *Config) { c.Render.TileSize = 1 }, "tile_size"},
		{"tile too large", func(c *Config) { c.Render.TileSize = 512 }, "tile_size"},
		{"iterations overflow", func(c *Config) { c.Render.MaxIterations = 70000 }, "max_iterations"},
		{"zoom factor one", func(c *Config) { c.Render.ZoomFactor = 1 }, "zoom_factor"},
		{"unknown kernel", func(c *Config) { c.Render.Kernel = "avx" }, "render.kernel"},
		{"negative workers", func(c *Config) { c.Pool.Workers = -1 }, "pool.workers"},
		{"unknown palette", func(c *Config) { c.Start.Palette = "neon" }, "start.palette"},
		{"negative duration", func(c *Config) { c.Frame.DrainBudget = -time.Second }, "durations"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate returned error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestGrid_DerivesBasePixel(t *testing.T) {
	g := Default().Grid()
	if g.BasePixel != 3.2/800 {
		t.Fatalf("BasePixel = %v, want %v", g.BasePixel, 3.2/800)
	}
	if g.TileSize != 32 || g.OriginX != -4 || g.Extent != 8 {
		t.Fatalf("Grid = %+v", g)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
