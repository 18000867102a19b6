package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/fractile/internal/kernel"
	"github.com/five82/fractile/internal/tile"
)

// Config is the fully resolved fractile configuration.
type Config struct {
	Render      Render
	Pool        Pool
	Frame       Frame
	Start       Start
	Log         Log
	MetricsAddr string
}

// Render controls tile geometry and the kernel.
type Render struct {
	TileSize       int
	MaxIterations  int
	Kernel         string
	ZoomFactor     float64
	BaseWidth      float64 // coordinate width of ReferenceWidth pixels at level 0
	ReferenceWidth int
	PrecisionFloor float64
	OriginX        float64
	OriginY        float64
	Extent         float64
}

// Pool sizes the worker pool.
type Pool struct {
	Workers            int // zero picks min(16, NumCPU)
	QueueDepth         int
	ReservationTimeout time.Duration
}

// Frame controls the render loop cadence.
type Frame struct {
	Interval        time.Duration
	DrainBudget     time.Duration
	CacheMultiplier int
}

// Start is the initial view.
type Start struct {
	CenterX float64
	CenterY float64
	Zoom    int
	Palette string
}

// Log configures the log file.
type Log struct {
	File  string
	Level string
}

const (
	defaultConfigPath         = "~/.config/fractile/config.toml"
	defaultLogFile            = "~/.local/state/fractile/fractile.log"
	defaultLogLevel           = "info"
	defaultTileSize           = 32
	defaultMaxIterations      = 1000
	defaultZoomFactor         = 0.9
	defaultBaseWidth          = 3.2
	defaultReferenceWidth     = 800
	defaultPrecisionFloor     = 1.6e-11
	defaultOrigin             = -4.0
	defaultExtent             = 8.0
	defaultQueueDepth         = 4096
	defaultReservationTimeout = 10 * time.Second
	defaultFrameInterval      = 33 * time.Millisecond
	defaultDrainBudget        = 33 * time.Millisecond
	defaultCacheMultiplier    = 4
	defaultCenterX            = -0.75
	defaultPalette            = "rainbow"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Render: Render{
			TileSize:       defaultTileSize,
			MaxIterations:  defaultMaxIterations,
			Kernel:         kernel.NameUnrolled,
			ZoomFactor:     defaultZoomFactor,
			BaseWidth:      defaultBaseWidth,
			ReferenceWidth: defaultReferenceWidth,
			PrecisionFloor: defaultPrecisionFloor,
			OriginX:        defaultOrigin,
			OriginY:        defaultOrigin,
			Extent:         defaultExtent,
		},
		Pool: Pool{
			QueueDepth:         defaultQueueDepth,
			ReservationTimeout: defaultReservationTimeout,
		},
		Frame: Frame{
			Interval:        defaultFrameInterval,
			DrainBudget:     defaultDrainBudget,
			CacheMultiplier: defaultCacheMultiplier,
		},
		Start: Start{
			CenterX: defaultCenterX,
			Palette: defaultPalette,
		},
		Log: Log{
			File:  mustExpand(defaultLogFile),
			Level: defaultLogLevel,
		},
	}
}

type rawConfig struct {
	Render struct {
		TileSize       int      `toml:"tile_size"`
		MaxIterations  int      `toml:"max_iterations"`
		Kernel         string   `toml:"kernel"`
		ZoomFactor     float64  `toml:"zoom_factor"`
		BaseWidth      float64  `toml:"base_width"`
		ReferenceWidth int      `toml:"reference_width"`
		PrecisionFloor float64  `toml:"precision_floor"`
		OriginX        *float64 `toml:"origin_x"`
		OriginY        *float64 `toml:"origin_y"`
		Extent         float64  `toml:"extent"`
	} `toml:"render"`
	Pool struct {
		Workers            int    `toml:"workers"`
		QueueDepth         int    `toml:"queue_depth"`
		ReservationTimeout string `toml:"reservation_timeout"`
	} `toml:"pool"`
	Frame struct {
		Interval        string `toml:"interval"`
		DrainBudget     string `toml:"drain_budget"`
		CacheMultiplier int    `toml:"cache_multiplier"`
	} `toml:"frame"`
	Start struct {
		CenterX *float64 `toml:"center_x"`
		CenterY *float64 `toml:"center_y"`
		Zoom    int      `toml:"zoom"`
		Palette string   `toml:"palette"`
	} `toml:"start"`
	Log struct {
		File  string `toml:"file"`
		Level string `toml:"level"`
	} `toml:"log"`
	MetricsAddr string `toml:"metrics_addr"`
}

// Load locates and parses the fractile config, falling back to defaults when
// the file is missing. Blank or zero fields keep their defaults. The result
// is validated before it is returned.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.apply(raw); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", resolved, err)
	}
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	r := raw.Render
	setInt(&c.Render.TileSize, r.TileSize)
	setInt(&c.Render.MaxIterations, r.MaxIterations)
	setString(&c.Render.Kernel, r.Kernel)
	setFloat(&c.Render.ZoomFactor, r.ZoomFactor)
	setFloat(&c.Render.BaseWidth, r.BaseWidth)
	setInt(&c.Render.ReferenceWidth, r.ReferenceWidth)
	setFloat(&c.Render.PrecisionFloor, r.PrecisionFloor)
	setFloatPtr(&c.Render.OriginX, r.OriginX)
	setFloatPtr(&c.Render.OriginY, r.OriginY)
	setFloat(&c.Render.Extent, r.Extent)

	c.Pool.Workers = raw.Pool.Workers
	setInt(&c.Pool.QueueDepth, raw.Pool.QueueDepth)
	if err := setDuration(&c.Pool.ReservationTimeout, raw.Pool.ReservationTimeout, "pool.reservation_timeout"); err != nil {
		return err
	}

	if err := setDuration(&c.Frame.Interval, raw.Frame.Interval, "frame.interval"); err != nil {
		return err
	}
	if err := setDuration(&c.Frame.DrainBudget, raw.Frame.DrainBudget, "frame.drain_budget"); err != nil {
		return err
	}
	setInt(&c.Frame.CacheMultiplier, raw.Frame.CacheMultiplier)

	setFloatPtr(&c.Start.CenterX, raw.Start.CenterX)
	setFloatPtr(&c.Start.CenterY, raw.Start.CenterY)
	c.Start.Zoom = raw.Start.Zoom
	setString(&c.Start.Palette, raw.Start.Palette)

	if file := strings.TrimSpace(raw.Log.File); file != "" {
		c.Log.File = mustExpand(file)
	}
	setString(&c.Log.Level, raw.Log.Level)
	c.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	return nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	r := c.Render
	switch {
	case r.TileSize < 2 || r.TileSize > 256:
		return fmt.Errorf("render.tile_size must be in [2, 256], got %d", r.TileSize)
	case r.MaxIterations < 1 || r.MaxIterations > 65535:
		return fmt.Errorf("render.max_iterations must be in [1, 65535], got %d", r.MaxIterations)
	case r.ZoomFactor <= 0 || r.ZoomFactor >= 1:
		return fmt.Errorf("render.zoom_factor must be in (0, 1), got %v", r.ZoomFactor)
	case r.BaseWidth <= 0:
		return fmt.Errorf("render.base_width must be positive, got %v", r.BaseWidth)
	case r.ReferenceWidth <= 0:
		return fmt.Errorf("render.reference_width must be positive, got %d", r.ReferenceWidth)
	case r.PrecisionFloor <= 0:
		return fmt.Errorf("render.precision_floor must be positive, got %v", r.PrecisionFloor)
	case r.Extent <= 0:
		return fmt.Errorf("render.extent must be positive, got %v", r.Extent)
	}
	if _, err := kernel.ByName(r.Kernel); err != nil {
		return fmt.Errorf("render.kernel: %w", err)
	}
	if c.Pool.Workers < 0 {
		return fmt.Errorf("pool.workers must not be negative, got %d", c.Pool.Workers)
	}
	if c.Pool.QueueDepth < 1 {
		return fmt.Errorf("pool.queue_depth must be positive, got %d", c.Pool.QueueDepth)
	}
	if c.Pool.ReservationTimeout < 0 || c.Frame.Interval < 0 || c.Frame.DrainBudget < 0 {
		return errors.New("durations must not be negative")
	}
	if c.Frame.CacheMultiplier < 1 {
		return fmt.Errorf("frame.cache_multiplier must be at least 1, got %d", c.Frame.CacheMultiplier)
	}
	if c.Start.Zoom < 0 {
		return fmt.Errorf("start.zoom must not be negative, got %d", c.Start.Zoom)
	}
	if _, err := kernel.PaletteIndex(c.Start.Palette); err != nil {
		return fmt.Errorf("start.palette: %w", err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// Grid derives the tile grid from the render settings.
func (c Config) Grid() tile.Grid {
	r := c.Render
	return tile.Grid{
		TileSize:   r.TileSize,
		OriginX:    r.OriginX,
		OriginY:    r.OriginY,
		Extent:     r.Extent,
		BasePixel:  r.BaseWidth / float64(r.ReferenceWidth),
		ZoomFactor: r.ZoomFactor,
	}
}

// DefaultPath returns the expanded default config location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func setFloatPtr(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v string) {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		*dst = trimmed
	}
}

func setDuration(dst *time.Duration, v, field string) error {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", field, err)
	}
	*dst = d
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
