package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/five82/fractile/internal/config"
	"github.com/five82/fractile/internal/engine"
	"github.com/five82/fractile/internal/kernel"
	"github.com/five82/fractile/internal/metrics"
	"github.com/five82/fractile/internal/prefs"
	"github.com/five82/fractile/internal/state"
	"github.com/five82/fractile/internal/ui"
	"github.com/five82/fractile/internal/view"
)

// Options configure the fractile application.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses default ~/.config/fractile/prefs.toml
	Workers     int    // zero uses the configured pool size
	MetricsAddr string // empty uses the configured address
}

// Run boots the fractile TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Workers > 0 {
		cfg.Pool.Workers = opts.Workers
	}
	if addr := strings.TrimSpace(opts.MetricsAddr); addr != "" {
		cfg.MetricsAddr = addr
	}

	closeLog, err := setupLogging(cfg.Log)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	iterate, err := kernel.ByName(cfg.Render.Kernel)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	pipeline := metrics.NewPipeline(reg)
	store := state.NewStore(state.Options{})

	eng, err := engine.New(engine.Options{
		Grid:               cfg.Grid(),
		Kernel:             iterate,
		MaxIterations:      cfg.Render.MaxIterations,
		PrecisionFloor:     cfg.Render.PrecisionFloor,
		Start:              startState(cfg.Start, userPrefs.Palette),
		Workers:            cfg.Pool.Workers,
		QueueDepth:         cfg.Pool.QueueDepth,
		DrainBudget:        cfg.Frame.DrainBudget,
		ReservationTimeout: cfg.Pool.ReservationTimeout,
		CacheMultiplier:    cfg.Frame.CacheMultiplier,
		Store:              store,
		Metrics:            pipeline,
	})
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eng.Start(ctx)
	defer eng.Stop()

	StartSampler(ctx, store, defaultSampleInterval)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg); err != nil {
				slog.Error("metrics server stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	return ui.Run(ui.Options{
		Context:       ctx,
		Engine:        eng,
		Store:         store,
		FrameInterval: cfg.Frame.Interval,
		LogPath:       cfg.Log.File,
		ThemeName:     userPrefs.Theme,
		PrefsPath:     opts.PrefsPath,
	})
}

// startState builds the root view. A palette saved in prefs wins over the
// configured one; unknown names fall back to the configured palette.
func startState(s config.Start, savedPalette string) view.State {
	idx, err := kernel.PaletteIndex(s.Palette)
	if err != nil {
		idx = 0
	}
	if savedPalette != "" {
		if saved, err := kernel.PaletteIndex(savedPalette); err == nil {
			idx = saved
		} else {
			slog.Warn("ignoring saved palette", "palette", savedPalette, "error", err)
		}
	}
	return view.State{CenterX: s.CenterX, CenterY: s.CenterY, Zoom: s.Zoom, Palette: idx}
}

// setupLogging points the default slog logger at the log file. The terminal
// belongs to the UI, so nothing is logged to stderr.
func setupLogging(cfg config.Log) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, err
	}
	f, err := tea.LogToFile(cfg.File, "")
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(f, cfg.Level))
	return func() { _ = f.Close() }, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
