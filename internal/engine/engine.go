// Package engine is the render loop core. It owns navigation history, the
// tile cache and the worker pool, turns commands into history changes, and
// produces one Frame of ready tiles per UI tick.
//
// Dispatch and Frame must be called from a single goroutine. Workers run on
// their own goroutines and only talk to the engine through the pool's
// channels.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/fractile/internal/cache"
	"github.com/five82/fractile/internal/kernel"
	"github.com/five82/fractile/internal/metrics"
	"github.com/five82/fractile/internal/pool"
	"github.com/five82/fractile/internal/state"
	"github.com/five82/fractile/internal/tile"
	"github.com/five82/fractile/internal/view"
)

const (
	// DefaultDrainBudget bounds how long one frame spends inserting results.
	DefaultDrainBudget = time.Second / 30
	// DefaultReservationTimeout re-arms reservations whose result never came.
	DefaultReservationTimeout = 10 * time.Second
	// DefaultCacheMultiplier sizes the cache relative to one screen.
	DefaultCacheMultiplier = 4
	// DefaultPrecisionFloor is the smallest pixel size zoom may reach.
	DefaultPrecisionFloor = 1.6e-11
	// MaxIterationsLimit keeps counts within uint16 tile storage.
	MaxIterationsLimit = 65535
)

// Options configure an Engine.
type Options struct {
	Grid               tile.Grid
	Kernel             kernel.Func
	MaxIterations      int
	PrecisionFloor     float64
	Start              view.State
	Viewport           view.Viewport
	Workers            int
	QueueDepth         int
	DrainBudget        time.Duration
	ReservationTimeout time.Duration
	CacheMultiplier    int
	Store              *state.Store
	Metrics            *metrics.Pipeline
	// Computer replaces the kernel-backed tile computer, mainly for tests.
	Computer pool.Computer
}

// Blit is a ready tile to draw at viewport offset (X, Y). Pixels is
// Size×Size×3 RGB, row-major. It belongs to the engine and is only valid
// until the next Frame.
type Blit struct {
	Key    tile.Key
	Pixels []byte
	Size   int
	X, Y   int
}

// Frame is the outcome of one render step.
type Frame struct {
	Blits     []Blit
	Visible   int // in-range placements
	Pending   int // visible keys still being computed
	Submitted int // keys dispatched this frame
	Deferred  int // keys not dispatched because the queue was full
	Delivered int // results inserted into the cache
	Stale     int // results discarded for an abandoned view
	Failed    int // results that carried an error
	Skipped   int // out-of-range placements
	Rearmed   int // reservations released after the timeout
	Evicted   int
	Drain     time.Duration
}

// Engine drives navigation and tile production.
type Engine struct {
	grid     tile.Grid
	maxIter  int
	palettes []kernel.Palette
	home     view.State

	history *view.History
	cache   *cache.Cache
	pool    *pool.Pool
	vp      view.Viewport
	layout  view.Layout

	drainBudget time.Duration
	rearmAfter  time.Duration
	multiplier  int

	store   *state.Store
	metrics *metrics.Pipeline
}

// New validates opts and wires the engine. Workers are not started until
// Start.
func New(opts Options) (*Engine, error) {
	g := opts.Grid
	if g.TileSize <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %d", g.TileSize)
	}
	if g.BasePixel <= 0 || g.Extent <= 0 {
		return nil, errors.New("grid base pixel and extent must be positive")
	}
	if g.ZoomFactor <= 0 || g.ZoomFactor >= 1 {
		return nil, fmt.Errorf("zoom factor must be in (0, 1), got %v", g.ZoomFactor)
	}
	if opts.MaxIterations < 1 || opts.MaxIterations > MaxIterationsLimit {
		return nil, fmt.Errorf("max iterations must be in [1, %d], got %d", MaxIterationsLimit, opts.MaxIterations)
	}
	if opts.Kernel == nil {
		opts.Kernel = kernel.IterateUnrolled
	}
	if opts.PrecisionFloor <= 0 {
		opts.PrecisionFloor = DefaultPrecisionFloor
	}
	if opts.DrainBudget <= 0 {
		opts.DrainBudget = DefaultDrainBudget
	}
	if opts.ReservationTimeout <= 0 {
		opts.ReservationTimeout = DefaultReservationTimeout
	}
	if opts.CacheMultiplier <= 0 {
		opts.CacheMultiplier = DefaultCacheMultiplier
	}
	if opts.Store == nil {
		opts.Store = state.NewStore(state.Options{})
	}

	palettes := kernel.Palettes(opts.MaxIterations)
	start := opts.Start
	if start.Palette < 0 || start.Palette >= len(palettes) {
		start.Palette = 0
	}

	computer := opts.Computer
	if computer == nil {
		computer = tile.Computer{Grid: g, Iterate: opts.Kernel, MaxIterations: opts.MaxIterations}
	}

	maxLevel := g.MaxLevel(opts.PrecisionFloor)
	e := &Engine{
		grid:        g,
		maxIter:     opts.MaxIterations,
		palettes:    palettes,
		history:     view.NewHistory(start, maxLevel),
		cache:       cache.New(),
		vp:          opts.Viewport,
		drainBudget: opts.DrainBudget,
		rearmAfter:  opts.ReservationTimeout,
		multiplier:  opts.CacheMultiplier,
		store:       opts.Store,
		metrics:     opts.Metrics,
	}
	e.home = e.history.Current()
	e.pool = pool.New(computer, pool.Options{
		Size:       opts.Workers,
		QueueDepth: opts.QueueDepth,
		Metrics:    observer(opts.Metrics),
	})

	slog.Info("engine ready",
		"tile_size", g.TileSize,
		"max_iterations", opts.MaxIterations,
		"max_level", maxLevel,
		"workers", e.pool.Size(),
	)
	return e, nil
}

// observer keeps a nil *metrics.Pipeline from becoming a non-nil interface.
func observer(p *metrics.Pipeline) pool.Observer {
	if p == nil {
		return nil
	}
	return p
}

// Start launches the worker pool.
func (e *Engine) Start(ctx context.Context) {
	e.pool.Start(ctx)
}

// Stop shuts the worker pool down.
func (e *Engine) Stop() {
	e.pool.Stop()
}

// Frame runs one render step: re-arm lost reservations, drain results
// within the budget, collect ready tiles and dispatch missing ones, then
// trim the cache.
func (e *Engine) Frame() Frame {
	frameStart := time.Now()
	var f Frame

	for _, k := range e.cache.Rearm(e.rearmAfter) {
		slog.Warn("re-arming tile reservation", "key", k.String(), "timeout", e.rearmAfter)
		f.Rearmed++
	}

	e.drain(&f)

	cur := e.history.Current()
	token := e.history.Cursor()
	e.layout = view.Visible(e.grid, cur, e.vp)
	palette := e.palettes[cur.Palette]

	for _, pl := range e.layout.Placements {
		if !e.grid.InRange(pl.Key) {
			f.Skipped++
			slog.Debug("skipping out of range tile", "key", pl.Key.String(), "err", tile.ErrOutOfRange)
			continue
		}
		f.Visible++

		if t, ok := e.cache.Get(pl.Key); ok {
			e.cache.Touch(pl.Key)
			f.Blits = append(f.Blits, Blit{
				Key:    pl.Key,
				Pixels: t.RGB(cur.Palette, palette, e.maxIter),
				Size:   t.Size,
				X:      pl.X,
				Y:      pl.Y,
			})
			continue
		}
		if !e.cache.Reserve(pl.Key, token) {
			f.Pending++
			continue
		}
		e.store.RecordMiss(pl.Key.String())
		if !e.pool.Submit(pool.WorkItem{Key: pl.Key, Token: token}) {
			e.cache.Release(pl.Key, token)
			f.Deferred++
			continue
		}
		f.Submitted++
		f.Pending++
	}

	// A collapsed terminal shows nothing; keep the cache for when it grows back.
	if !e.vp.Empty() {
		evicted := e.cache.EvictExcess(cache.Capacity(len(e.layout.Placements), e.multiplier))
		f.Evicted = len(evicted)
	}

	e.publish(f, cur, time.Since(frameStart))
	return f
}

func (e *Engine) drain(f *Frame) {
	start := time.Now()
	deadline := start.Add(e.drainBudget)
	defer func() { f.Drain = time.Since(start) }()

	results := e.pool.Results()
	for {
		select {
		case res := <-results:
			e.accept(res, f)
			if time.Now().After(deadline) {
				return
			}
		default:
			return
		}
	}
}

func (e *Engine) accept(res pool.Result, f *Frame) {
	switch {
	case res.Err != nil:
		f.Failed++
		e.cache.Release(res.Key, res.Token)
		if errors.Is(res.Err, tile.ErrOutOfRange) {
			slog.Debug("tile request out of range", "key", res.Key.String())
			return
		}
		slog.Error("tile compute failed", "key", res.Key.String(), "error", res.Err)
	case !e.history.IsCurrent(res.Token):
		f.Stale++
		e.cache.Release(res.Key, res.Token)
	default:
		e.cache.Insert(res.Tile)
		f.Delivered++
	}
}

func (e *Engine) publish(f Frame, cur view.State, elapsed time.Duration) {
	ps := e.pool.Stats()
	e.store.RecordFrame(state.FrameStats{
		Workers:     ps.Size,
		Queued:      ps.Queued,
		InFlight:    ps.InFlight,
		Computed:    ps.Computed,
		Failed:      ps.Failed,
		CacheLen:    e.cache.Len(),
		Pending:     e.cache.Pending(),
		Capacity:    cache.Capacity(len(e.layout.Placements), e.multiplier),
		Evicted:     e.cache.Evicted(),
		HistoryLen:  e.history.Len(),
		Cursor:      e.history.Cursor(),
		Level:       cur.Zoom,
		PixelSize:   e.layout.PixelSize,
		MaxZoomed:   e.history.MaxZoomed(),
		Visible:     f.Visible,
		Delivered:   f.Delivered,
		Stale:       f.Stale,
		DrainTime:   f.Drain,
		FrameTime:   elapsed,
		PaletteName: e.palettes[cur.Palette].Name,
	})
	e.metrics.Frame(f.Delivered, f.Stale, f.Evicted, ps.Queued, e.cache.Len(), cur.Zoom)
}

// State returns the current view.
func (e *Engine) State() view.State { return e.history.Current() }

// MaxZoomed reports whether zooming in is refused.
func (e *Engine) MaxZoomed() bool { return e.history.MaxZoomed() }

// MaxLevel returns the deepest zoom level.
func (e *Engine) MaxLevel() int { return e.history.MaxLevel() }

// Viewport returns the viewport size in pixels.
func (e *Engine) Viewport() view.Viewport { return e.vp }

// Layout returns the layout computed by the last Frame.
func (e *Engine) Layout() view.Layout { return e.layout }

// PixelSize returns the coordinate width of a pixel at the current level.
func (e *Engine) PixelSize() float64 { return e.grid.PixelSize(e.history.Current().Zoom) }

// HistoryLen returns the number of history entries, forgotten ones included.
func (e *Engine) HistoryLen() int { return e.history.Len() }

// Cursor returns the current history index.
func (e *Engine) Cursor() int { return e.history.Cursor() }

// Palettes returns the available palettes.
func (e *Engine) Palettes() []kernel.Palette { return e.palettes }

// Palette returns the palette of the current view.
func (e *Engine) Palette() kernel.Palette { return e.palettes[e.history.Current().Palette] }

// ScreenToCoord maps a viewport pixel to plane coordinates for the current
// view.
func (e *Engine) ScreenToCoord(sx, sy int) (float64, float64) {
	return view.ScreenToCoord(e.grid, e.history.Current(), e.vp, sx, sy)
}

// Store returns the telemetry store the engine publishes to.
func (e *Engine) Store() *state.Store { return e.store }
