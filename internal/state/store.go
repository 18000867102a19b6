package state

import (
	"slices"
	"sync"
	"time"

	"github.com/keilerkonzept/topk/sliding"
)

const (
	defaultDrainWindow    = 64
	defaultDeliveredTrail = 120
	defaultHotTiles       = 8
	defaultHotWindow      = 10 // ticks
)

// FrameStats are the per-frame figures the render loop publishes.
type FrameStats struct {
	Workers     int
	Queued      int
	InFlight    int
	Computed    uint64
	Failed      uint64
	CacheLen    int
	Pending     int
	Capacity    int
	Evicted     uint64
	HistoryLen  int
	Cursor      int
	Level       int
	PixelSize   float64
	MaxZoomed   bool
	Visible     int
	Delivered   int
	Stale       int
	DrainTime   time.Duration
	FrameTime   time.Duration
	RecordedAt  time.Time
	PaletteName string
}

// DurationStats summarises a window of durations.
type DurationStats struct {
	Last time.Duration
	Avg  time.Duration
	Max  time.Duration
	N    int
}

// HotTile is a tile key that keeps being recomputed.
type HotTile struct {
	Key    string
	Misses uint32
}

// Snapshot is the latest telemetry available to the UI.
type Snapshot struct {
	Frame          FrameStats
	Frames         uint64
	TotalDelivered uint64
	TotalStale     uint64
	Drain          DurationStats
	DeliveredTrail []float64 // oldest first
	HotTiles       []HotTile
	Started        time.Time
}

// Options size the Store's rolling windows.
type Options struct {
	DrainWindow    int
	DeliveredTrail int
	HotTiles       int
	HotWindowTicks int
}

// Store coordinates telemetry between the render loop, the sampler and the
// UI. The zero value is not usable; call NewStore.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	drain    *durationRing
	trail    []float64

	sketchMu sync.Mutex
	sketch   *sliding.Sketch
	hotK     int
}

// NewStore builds a store with the given window sizes. Zero fields take
// defaults.
func NewStore(opts Options) *Store {
	if opts.DrainWindow <= 0 {
		opts.DrainWindow = defaultDrainWindow
	}
	if opts.DeliveredTrail <= 0 {
		opts.DeliveredTrail = defaultDeliveredTrail
	}
	if opts.HotTiles <= 0 {
		opts.HotTiles = defaultHotTiles
	}
	if opts.HotWindowTicks <= 0 {
		opts.HotWindowTicks = defaultHotWindow
	}
	return &Store{
		snapshot: Snapshot{Started: time.Now()},
		drain:    newDurationRing(opts.DrainWindow),
		trail:    make([]float64, opts.DeliveredTrail),
		sketch: sliding.New(opts.HotTiles, opts.HotWindowTicks,
			sliding.WithWidth(1024),
			sliding.WithDepth(3),
		),
		hotK: opts.HotTiles,
	}
}

// RecordFrame stores the figures of one rendered frame.
func (s *Store) RecordFrame(f FrameStats) {
	if f.RecordedAt.IsZero() {
		f.RecordedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Frame = f
	s.snapshot.Frames++
	s.snapshot.TotalDelivered += uint64(f.Delivered)
	s.snapshot.TotalStale += uint64(f.Stale)
	s.drain.add(f.DrainTime)

	copy(s.trail, s.trail[1:])
	s.trail[len(s.trail)-1] = float64(f.Delivered)
}

// RecordMiss counts a cache miss for key in the hot-tile sketch.
func (s *Store) RecordMiss(key string) {
	s.sketchMu.Lock()
	s.sketch.Incr(key)
	s.sketchMu.Unlock()
}

// Tick advances the hot-tile window by n ticks and refreshes the
// leaderboard.
func (s *Store) Tick(n int) {
	if n <= 0 {
		return
	}
	s.sketchMu.Lock()
	s.sketch.Ticks(n)
	items := s.sketch.SortedSlice()
	s.sketchMu.Unlock()

	hot := make([]HotTile, 0, min(len(items), s.hotK))
	for _, it := range items {
		if it.Count == 0 {
			continue
		}
		hot = append(hot, HotTile{Key: it.Item, Misses: it.Count})
		if len(hot) == s.hotK {
			break
		}
	}

	s.mu.Lock()
	s.snapshot.HotTiles = hot
	s.mu.Unlock()
}

// Snapshot returns a copy of the current telemetry.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Drain = s.drain.snapshot()
	snap.DeliveredTrail = slices.Clone(s.trail)
	snap.HotTiles = slices.Clone(s.snapshot.HotTiles)
	return snap
}

type durationRing struct {
	buf   []time.Duration
	idx   int
	count int
}

func newDurationRing(n int) *durationRing {
	if n < 1 {
		n = 1
	}
	return &durationRing{buf: make([]time.Duration, n)}
}

func (r *durationRing) add(d time.Duration) {
	r.buf[r.idx] = d
	r.idx++
	if r.idx >= len(r.buf) {
		r.idx = 0
	}
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *durationRing) snapshot() DurationStats {
	if r.count == 0 {
		return DurationStats{}
	}
	var sum, longest time.Duration
	for i := 0; i < r.count; i++ {
		d := r.buf[i]
		sum += d
		if d > longest {
			longest = d
		}
	}
	lastIdx := r.idx - 1
	if lastIdx < 0 {
		lastIdx = len(r.buf) - 1
	}
	return DurationStats{
		Last: r.buf[lastIdx],
		Avg:  sum / time.Duration(r.count),
		Max:  longest,
		N:    r.count,
	}
}
