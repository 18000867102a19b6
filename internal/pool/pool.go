// Package pool runs tile computations on a fixed set of worker goroutines.
//
// The render loop submits WorkItems without blocking and drains Results on
// its own schedule. Workers only compute; they never look at navigation
// state, so staleness is decided by whoever reads the results.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/fractile/internal/tile"
)

// ErrComputePanic wraps a panic recovered from a Computer.
var ErrComputePanic = errors.New("tile compute panicked")

// MaxDefaultSize caps the default worker count.
const MaxDefaultSize = 16

// DefaultQueueDepth is used when Options.QueueDepth is not positive.
const DefaultQueueDepth = 4096

// WorkItem asks for one tile. Token is the history index the request was
// made under.
type WorkItem struct {
	Key   tile.Key
	Token int
}

// Result carries a computed tile, or the error that prevented it, back to
// the render loop.
type Result struct {
	Key     tile.Key
	Token   int
	Tile    *tile.Tile
	Err     error
	Elapsed time.Duration
}

// Computer produces tiles. Implementations must be safe for concurrent use.
type Computer interface {
	Compute(tile.Key) (*tile.Tile, error)
}

// Observer receives per-item figures. A nil Observer is allowed.
type Observer interface {
	ObserveCompute(time.Duration)
	WorkerFailure()
}

// Options configure a Pool.
type Options struct {
	Size       int // zero uses DefaultSize
	QueueDepth int
	Metrics    Observer
}

// Stats is a point-in-time view of pool counters.
type Stats struct {
	Size     int
	Queued   int
	InFlight int
	Computed uint64
	Failed   uint64
}

// Pool is a fixed-size worker pool fed by a bounded FIFO channel.
type Pool struct {
	computer Computer
	size     int
	metrics  Observer

	work    chan WorkItem
	results chan Result

	inFlight atomic.Int64
	computed atomic.Uint64
	failed   atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// DefaultSize returns min(MaxDefaultSize, runtime.NumCPU()).
func DefaultSize() int {
	return min(MaxDefaultSize, runtime.NumCPU())
}

// New builds a pool. Workers do not run until Start.
func New(c Computer, opts Options) *Pool {
	size := opts.Size
	if size <= 0 {
		size = DefaultSize()
	}
	depth := opts.QueueDepth
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	return &Pool{
		computer: c,
		size:     size,
		metrics:  opts.Metrics,
		work:     make(chan WorkItem, depth),
		results:  make(chan Result, depth+size),
	}
}

// Start launches the workers. They exit when ctx is cancelled or Stop is
// called. Calling Start twice has no effect.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	slog.Debug("worker pool started", "workers", p.size, "queue_depth", cap(p.work))
}

// Stop cancels the workers and waits for them to return. Items still queued
// are dropped.
func (p *Pool) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
}

// Submit enqueues item without blocking. It returns false when the queue is
// full.
func (p *Pool) Submit(item WorkItem) bool {
	select {
	case p.work <- item:
		return true
	default:
		return false
	}
}

// Results is the channel completed items are delivered on.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Stats returns current counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Size:     p.size,
		Queued:   len(p.work),
		InFlight: int(p.inFlight.Load()),
		Computed: p.computed.Load(),
		Failed:   p.failed.Load(),
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-p.work:
			res := p.run(id, item)
			select {
			case p.results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (p *Pool) run(id int, item WorkItem) (res Result) {
	p.inFlight.Add(1)
	defer p.inFlight.Add(-1)

	res = Result{Key: item.Key, Token: item.Token}
	start := time.Now()
	defer func() {
		res.Elapsed = time.Since(start)
		if r := recover(); r != nil {
			res.Tile = nil
			res.Err = fmt.Errorf("%w: %s: %v", ErrComputePanic, item.Key, r)
			p.failed.Add(1)
			if p.metrics != nil {
				p.metrics.WorkerFailure()
			}
			slog.Error("tile worker recovered from panic", "worker", id, "key", item.Key.String(), "panic", r)
			return
		}
		if res.Err != nil {
			p.failed.Add(1)
			return
		}
		p.computed.Add(1)
		if p.metrics != nil {
			p.metrics.ObserveCompute(res.Elapsed)
		}
	}()

	res.Tile, res.Err = p.computer.Compute(item.Key)
	return res
}
