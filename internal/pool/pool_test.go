package pool

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/fractile/internal/tile"
)

type computeFunc func(tile.Key) (*tile.Tile, error)

func (f computeFunc) Compute(k tile.Key) (*tile.Tile, error) { return f(k) }

type countingObserver struct {
	computed atomic.Int64
	failures atomic.Int64
}

func (o *countingObserver) ObserveCompute(time.Duration) { o.computed.Add(1) }
func (o *countingObserver) WorkerFailure()               { o.failures.Add(1) }

func collect(t *testing.T, p *Pool, n int) []Result {
	t.Helper()
	var out []Result
	timeout := time.After(5 * time.Second)
	for len(out) < n {
		select {
		case r := <-p.Results():
			out = append(out, r)
		case <-timeout:
			t.Fatalf("received %d results, want %d", len(out), n)
		}
	}
	return out
}

func TestPool_ComputesEverySubmittedItem(t *testing.T) {
	c := computeFunc(func(k tile.Key) (*tile.Tile, error) { return tile.New(k, 1), nil })
	obs := &countingObserver{}
	p := New(c, Options{Size: 4, QueueDepth: 64, Metrics: obs})
	p.Start(context.Background())
	defer p.Stop()

	const n = 50
	for i := 0; i < n; i++ {
		if !p.Submit(WorkItem{Key: tile.Key{Col: int64(i)}, Token: 7}) {
			t.Fatalf("Submit(%d) = false", i)
		}
	}
	results := collect(t, p, n)

	var cols []int64
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("result %s error: %v", r.Key, r.Err)
		}
		if r.Token != 7 || r.Tile == nil || r.Tile.Key != r.Key {
			t.Fatalf("result = %+v, want token 7 and a tile for its key", r)
		}
		cols = append(cols, r.Key.Col)
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i] < cols[j] })
	want := make([]int64, n)
	for i := range want {
		want[i] = int64(i)
	}
	if diff := cmp.Diff(want, cols); diff != "" {
		t.Fatalf("delivered keys mismatch (-want +got):\n%s", diff)
	}
	if s := p.Stats(); s.Computed != n || s.Failed != 0 || s.Size != 4 {
		t.Fatalf("Stats = %+v, want %d computed", s, n)
	}
	if obs.computed.Load() != n {
		t.Fatalf("observer saw %d computes, want %d", obs.computed.Load(), n)
	}
}

func TestPool_SubmitFullQueue(t *testing.T) {
	gate := make(chan struct{})
	c := computeFunc(func(k tile.Key) (*tile.Tile, error) {
		<-gate
		return tile.New(k, 1), nil
	})
	// Not started, so nothing drains the queue.
	p := New(c, Options{Size: 1, QueueDepth: 2})
	if !p.Submit(WorkItem{}) || !p.Submit(WorkItem{}) {
		t.Fatalf("Submit into empty queue = false")
	}
	if p.Submit(WorkItem{}) {
		t.Fatalf("Submit into full queue = true")
	}
	if q := p.Stats().Queued; q != 2 {
		t.Fatalf("Queued = %d, want 2", q)
	}
	close(gate)
}

func TestPool_RecoversPanics(t *testing.T) {
	c := computeFunc(func(k tile.Key) (*tile.Tile, error) {
		if k.Col == 1 {
			panic("bad tile")
		}
		return tile.New(k, 1), nil
	})
	obs := &countingObserver{}
	p := New(c, Options{Size: 1, QueueDepth: 4, Metrics: obs})
	p.Start(context.Background())
	defer p.Stop()

	p.Submit(WorkItem{Key: tile.Key{Col: 1}, Token: 3})
	p.Submit(WorkItem{Key: tile.Key{Col: 2}, Token: 3})
	results := collect(t, p, 2)

	var failed, ok int
	for _, r := range results {
		switch {
		case errors.Is(r.Err, ErrComputePanic):
			failed++
			if r.Key.Col != 1 || r.Tile != nil || r.Token != 3 {
				t.Fatalf("failed result = %+v, want key col 1 with no tile", r)
			}
		case r.Err == nil:
			ok++
		default:
			t.Fatalf("unexpected error: %v", r.Err)
		}
	}
	if failed != 1 || ok != 1 {
		t.Fatalf("failed=%d ok=%d, want 1 and 1", failed, ok)
	}
	if p.Stats().Failed != 1 || obs.failures.Load() != 1 {
		t.Fatalf("Failed = %d observer=%d, want 1", p.Stats().Failed, obs.failures.Load())
	}
}

func TestPool_StopEndsWorkers(t *testing.T) {
	block := make(chan struct{})
	c := computeFunc(func(k tile.Key) (*tile.Tile, error) {
		<-block
		return tile.New(k, 1), nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	p := New(c, Options{Size: 2, QueueDepth: 4})
	p.Start(ctx)

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Stop did not return for idle workers")
	}
	cancel()
	close(block)
}

func TestDefaultSize(t *testing.T) {
	if n := DefaultSize(); n < 1 || n > MaxDefaultSize {
		t.Fatalf("DefaultSize = %d, want 1..%d", n, MaxDefaultSize)
	}
}
