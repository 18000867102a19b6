// Package metrics exposes render pipeline counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline holds the collectors for one render pipeline. A nil *Pipeline
// accepts every call and records nothing.
type Pipeline struct {
	tilesComputed  prometheus.Counter
	tilesStale     prometheus.Counter
	tilesDelivered prometheus.Counter
	workerFailures prometheus.Counter
	evictions      prometheus.Counter
	queueDepth     prometheus.Gauge
	cacheEntries   prometheus.Gauge
	zoomLevel      prometheus.Gauge
	computeSeconds prometheus.Histogram
}

// NewPipeline registers the pipeline collectors with reg.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	f := promauto.With(reg)
	return &Pipeline{
		tilesComputed: f.NewCounter(prometheus.CounterOpts{
			Name: "fractile_tiles_computed_total",
			Help: "Total number of tiles computed by workers",
		}),
		tilesStale: f.NewCounter(prometheus.CounterOpts{
			Name: "fractile_tiles_stale_total",
			Help: "Tiles discarded because the view they were requested for is gone",
		}),
		tilesDelivered: f.NewCounter(prometheus.CounterOpts{
			Name: "fractile_tiles_delivered_total",
			Help: "Tiles inserted into the cache",
		}),
		workerFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "fractile_worker_failures_total",
			Help: "Tile computations that panicked",
		}),
		evictions: f.NewCounter(prometheus.CounterOpts{
			Name: "fractile_cache_evictions_total",
			Help: "Tiles evicted from the cache",
		}),
		queueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "fractile_queue_depth",
			Help: "Work items waiting for a worker",
		}),
		cacheEntries: f.NewGauge(prometheus.GaugeOpts{
			Name: "fractile_cache_entries",
			Help: "Cache entries including pending reservations",
		}),
		zoomLevel: f.NewGauge(prometheus.GaugeOpts{
			Name: "fractile_zoom_level",
			Help: "Zoom level of the current view",
		}),
		computeSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fractile_tile_compute_seconds",
			Help:    "Time spent computing one tile",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
	}
}

// ObserveCompute records one successful tile computation.
func (p *Pipeline) ObserveCompute(d time.Duration) {
	if p == nil {
		return
	}
	p.tilesComputed.Inc()
	p.computeSeconds.Observe(d.Seconds())
}

// WorkerFailure records a recovered worker panic.
func (p *Pipeline) WorkerFailure() {
	if p == nil {
		return
	}
	p.workerFailures.Inc()
}

// Frame records the outcome of one render frame.
func (p *Pipeline) Frame(delivered, stale, evicted, queued, entries, level int) {
	if p == nil {
		return
	}
	p.tilesDelivered.Add(float64(delivered))
	p.tilesStale.Add(float64(stale))
	p.evictions.Add(float64(evicted))
	p.queueDepth.Set(float64(queued))
	p.cacheEntries.Set(float64(entries))
	p.zoomLevel.Set(float64(level))
}

// Handler returns the /metrics handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}
