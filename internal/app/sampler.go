package app

import (
	"context"
	"time"

	"github.com/five82/fractile/internal/state"
)

const defaultSampleInterval = time.Second

// StartSampler launches a background goroutine that advances the store's
// hot-tile window at a fixed cadence. It returns immediately.
func StartSampler(ctx context.Context, store *state.Store, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSampleInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				store.Tick(1)
			}
		}
	}()
}
