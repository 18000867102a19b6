package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutStatsWidth is the width of the stats overlay box.
	LayoutStatsWidth = 64
)

// Log display limits.
const (
	// LogBufferLimit is the maximum number of log lines to keep in memory.
	LogBufferLimit = 2000
)

// Timing constants.
const (
	// DefaultFrameInterval is the render loop cadence when none is configured.
	DefaultFrameInterval = 33 * time.Millisecond

	// LogRefreshInterval is how often the log overlay rereads the log file.
	LogRefreshInterval = time.Second
)
