// Package view holds the navigation state of the explorer: the current view,
// an append-only history that supports non-destructive back navigation, and
// the geometry that maps a view onto visible tiles.
package view

import "sync"

// State is one navigation step.
type State struct {
	CenterX float64
	CenterY float64
	Zoom    int
	Palette int
}

// Override changes a field of a cloned State before it is pushed.
type Override func(*State)

// WithCenter moves the view center.
func WithCenter(x, y float64) Override {
	return func(s *State) { s.CenterX, s.CenterY = x, y }
}

// WithZoom sets the zoom level.
func WithZoom(level int) Override {
	return func(s *State) { s.Zoom = level }
}

// WithPalette selects a palette index.
func WithPalette(idx int) Override {
	return func(s *State) { s.Palette = idx }
}

// Entry is a State recorded in History.
type Entry struct {
	State
	Index     int
	Forgotten bool
}

// History is an append-only log of views with a cursor. Entries are never
// removed; Back only marks them forgotten, so an index handed out with
// dispatched work stays meaningful for the lifetime of the session.
//
// The render loop is the only writer. Readers on other goroutines take the
// read lock.
type History struct {
	mu       sync.RWMutex
	entries  []Entry
	cursor   int
	maxLevel int
}

// NewHistory starts a history whose root is root. Zoom is clamped to
// [0, maxLevel].
func NewHistory(root State, maxLevel int) *History {
	if maxLevel < 0 {
		maxLevel = 0
	}
	h := &History{maxLevel: maxLevel}
	root.Zoom, _ = clampZoom(root.Zoom, maxLevel)
	h.entries = []Entry{{State: root, Index: 0}}
	return h
}

// Current returns the state at the cursor.
func (h *History) Current() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entries[h.cursor].State
}

// Cursor returns the index of the current entry.
func (h *History) Cursor() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor
}

// Len returns the number of entries ever recorded, forgotten ones included.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Entry returns the entry at idx.
func (h *History) Entry(idx int) (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if idx < 0 || idx >= len(h.entries) {
		return Entry{}, false
	}
	return h.entries[idx], true
}

// MaxLevel returns the deepest zoom level the history accepts.
func (h *History) MaxLevel() int {
	return h.maxLevel
}

// MaxZoomed reports whether the current view sits at the deepest level.
func (h *History) MaxZoomed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entries[h.cursor].Zoom >= h.maxLevel
}

// Push clones the current state, applies opts, appends the result and moves
// the cursor to it. The returned bool is true when the zoom level had to be
// clamped to the deepest level.
func (h *History) Push(opts ...Override) (State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.entries[h.cursor].State
	for _, opt := range opts {
		opt(&next)
	}
	var clamped bool
	next.Zoom, clamped = clampZoom(next.Zoom, h.maxLevel)

	idx := len(h.entries)
	h.entries = append(h.entries, Entry{State: next, Index: idx})
	h.cursor = idx
	return next, clamped
}

// Back forgets the current entry and moves the cursor to the nearest earlier
// entry that is not forgotten. It returns false at the root, which is never
// forgotten.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor == 0 {
		return false
	}
	h.entries[h.cursor].Forgotten = true
	idx := h.cursor - 1
	for idx > 0 && h.entries[idx].Forgotten {
		idx--
	}
	h.cursor = idx
	return true
}

// IsCurrent reports whether work tagged with idx still belongs to the view
// on screen.
func (h *History) IsCurrent(idx int) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return idx == h.cursor && !h.entries[idx].Forgotten
}

func clampZoom(level, maxLevel int) (int, bool) {
	if level < 0 {
		return 0, false
	}
	if level > maxLevel {
		return maxLevel, true
	}
	return level, false
}
