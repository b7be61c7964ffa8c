package search

import "github.com/tonewall/gallery-backend/internal/model"

// PageSize is how many results one "load more" step reveals.
const PageSize = 12

// Window is a growable prefix view over a ranked result set. Growing never
// re-queries: the visible slice is recomputed from the full set on every
// call, so it always agrees with the underlying order and saturates at the
// end instead of erroring or duplicating.
type Window struct {
	results []*model.ContentRecord
	size    int
	pages   int
}

// NewWindow wraps results with an initial window of one page. A non-positive
// size falls back to PageSize.
func NewWindow(results []*model.ContentRecord, size int) *Window {
	if size <= 0 {
		size = PageSize
	}
	return &Window{results: results, size: size, pages: 1}
}

// Items returns the currently visible prefix.
func (w *Window) Items() []*model.ContentRecord {
	n := w.pages * w.size
	if n > len(w.results) {
		n = len(w.results)
	}
	return w.results[:n]
}

// Grow extends the window by one page and returns the new visible prefix.
func (w *Window) Grow() []*model.ContentRecord {
	if w.HasMore() {
		w.pages++
	}
	return w.Items()
}

// HasMore reports whether results beyond the current window remain.
func (w *Window) HasMore() bool {
	return w.pages*w.size < len(w.results)
}

// Len returns the total number of results backing the window.
func (w *Window) Len() int {
	return len(w.results)
}
