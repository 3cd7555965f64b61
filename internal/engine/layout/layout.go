// Package layout emulates masonry packing on a CSS grid: each card
// gets a computed row-span derived from its measured height instead of
// the grid using fixed-height rows.
package layout

import (
	"sync"
	"time"
)

// ResizeDebounce is how long resize recomputation is coalesced so a
// burst of resize events collapses into one repack.
const ResizeDebounce = 150 * time.Millisecond

// Metrics are the grid container's current layout numbers, read from
// the host's styling.
type Metrics struct {
	RowHeightPx int
	RowGapPx    int
}

// RowSpan computes how many implicit grid rows a card of the given
// measured height must span: ceil((height + gap) / (rowHeight + gap)).
func RowSpan(heightPx int, m Metrics) int {
	unit := m.RowHeightPx + m.RowGapPx
	if unit <= 0 {
		return 1
	}
	span := (heightPx + m.RowGapPx + unit - 1) / unit
	if span < 1 {
		span = 1
	}
	return span
}

// Spannable is anything that can report a measured height and accept a
// row span. Measurement requires the card to be attached to its
// surface already; purely derived, so applying twice with no change in
// measurements produces the same spans.
type Spannable interface {
	MeasuredHeightPx() int
	SetRowSpan(span int)
}

// Apply recomputes and assigns the row span of every card. Idempotent
// and safe to re-run at any time.
func Apply[T Spannable](cards []T, m Metrics) {
	for _, c := range cards {
		c.SetRowSpan(RowSpan(c.MeasuredHeightPx(), m))
	}
}

// Debouncer coalesces bursts of triggers into a single callback using
// one shared timer.
type Debouncer struct {
	d  time.Duration
	fn func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a debouncer firing fn once d has elapsed since
// the last Trigger.
func NewDebouncer(d time.Duration, fn func()) *Debouncer {
	if d <= 0 {
		d = ResizeDebounce
	}
	return &Debouncer{d: d, fn: fn}
}

// Trigger schedules (or reschedules) the callback.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		d.timer = time.AfterFunc(d.d, d.fn)
		return
	}
	d.timer.Reset(d.d)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
