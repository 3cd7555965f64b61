package engine

import (
	"log"
	"sync"

	"github.com/LouisaLyu/System-design-project-3/internal/engine/layout"
	"github.com/LouisaLyu/System-design-project-3/internal/engine/render"
)

// Default layout metrics for hosts without a real layout pass,
// matching the board page's grid styling.
const (
	DefaultRowHeightPx   = 40
	DefaultRowGapPx      = 10
	DefaultColumnWidthPx = 360
)

// HeadlessHost is an all-in-one viewport, dialog, confirmer and alert
// surface for server-side hosting: heights come from the deterministic
// estimator, scroll position is a plain offset, destructive actions
// are pre-confirmed (the browser already asked), and alerts go to the
// log while staying readable for the page to display.
type HeadlessHost struct {
	mu            sync.Mutex
	metrics       layout.Metrics
	columnWidthPx int
	scroll        int
	heading       string
	dialogOpen    bool
	lastAlert     string
}

func NewHeadlessHost() *HeadlessHost {
	return &HeadlessHost{
		metrics:       layout.Metrics{RowHeightPx: DefaultRowHeightPx, RowGapPx: DefaultRowGapPx},
		columnWidthPx: DefaultColumnWidthPx,
	}
}

func (h *HeadlessHost) Metrics() layout.Metrics {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.metrics
}

func (h *HeadlessHost) MeasureHeight(c *render.Card) int {
	h.mu.Lock()
	width := h.columnWidthPx
	h.mu.Unlock()
	return render.EstimateHeight(c.Entry, width)
}

// SetColumnWidth records a new column width, e.g. when a client
// reports a viewport resize. The caller follows up with Resize() on
// the engine.
func (h *HeadlessHost) SetColumnWidth(px int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if px > 0 {
		h.columnWidthPx = px
	}
}

func (h *HeadlessHost) ScrollOffset() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scroll
}

func (h *HeadlessHost) SetScrollOffset(offset int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scroll = offset
}

func (h *HeadlessHost) Show() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dialogOpen = true
}

func (h *HeadlessHost) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dialogOpen = false
}

func (h *HeadlessHost) SetHeading(heading string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.heading = heading
}

func (h *HeadlessHost) Confirm(prompt string) bool { return true }

func (h *HeadlessHost) Alert(message string) {
	log.Printf("alert: %s", message)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastAlert = message
}

func (h *HeadlessHost) Heading() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.heading
}

func (h *HeadlessHost) DialogOpen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dialogOpen
}

func (h *HeadlessHost) LastAlert() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastAlert
}
