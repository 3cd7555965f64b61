package render

import "github.com/LouisaLyu/System-design-project-3/internal/models"

// Pixel constants the estimator assumes, mirroring the card styling.
const (
	estCardPadding  = 32
	estHeadingPx    = 34
	estTopicPx      = 22
	estTagsPx       = 26
	estActionsPx    = 40
	estBodyLinePx   = 22
	estCalendarPx   = 90
	estCharWidthPx  = 8
	estBodyGutterPx = 40
)

// EstimateHeight approximates the attached height of a card for hosts
// that have no real layout pass (server-side rendering). It is
// deterministic, so repacking with unchanged content yields unchanged
// spans.
func EstimateHeight(e models.JournalEntry, columnWidthPx int) int {
	if columnWidthPx <= estBodyGutterPx+estCharWidthPx {
		columnWidthPx = 320
	}

	h := estCardPadding + estHeadingPx + estActionsPx
	if e.Topic != "" {
		h += estTopicPx
	}
	if len(e.Tags) > 0 {
		h += estTagsPx
	}

	charsPerLine := (columnWidthPx - estBodyGutterPx) / estCharWidthPx
	lines := (len(e.Body) + charsPerLine - 1) / charsPerLine
	if lines < 1 {
		lines = 1
	}
	body := lines * estBodyLinePx
	if e.EntryDate != "" && body < estCalendarPx {
		// The calendar badge sits beside the excerpt and sets the
		// minimum height of that row.
		body = estCalendarPx
	}

	return h + body
}
