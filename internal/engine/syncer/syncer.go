// Package syncer owns the authoritative in-memory entry list and is
// the single place a full re-render is triggered from. Every change,
// local or pushed, goes through the same refetch-and-rebuild path: at
// the 100-entry cap a full refresh is cheap, and it removes the whole
// class of incremental-diff bugs.
package syncer

import (
	"context"
	"sync"

	"github.com/LouisaLyu/System-design-project-3/internal/engine/datasource"
	"github.com/LouisaLyu/System-design-project-3/internal/engine/feed"
	"github.com/LouisaLyu/System-design-project-3/internal/engine/layout"
	"github.com/LouisaLyu/System-design-project-3/internal/engine/render"
	"github.com/LouisaLyu/System-design-project-3/internal/models"
)

// State is the controller's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRendered
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Source is the slice of the store client the controller reads from.
type Source interface {
	List(ctx context.Context) ([]models.JournalEntry, error)
	Search(ctx context.Context, terms, userID string) ([]models.JournalEntry, error)
}

// Viewport is the injected rendering surface: it supplies layout
// metrics, measures attached cards, and tracks the scroll position
// that push-triggered refreshes must preserve.
type Viewport interface {
	Metrics() layout.Metrics
	MeasureHeight(c *render.Card) int
	ScrollOffset() int
	SetScrollOffset(offset int)
}

// Options select the render context: one engine serves both the
// everything view and the user-scoped view.
type Options struct {
	UserScoped bool
	UserID     string
}

// Controller holds the current snapshot. All methods are safe for
// concurrent use; in-flight fetches are never cancelled, and when two
// refreshes race the one resolving last wins.
type Controller struct {
	src      Source
	renderer *render.Renderer
	view     Viewport
	opts     Options

	repack *layout.Debouncer

	mu      sync.Mutex
	state   State
	errMsg  string
	entries []models.JournalEntry
	cards   []*render.Card
}

func New(src Source, renderer *render.Renderer, view Viewport, opts Options) *Controller {
	c := &Controller{
		src:      src,
		renderer: renderer,
		view:     view,
		opts:     opts,
		state:    StateIdle,
	}
	c.repack = layout.NewDebouncer(layout.ResizeDebounce, c.Repack)
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ErrorMessage returns the message behind StateError, if any.
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Cards returns the current rendered snapshot.
func (c *Controller) Cards() []*render.Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*render.Card, len(c.cards))
	copy(out, c.cards)
	return out
}

// Entry looks an entry up in the authoritative snapshot, e.g. when an
// edit control fires for an id.
func (c *Controller) Entry(id string) (models.JournalEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.JournalEntry{}, false
}

// Refresh pulls the authoritative list and rebuilds every card.
// Called on mount, after every confirmed mutation, and for every push
// notification.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	var entries []models.JournalEntry
	var err error
	if c.opts.UserScoped {
		entries, err = c.src.Search(ctx, "", c.opts.UserID)
	} else {
		entries, err = c.src.List(ctx)
	}
	if err != nil {
		c.mu.Lock()
		c.state = StateError
		c.errMsg = datasource.UserMessage(err)
		c.mu.Unlock()
		return err
	}

	cards := make([]*render.Card, 0, len(entries))
	for _, e := range entries {
		cards = append(cards, c.renderer.Card(e))
	}
	metrics := c.view.Metrics()
	for _, card := range cards {
		card.HeightPx = c.view.MeasureHeight(card)
	}
	layout.Apply(cards, metrics)

	c.mu.Lock()
	c.state = StateRendered
	c.errMsg = ""
	c.entries = entries
	c.cards = cards
	c.mu.Unlock()
	return nil
}

// RefreshPreservingScroll is the push-notification path: the viewport
// offset is captured before the rebuild and restored after it, so a
// remotely triggered refresh never visibly jumps the view.
func (c *Controller) RefreshPreservingScroll(ctx context.Context) error {
	offset := c.view.ScrollOffset()
	err := c.Refresh(ctx)
	c.view.SetScrollOffset(offset)
	return err
}

// Retry leaves StateError back through the normal loading path.
func (c *Controller) Retry(ctx context.Context) error {
	return c.Refresh(ctx)
}

// Repack re-measures every card and reassigns row spans without
// refetching. Published cards are never mutated in place: spans are
// rebuilt into fresh values and swapped in under the lock, so readers
// holding the previous snapshot stay consistent. Idempotent; running
// it twice with no layout change produces the same spans.
func (c *Controller) Repack() {
	c.mu.Lock()
	snapshot := make([]*render.Card, len(c.cards))
	copy(snapshot, c.cards)
	c.mu.Unlock()

	metrics := c.view.Metrics()
	repacked := make([]*render.Card, len(snapshot))
	for i, card := range snapshot {
		clone := *card
		clone.HeightPx = c.view.MeasureHeight(&clone)
		repacked[i] = &clone
	}
	layout.Apply(repacked, metrics)

	c.mu.Lock()
	defer c.mu.Unlock()
	// A refresh that completed while measuring already applied the
	// current metrics to its own cards; its snapshot wins.
	if len(c.cards) != len(snapshot) {
		return
	}
	for i := range snapshot {
		if c.cards[i] != snapshot[i] {
			return
		}
	}
	c.cards = repacked
}

// OnResize coalesces viewport resizes into one Repack per burst.
func (c *Controller) OnResize() {
	c.repack.Trigger()
}

// Consume applies push events until the channel closes or ctx ends.
// Filtering already happened in the feed; every event here means one
// scroll-preserving refresh.
func (c *Controller) Consume(ctx context.Context, events <-chan feed.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			// Errors already moved the state machine to StateError;
			// the next event or a manual retry recovers.
			_ = c.RefreshPreservingScroll(ctx)
		}
	}
}
