// Package engine is the live card rendering and synchronization
// engine: one parameterized implementation serving both the board view
// and the user-scoped view. Every collaborator (store client,
// viewport, dialog, confirmation prompt, alert surface) is injected,
// never resolved from ambient lookups, so hosts decide where the
// engine renders and the two call sites cannot drift apart.
package engine

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/LouisaLyu/System-design-project-3/internal/engine/datasource"
	"github.com/LouisaLyu/System-design-project-3/internal/engine/feed"
	"github.com/LouisaLyu/System-design-project-3/internal/engine/form"
	"github.com/LouisaLyu/System-design-project-3/internal/engine/render"
	"github.com/LouisaLyu/System-design-project-3/internal/engine/syncer"
)

// Confirmer asks the user to confirm a destructive action. Deletion
// only proceeds on an explicit yes.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Alerter shows a blocking user-facing message for failed writes.
type Alerter interface {
	Alert(message string)
}

// DeletePrompt is the confirmation question for the delete control.
const DeletePrompt = "Are you sure you want to delete this entry?"

// Config wires one engine instance for one render context.
type Config struct {
	Store    *datasource.Client
	Renderer *render.Renderer
	Viewport syncer.Viewport
	Dialog   form.Dialog
	Confirm  Confirmer
	Alert    Alerter

	// PushURL, when set, subscribes the engine to the store's live
	// notification channel.
	PushURL string

	// UserScoped restricts the list to UserID via the search endpoint.
	UserScoped bool
	UserID     string
}

// Engine composes the sync controller, the form controller and the
// push feed over one store client.
type Engine struct {
	store   *datasource.Client
	sync    *syncer.Controller
	form    *form.Controller
	feed    *feed.Listener
	confirm Confirmer
	alert   Alerter
}

func New(cfg Config) *Engine {
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = render.NewRenderer()
	}

	e := &Engine{
		store:   cfg.Store,
		confirm: cfg.Confirm,
		alert:   cfg.Alert,
	}
	e.sync = syncer.New(cfg.Store, renderer, cfg.Viewport, syncer.Options{
		UserScoped: cfg.UserScoped,
		UserID:     cfg.UserID,
	})
	e.form = form.NewController(cfg.Dialog, cfg.Store)
	if cfg.PushURL != "" {
		e.feed = feed.New(cfg.PushURL)
	}
	return e
}

// Start performs the initial load and, when a push URL is configured,
// begins consuming change notifications until ctx is cancelled. The
// initial fetch error is returned but the feed still runs, so a store
// that comes back later repairs the view on its next change.
func (e *Engine) Start(ctx context.Context) error {
	err := e.sync.Refresh(ctx)
	if e.feed != nil {
		go e.sync.Consume(ctx, e.feed.Listen(ctx))
	}
	return err
}

// Sync exposes the sync controller (state, snapshot, retry).
func (e *Engine) Sync() *syncer.Controller { return e.sync }

// Form exposes the form controller (modal state, prefill values).
func (e *Engine) Form() *form.Controller { return e.form }

// OpenCreate opens the modal in create mode.
func (e *Engine) OpenCreate() { e.form.OpenCreate() }

// Edit opens the modal in edit mode for an entry from the current
// snapshot.
func (e *Engine) Edit(id string) error {
	entry, ok := e.sync.Entry(id)
	if !ok {
		return fmt.Errorf("no entry %q in the current list", id)
	}
	e.form.OpenEdit(entry)
	return nil
}

// Submit runs the form submission: normalize, save, then the full
// refresh. Write failures surface as a blocking alert and the
// operation is abandoned; there is no retry and no queued replay.
func (e *Engine) Submit(ctx context.Context, raw map[string]string) error {
	if _, err := e.form.Submit(ctx, raw); err != nil {
		e.alert.Alert(datasource.UserMessage(err))
		return err
	}
	return e.sync.Refresh(ctx)
}

// Cancel closes the modal without persisting.
func (e *Engine) Cancel() { e.form.Cancel() }

// Delete asks for confirmation, then removes the entry and refreshes.
// The entry stays visible until the store acknowledges the delete;
// there is no optimistic removal.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if !e.confirm.Confirm(DeletePrompt) {
		return nil
	}
	if _, err := e.store.Remove(ctx, id); err != nil {
		// Ownership rejections carry their own message; show it as-is.
		e.alert.Alert(datasource.UserMessage(err))
		return err
	}
	return e.sync.Refresh(ctx)
}

// Resize notes a viewport resize; span recomputation is debounced so
// rapid events collapse into one repack.
func (e *Engine) Resize() { e.sync.OnResize() }

// Retry re-enters the loading path from the error state.
func (e *Engine) Retry(ctx context.Context) error { return e.sync.Retry(ctx) }

var gridItemTmpl = template.Must(template.New("grid-item").Parse(
	`<div class="item-card{{if .DarkForeground}} dark-foreground{{end}}" data-id="{{.Entry.ID}}"` +
		`{{if .Style}} style="{{.Style}}"{{end}}>{{.Fragment}}</div>`))

type gridItem struct {
	*render.Card
	Style template.CSS
}

// GridHTML renders the current snapshot as the grid container's inner
// HTML: each card wrapped with its background and computed row span.
func (e *Engine) GridHTML() template.HTML {
	cards := e.sync.Cards()
	if len(cards) == 0 {
		return template.HTML("<p><i>No data found in the database.</i></p>")
	}

	var b strings.Builder
	for _, card := range cards {
		style := ""
		if card.Background != "" {
			style = "background:" + card.Background + ";"
		}
		if card.RowSpan > 0 {
			style += fmt.Sprintf("grid-row-end:span %d;", card.RowSpan)
		}
		if err := gridItemTmpl.Execute(&b, gridItem{Card: card, Style: template.CSS(style)}); err != nil {
			continue
		}
		b.WriteString("\n")
	}
	return template.HTML(b.String())
}
