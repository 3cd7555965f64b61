// Package form manages the create/edit modal: a small state machine
// over two modes plus the "nothing being edited" sentinel, and the
// normalization of raw form input into the entry's typed shape.
package form

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/LouisaLyu/System-design-project-3/internal/models"
)

// Dialog headings, matching the original modal labels.
const (
	CreateHeading = "📝 New Journal Entry"
	EditHeading   = "📝 Edit Entry"
)

// Kind describes how a raw form field is coerced on submit.
type Kind int

const (
	KindText Kind = iota
	KindCheckbox
	KindNumber
	KindDate
	KindTags
)

// Field declares one form input.
type Field struct {
	Name string
	Kind Kind
}

// JournalFields is the journal entry form schema.
var JournalFields = []Field{
	{Name: "title", Kind: KindText},
	{Name: "body", Kind: KindText},
	{Name: "topic", Kind: KindText},
	{Name: "tags", Kind: KindTags},
	{Name: "moodColor", Kind: KindText},
	{Name: "entryDate", Kind: KindDate},
}

// Dialog is the injected modal surface.
type Dialog interface {
	Show()
	Close()
	SetHeading(heading string)
}

// Saver persists the normalized entry; create vs update is decided by
// the presence of an id.
type Saver interface {
	Save(ctx context.Context, e models.JournalEntry) (models.JournalEntry, error)
}

// Controller owns the modal lifecycle and the tracked edit target.
type Controller struct {
	dialog Dialog
	saver  Saver
	fields []Field

	mu        sync.Mutex
	editingID string
	values    map[string]string
	visible   bool
}

func NewController(dialog Dialog, saver Saver) *Controller {
	return &Controller{
		dialog: dialog,
		saver:  saver,
		fields: JournalFields,
		values: map[string]string{},
	}
}

// OpenCreate clears any tracked edit target, resets every field, sets
// the create heading and shows the modal.
func (c *Controller) OpenCreate() {
	c.mu.Lock()
	c.editingID = ""
	c.values = map[string]string{}
	c.visible = true
	c.mu.Unlock()

	c.dialog.SetHeading(CreateHeading)
	c.dialog.Show()
}

// OpenEdit records the entry as the edit target and populates the
// fields from it. Date fields receive only the YYYY-MM-DD portion of
// the ISO string so the picker never shifts a day.
func (c *Controller) OpenEdit(e models.JournalEntry) {
	values := map[string]string{
		"title":     e.Title,
		"body":      e.Body,
		"topic":     e.Topic,
		"tags":      joinTags(e.Tags),
		"moodColor": e.MoodColor,
		"entryDate": datePortion(e.EntryDate),
	}

	c.mu.Lock()
	c.editingID = e.ID
	c.values = values
	c.visible = true
	c.mu.Unlock()

	c.dialog.SetHeading(EditHeading)
	c.dialog.Show()
}

// Cancel closes the modal without persisting. The edit target is
// deliberately kept: closing is independent of the create/edit
// distinction, and OpenCreate clears it explicitly.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.visible = false
	c.mu.Unlock()
	c.dialog.Close()
}

// EditingID returns the tracked edit target, empty in create mode.
func (c *Controller) EditingID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editingID
}

// Visible reports whether the modal is currently shown.
func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Values returns a copy of the current field values, for hosts that
// render the form server-side.
func (c *Controller) Values() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Submit normalizes the raw fields, strips any id when no edit target
// is tracked, and hands the entry to the saver. On success the edit
// target is cleared, the form reset and the modal closed; the caller
// is expected to request a list refresh. On failure the modal stays
// open and the error is returned for the host to surface.
func (c *Controller) Submit(ctx context.Context, raw map[string]string) (models.JournalEntry, error) {
	c.mu.Lock()
	editingID := c.editingID
	c.mu.Unlock()

	entry := c.normalize(raw)
	entry.ID = editingID // empty in create mode: no id reaches the payload

	saved, err := c.saver.Save(ctx, entry)
	if err != nil {
		return models.JournalEntry{}, err
	}

	c.mu.Lock()
	c.editingID = ""
	c.values = map[string]string{}
	c.visible = false
	c.mu.Unlock()

	c.dialog.SetHeading(CreateHeading)
	c.dialog.Close()
	return saved, nil
}

// normalize coerces each raw string field per its declared kind into
// the entry's typed shape.
func (c *Controller) normalize(raw map[string]string) models.JournalEntry {
	e := models.JournalEntry{Tags: []string{}}
	for _, f := range c.fields {
		value := raw[f.Name]
		switch f.Kind {
		case KindTags:
			e.Tags = models.NormalizeTags(value)
		case KindDate:
			if iso := CoerceDate(value); iso != nil {
				setField(&e, f.Name, *iso)
			}
		case KindCheckbox, KindNumber:
			// The journal form has no checkbox or numeric inputs
			// today; coercion helpers exist for schemas that do.
		default:
			setField(&e, f.Name, value)
		}
	}
	return e
}

func setField(e *models.JournalEntry, name, value string) {
	switch name {
	case "title":
		e.Title = value
	case "body":
		e.Body = value
	case "topic":
		e.Topic = value
	case "moodColor":
		e.MoodColor = value
	case "entryDate":
		e.EntryDate = value
	}
}

// CoerceCheckbox maps a raw checkbox value to a boolean. Browsers send
// "on" for a checked box and omit the field otherwise.
func CoerceCheckbox(raw string) bool {
	switch raw {
	case "on", "true", "1":
		return true
	}
	return false
}

// CoerceNumber maps a number/range input to a numeric value, or nil
// when the field was left empty.
func CoerceNumber(raw string) *float64 {
	if isEmpty(raw) {
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &n
}

// CoerceDate maps a date input (YYYY-MM-DD) to a full ISO-8601
// string at UTC midnight, or nil when empty.
func CoerceDate(raw string) *string {
	if isEmpty(raw) {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	iso := t.UTC().Format(time.RFC3339)
	return &iso
}

func isEmpty(raw string) bool {
	return strings.TrimSpace(raw) == ""
}

func datePortion(iso string) string {
	if len(iso) >= 10 {
		return iso[:10]
	}
	return iso
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
