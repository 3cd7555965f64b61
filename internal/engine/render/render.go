// Package render builds the HTML fragment for one journal entry card.
// All user-authored text passes through a sanitizer before it is
// inserted into markup; body text is free text and must never reach
// the page unsanitized.
package render

import (
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/LouisaLyu/System-design-project-3/internal/engine/contrast"
	"github.com/LouisaLyu/System-design-project-3/internal/models"
)

// UntitledPlaceholder is shown when an entry has no title.
const UntitledPlaceholder = "Untitled"

// Card is one rendered entry: the sanitized fragment plus the derived
// styling the grid container needs.
type Card struct {
	Entry          models.JournalEntry
	Fragment       template.HTML
	Background     string // raw moodColor, empty when none
	DarkForeground bool

	HeightPx int // measured by the hosting viewport after attach
	RowSpan  int
}

// MeasuredHeightPx returns the last measured card height.
func (c *Card) MeasuredHeightPx() int { return c.HeightPx }

// SetRowSpan records the computed grid row span.
func (c *Card) SetRowSpan(span int) { c.RowSpan = span }

var cardTmpl = template.Must(template.New("card").Parse(`<div class="item-heading">
    <h3>{{.Title}}</h3>
</div>
<div class="item-subinfo">
    {{if .Topic}}<div class="topic">Topic: {{.Topic}}</div>{{end}}
    {{if .Tags}}<div class="tags">Tags: {{range .Tags}}<span class="tag">{{.}}</span> {{end}}</div>{{end}}
</div>
<div class="item-info">
    <div class="excerpt">
        <p>{{.Body}}</p>
    </div>
    {{if .HasDate}}<div class="calendar">
        <div class="month">{{.Month}}</div>
        <div class="day">{{.Day}}</div>
        <div class="year">{{.Year}}</div>
    </div>{{end}}
</div>
<div class="item-actions">
    <button class="edit-btn" data-id="{{.ID}}">Edit</button>
    <button class="delete-btn" data-id="{{.ID}}">Delete</button>
</div>`))

type cardData struct {
	ID    string
	Title template.HTML
	Topic template.HTML
	Tags  []template.HTML
	Body  template.HTML

	HasDate bool
	Month   string
	Day     string
	Year    string
}

// Renderer turns entries into cards. The zero value is not usable;
// construct with NewRenderer so the sanitizer policy is in place.
type Renderer struct {
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	// Strict policy: entry fields are plain text, so every tag is
	// stripped and the remaining text is entity-escaped.
	return &Renderer{policy: bluemonday.StrictPolicy()}
}

// safe sanitizes one user-authored field. The result is already
// escaped by the policy, so the template must not escape it again.
func (r *Renderer) safe(s string) template.HTML {
	return template.HTML(r.policy.Sanitize(s))
}

// Card renders one entry. The returned card still has no height or
// row span; the hosting viewport measures it after attach.
func (r *Renderer) Card(e models.JournalEntry) *Card {
	title := e.Title
	if strings.TrimSpace(title) == "" {
		title = UntitledPlaceholder
	}

	data := cardData{
		ID:    e.ID,
		Title: r.safe(title),
		Topic: r.safe(e.Topic),
		Body:  r.safe(e.Body),
	}
	for _, t := range e.Tags {
		data.Tags = append(data.Tags, r.safe(t))
	}
	if month, day, year, ok := calendarParts(e.EntryDate); ok {
		data.HasDate = true
		data.Month, data.Day, data.Year = month, day, year
	}

	var b strings.Builder
	if err := cardTmpl.Execute(&b, data); err != nil {
		// The template only touches pre-sanitized values; execution
		// cannot fail on user input. Fall back to an empty card.
		return &Card{Entry: e}
	}

	// An unparsable mood color means default styling, and it also
	// keeps non-hex input out of the style attribute.
	background := ""
	if contrast.HexToRGB(e.MoodColor) != nil {
		background = e.MoodColor
	}

	return &Card{
		Entry:          e,
		Fragment:       template.HTML(b.String()),
		Background:     background,
		DarkForeground: contrast.DarkForegroundForHex(e.MoodColor),
	}
}

// calendarParts formats the calendar badge from an ISO entry date.
// Everything renders in UTC so the badge never shifts a day across
// timezones.
func calendarParts(entryDate string) (month, day, year string, ok bool) {
	if entryDate == "" {
		return "", "", "", false
	}
	t, err := time.Parse(time.RFC3339, entryDate)
	if err != nil {
		t, err = time.Parse("2006-01-02", entryDate)
		if err != nil {
			return "", "", "", false
		}
	}
	t = t.UTC()
	return t.Format("Jan"), t.Format("02"), t.Format("2006"), true
}
