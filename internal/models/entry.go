package models

import (
	"strings"
	"time"
)

// JournalEntry is the wire shape of one journal record, using the JSON
// field names the store has always produced. ID stays empty until the
// store has persisted the entry, and omitempty guarantees a create
// payload never carries an "id" key.
type JournalEntry struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	Topic     string    `json:"topic,omitempty"`
	Tags      []string  `json:"tags"`
	MoodColor string    `json:"moodColor,omitempty"`
	EntryDate string    `json:"entryDate,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Persisted reports whether the store has assigned an identifier yet.
func (e JournalEntry) Persisted() bool {
	return e.ID != ""
}

// NormalizeTags converts a raw comma-separated tags field into a slice
// of trimmed, non-empty tokens. An empty input yields an empty slice,
// never nil, so tags always serialize as a JSON array.
func NormalizeTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// EnsureTags replaces a nil tag slice with an empty one.
func EnsureTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
