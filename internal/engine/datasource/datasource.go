// Package datasource is the engine's client for the remote journal
// store: list, search, save and remove, plus the identity lookup used
// by user-scoped views. Every operation is a network call that may
// fail; failures are surfaced, never retried.
package datasource

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/LouisaLyu/System-design-project-3/internal/models"
)

// Subject is the authenticated identity the store reports.
type Subject struct {
	Sub      string `json:"sub"`
	Username string `json:"username"`
}

// Client talks to one store instance. Safe for concurrent use.
type Client struct {
	http *resty.Client
}

// New builds a client for the store at baseURL. token is optional; the
// store only requires it on writes and on the identity lookup.
func New(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

// List fetches up to 100 entries, unfiltered, default ordering.
func (c *Client) List(ctx context.Context) ([]models.JournalEntry, error) {
	var out []models.JournalEntry
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/data")
	if err != nil {
		return nil, &TransportError{Op: "list entries", Err: err}
	}
	if resp.IsError() {
		return nil, storeError(resp)
	}
	return normalized(out), nil
}

// Search fetches entries matching the given terms and/or scoped to one
// user, newest first. Both parameters are optional.
func (c *Client) Search(ctx context.Context, terms, userID string) ([]models.JournalEntry, error) {
	req := c.http.R().SetContext(ctx)
	if terms != "" {
		req.SetQueryParam("terms", terms)
	}
	if userID != "" {
		req.SetQueryParam("userId", userID)
	}

	var out []models.JournalEntry
	resp, err := req.SetResult(&out).Get("/search")
	if err != nil {
		return nil, &TransportError{Op: "search entries", Err: err}
	}
	if resp.IsError() {
		return nil, storeError(resp)
	}
	return normalized(out), nil
}

// Save persists an entry. The presence of an id alone decides between
// update-in-place and create; a create payload never carries an "id"
// key.
func (c *Client) Save(ctx context.Context, e models.JournalEntry) (models.JournalEntry, error) {
	var saved models.JournalEntry
	req := c.http.R().
		SetContext(ctx).
		SetBody(savePayload(e)).
		SetResult(&saved)

	var resp *resty.Response
	var err error
	if e.Persisted() {
		resp, err = req.SetPathParam("id", e.ID).Put("/data/{id}")
	} else {
		resp, err = req.Post("/data")
	}
	if err != nil {
		return models.JournalEntry{}, &TransportError{Op: "save entry", Err: err}
	}
	if resp.IsError() {
		return models.JournalEntry{}, storeError(resp)
	}
	return saved, nil
}

// Remove deletes an entry by identifier and returns the deleted
// record as confirmed by the store.
func (c *Client) Remove(ctx context.Context, id string) (models.JournalEntry, error) {
	var deleted models.JournalEntry
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&deleted).
		SetPathParam("id", id).
		Delete("/data/{id}")
	if err != nil {
		return models.JournalEntry{}, &TransportError{Op: "delete entry", Err: err}
	}
	if resp.IsError() {
		return models.JournalEntry{}, storeError(resp)
	}
	return deleted, nil
}

// Profile returns the authenticated subject. User-scoped views call
// it once per load to parameterize the userId filter.
func (c *Client) Profile(ctx context.Context) (Subject, error) {
	var sub Subject
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&sub).
		Get("/profile")
	if err != nil {
		return Subject{}, &TransportError{Op: "fetch profile", Err: err}
	}
	if resp.IsError() {
		return Subject{}, storeError(resp)
	}
	return sub, nil
}

// savePayload builds the JSON body for a save. Built as a map so the
// id can never leak into a create body, and userId is never
// client-writable.
func savePayload(e models.JournalEntry) map[string]any {
	p := map[string]any{
		"body": e.Body,
		"tags": models.EnsureTags(e.Tags),
	}
	if e.Title != "" {
		p["title"] = e.Title
	}
	if e.Topic != "" {
		p["topic"] = e.Topic
	}
	if e.MoodColor != "" {
		p["moodColor"] = e.MoodColor
	}
	if e.EntryDate != "" {
		p["entryDate"] = e.EntryDate
	}
	return p
}

// storeError maps a non-2xx response to a StoreError, preferring the
// structured {"error": ...} body over the status text.
func storeError(resp *resty.Response) error {
	msg := http.StatusText(resp.StatusCode())
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &StoreError{Status: resp.StatusCode(), Message: msg}
}

func normalized(entries []models.JournalEntry) []models.JournalEntry {
	for i := range entries {
		entries[i].Tags = models.EnsureTags(entries[i].Tags)
	}
	return entries
}
