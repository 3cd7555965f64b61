package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LouisaLyu/System-design-project-3/internal/engine/datasource"
	"github.com/LouisaLyu/System-design-project-3/internal/engine/syncer"
	"github.com/LouisaLyu/System-design-project-3/internal/models"
)

// storeStub is an in-memory journal store speaking the real store's
// HTTP surface, enough to run the whole engine loop against.
type storeStub struct {
	mu        sync.Mutex
	entries   []models.JournalEntry
	nextID    int
	listCalls atomic.Int32

	// forceError, when set, is returned for every write.
	forceError *struct {
		status  int
		message string
	}
}

func (s *storeStub) router() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/data", s.list)
	r.Post("/data", s.create)
	r.Get("/search", s.search)
	r.Put("/data/{id}", s.update)
	r.Delete("/data/{id}", s.remove)
	return r
}

func (s *storeStub) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *storeStub) rejectWrites(w http.ResponseWriter) bool {
	s.mu.Lock()
	fe := s.forceError
	s.mu.Unlock()
	if fe == nil {
		return false
	}
	s.writeJSON(w, fe.status, map[string]string{"error": fe.message})
	return true
}

func (s *storeStub) list(w http.ResponseWriter, r *http.Request) {
	s.listCalls.Add(1)
	s.mu.Lock()
	out := append([]models.JournalEntry(nil), s.entries...)
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, out)
}

func (s *storeStub) search(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	s.mu.Lock()
	out := []models.JournalEntry{}
	for _, e := range s.entries {
		if userID == "" || e.UserID == userID {
			out = append(out, e)
		}
	}
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, out)
}

func (s *storeStub) create(w http.ResponseWriter, r *http.Request) {
	if s.rejectWrites(w) {
		return
	}
	var e models.JournalEntry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	s.mu.Lock()
	s.nextID++
	e.ID = fmt.Sprintf("e%d", s.nextID)
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	s.writeJSON(w, http.StatusCreated, e)
}

func (s *storeStub) update(w http.ResponseWriter, r *http.Request) {
	if s.rejectWrites(w) {
		return
	}
	id := chi.URLParam(r, "id")
	var in models.JournalEntry
	json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID == id {
			in.ID = id
			s.entries[i] = in
			s.writeJSON(w, http.StatusOK, in)
			return
		}
	}
	s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Entry not found"})
}

func (s *storeStub) remove(w http.ResponseWriter, r *http.Request) {
	if s.rejectWrites(w) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.writeJSON(w, http.StatusOK, e)
			return
		}
	}
	s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Entry not found"})
}

type recordingConfirmer struct {
	answer  bool
	prompts []string
}

func (c *recordingConfirmer) Confirm(prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

func newTestEngine(t *testing.T, stub *storeStub, pushURL string) (*Engine, *HeadlessHost, *recordingConfirmer) {
	t.Helper()
	srv := httptest.NewServer(stub.router())
	t.Cleanup(srv.Close)

	host := NewHeadlessHost()
	confirm := &recordingConfirmer{answer: true}
	eng := New(Config{
		Store:    datasource.New(srv.URL, ""),
		Viewport: host,
		Dialog:   host,
		Confirm:  confirm,
		Alert:    host,
		PushURL:  pushURL,
	})
	return eng, host, confirm
}

func TestStartRendersTheBoard(t *testing.T) {
	stub := &storeStub{entries: []models.JournalEntry{
		{ID: "e1", Title: "First", Body: "hello", Tags: []string{}, MoodColor: "#ffeecc"},
		{ID: "e2", Body: "no title", Tags: []string{}},
	}}
	eng, _, _ := newTestEngine(t, stub, "")

	require.NoError(t, eng.Start(context.Background()))
	assert.Equal(t, syncer.StateRendered, eng.Sync().State())

	html := string(eng.GridHTML())
	assert.Contains(t, html, `data-id="e1"`)
	assert.Contains(t, html, "background:#ffeecc;")
	assert.Contains(t, html, "dark-foreground")
	assert.Contains(t, html, "grid-row-end:span ")
	assert.Contains(t, html, "<h3>Untitled</h3>")
}

func TestGridHTMLEmptyState(t *testing.T) {
	eng, _, _ := newTestEngine(t, &storeStub{}, "")
	require.NoError(t, eng.Start(context.Background()))
	assert.Equal(t, "<p><i>No data found in the database.</i></p>", string(eng.GridHTML()))
}

func TestSubmitCreateRefreshes(t *testing.T) {
	stub := &storeStub{}
	eng, host, _ := newTestEngine(t, stub, "")
	require.NoError(t, eng.Start(context.Background()))

	eng.OpenCreate()
	assert.True(t, host.DialogOpen())

	err := eng.Submit(context.Background(), map[string]string{
		"title": "A day",
		"body":  "went well",
		"tags":  "one, two",
	})
	require.NoError(t, err)

	assert.False(t, host.DialogOpen())
	cards := eng.Sync().Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, "A day", cards[0].Entry.Title)
	assert.Equal(t, []string{"one", "two"}, cards[0].Entry.Tags)
}

func TestEditSubmitUpdatesEntry(t *testing.T) {
	stub := &storeStub{entries: []models.JournalEntry{
		{ID: "e1", Title: "Old", Body: "old body", Tags: []string{}},
	}, nextID: 1}
	eng, host, _ := newTestEngine(t, stub, "")
	require.NoError(t, eng.Start(context.Background()))

	require.NoError(t, eng.Edit("e1"))
	assert.Equal(t, "e1", eng.Form().EditingID())
	assert.Equal(t, "Old", eng.Form().Values()["title"])

	raw := eng.Form().Values()
	raw["title"] = "New"
	require.NoError(t, eng.Submit(context.Background(), raw))

	entry, ok := eng.Sync().Entry("e1")
	require.True(t, ok)
	assert.Equal(t, "New", entry.Title)
	assert.False(t, host.DialogOpen())
}

func TestEditUnknownEntry(t *testing.T) {
	eng, _, _ := newTestEngine(t, &storeStub{}, "")
	require.NoError(t, eng.Start(context.Background()))
	assert.Error(t, eng.Edit("nope"))
}

func TestSubmitFailureShowsVerbatimMessageAndKeepsModal(t *testing.T) {
	stub := &storeStub{entries: []models.JournalEntry{
		{ID: "e1", Body: "b", Tags: []string{}},
	}, nextID: 1}
	stub.forceError = &struct {
		status  int
		message string
	}{http.StatusForbidden, "You can only edit your own entries"}

	eng, host, _ := newTestEngine(t, stub, "")
	require.NoError(t, eng.Start(context.Background()))

	require.NoError(t, eng.Edit("e1"))
	err := eng.Submit(context.Background(), map[string]string{"body": "hijack"})
	require.Error(t, err)

	assert.Equal(t, "You can only edit your own entries", host.LastAlert())
	assert.True(t, host.DialogOpen())
	assert.Equal(t, "e1", eng.Form().EditingID())
}

func TestDeleteRespectsConfirmation(t *testing.T) {
	stub := &storeStub{entries: []models.JournalEntry{
		{ID: "e1", Body: "b", Tags: []string{}},
	}, nextID: 1}
	eng, _, confirm := newTestEngine(t, stub, "")
	require.NoError(t, eng.Start(context.Background()))

	// Declined: nothing happens, the entry stays.
	confirm.answer = false
	require.NoError(t, eng.Delete(context.Background(), "e1"))
	require.Equal(t, []string{DeletePrompt}, confirm.prompts)
	assert.Len(t, eng.Sync().Cards(), 1)

	// Confirmed: removed and refreshed.
	confirm.answer = true
	require.NoError(t, eng.Delete(context.Background(), "e1"))
	assert.Empty(t, eng.Sync().Cards())
}

func TestDeleteFailureAlerts(t *testing.T) {
	stub := &storeStub{entries: []models.JournalEntry{
		{ID: "e1", Body: "b", Tags: []string{}},
	}, nextID: 1}
	stub.forceError = &struct {
		status  int
		message string
	}{http.StatusForbidden, "You can only delete your own entries"}

	eng, host, _ := newTestEngine(t, stub, "")
	require.NoError(t, eng.Start(context.Background()))

	require.Error(t, eng.Delete(context.Background(), "e1"))
	assert.Equal(t, "You can only delete your own entries", host.LastAlert())
	// No optimistic removal.
	assert.Len(t, eng.Sync().Cards(), 1)
}

func TestPushRefreshPreservesScroll(t *testing.T) {
	stub := &storeStub{entries: []models.JournalEntry{
		{ID: "e1", Body: "b", Tags: []string{}},
	}, nextID: 1}

	// Push endpoint: once released, one foreign message followed by one
	// journal change.
	release := make(chan struct{})
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	push := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		<-release
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"presence","action":"join"}`))
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"journal-change","action":"create","entryId":"e9"}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer push.Close()

	eng, host, _ := newTestEngine(t, stub, "ws"+strings.TrimPrefix(push.URL, "http"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, eng.Start(ctx))
	require.Equal(t, int32(1), stub.listCalls.Load())

	host.SetScrollOffset(360)
	close(release)

	// Exactly one extra refresh: the foreign message is filtered out.
	require.Eventually(t, func() bool {
		return stub.listCalls.Load() == 2
	}, 3*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(2), stub.listCalls.Load())
	assert.Equal(t, 360, host.ScrollOffset())
	assert.Equal(t, syncer.StateRendered, eng.Sync().State())
}

func TestResizeDebouncesRepack(t *testing.T) {
	stub := &storeStub{entries: []models.JournalEntry{
		{ID: "e1", Body: strings.Repeat("x", 400), Tags: []string{}},
	}, nextID: 1}
	eng, host, _ := newTestEngine(t, stub, "")
	require.NoError(t, eng.Start(context.Background()))

	before := eng.Sync().Cards()[0].RowSpan
	require.Greater(t, before, 1)

	// A narrower column wraps the body to more lines, so the span grows
	// after the debounced repack runs.
	host.SetColumnWidth(200)
	for i := 0; i < 5; i++ {
		eng.Resize()
	}

	require.Eventually(t, func() bool {
		return eng.Sync().Cards()[0].RowSpan > before
	}, 2*time.Second, 20*time.Millisecond)
}
