package handlers

import (
	"context"
	"html/template"
	"log"
	"net/http"

	"github.com/LouisaLyu/System-design-project-3/internal/engine"
	"github.com/LouisaLyu/System-design-project-3/internal/engine/datasource"
	"github.com/LouisaLyu/System-design-project-3/internal/engine/syncer"
)

// BoardView hosts the rendering engine server-side: one shared,
// push-subscribed engine for the public board page and a short-lived
// scoped engine per profile page request. Mutations still go through
// the store API with the caller's own token, exactly as the engine's
// data source does.
type BoardView struct {
	storeBaseURL string
	eng          *engine.Engine
	host         *engine.HeadlessHost
}

// NewBoardView wires the shared board engine against the store at
// storeBaseURL, subscribed to the push channel at pushURL.
func NewBoardView(storeBaseURL, pushURL string) *BoardView {
	host := engine.NewHeadlessHost()
	eng := engine.New(engine.Config{
		Store:    datasource.New(storeBaseURL, ""),
		Viewport: host,
		Dialog:   host,
		Confirm:  host,
		Alert:    host,
		PushURL:  pushURL,
	})
	return &BoardView{storeBaseURL: storeBaseURL, eng: eng, host: host}
}

// Start runs the initial load and the push subscription.
func (v *BoardView) Start(ctx context.Context) {
	if err := v.eng.Start(ctx); err != nil {
		// The page shows the not-ready indicator; the push feed or a
		// later request retries.
		log.Printf("board engine initial load failed: %v", err)
	}
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
#contentArea { display: grid; grid-template-columns: repeat(auto-fill, minmax(320px, 1fr)); grid-auto-rows: 40px; gap: 10px; }
.item-card { margin: 10px 20px; width: 100%; word-break: break-word; color: #fff; }
.item-card.dark-foreground { color: #222; }
.status-error { color: #b00020; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Error}}
<div id="notReadyStatus" class="status-error">The database is not ready: {{.Error}}</div>
{{else if .Loading}}
<div id="loadingStatus">Loading…</div>
{{else}}
<div id="readyStatus">Connected</div>
<div id="contentArea">
{{.Grid}}
</div>
{{end}}
</body>
</html>
`))

type pageData struct {
	Title   string
	Loading bool
	Error   string
	Grid    template.HTML
}

func (v *BoardView) renderPage(w http.ResponseWriter, title string, eng *engine.Engine) {
	data := pageData{Title: title}
	switch eng.Sync().State() {
	case syncer.StateIdle, syncer.StateLoading:
		data.Loading = true
	case syncer.StateError:
		data.Error = eng.Sync().ErrorMessage()
	default:
		data.Grid = eng.GridHTML()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		log.Printf("page render failed: %v", err)
	}
}

// BoardPage serves the shared live board. A board stuck in the error
// state retries on each page load.
func (v *BoardView) BoardPage(w http.ResponseWriter, r *http.Request) {
	if v.eng.Sync().State() == syncer.StateError {
		_ = v.eng.Retry(r.Context())
	}
	v.renderPage(w, "Journal", v.eng)
}

// ProfilePage serves the authenticated user's own entries. The engine
// is built per request with the caller's token: identity lookup first,
// then a user-scoped refresh.
func (v *BoardView) ProfilePage(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	store := datasource.New(v.storeBaseURL, token)
	subject, err := store.Profile(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, datasource.UserMessage(err))
		return
	}

	host := engine.NewHeadlessHost()
	eng := engine.New(engine.Config{
		Store:      store,
		Viewport:   host,
		Dialog:     host,
		Confirm:    host,
		Alert:      host,
		UserScoped: true,
		UserID:     subject.Sub,
	})
	_ = eng.Start(r.Context())

	v.renderPage(w, "Your Entries", eng)
}
