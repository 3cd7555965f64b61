package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/LouisaLyu/System-design-project-3/internal/handlers"
)

// SetupRoutes registers the store API, the push channel and the
// server-rendered views.
func SetupRoutes(r *chi.Mux, views *handlers.BoardView) {
	// Auth
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Get("/profile", handlers.Profile)

	// Journal entry store
	r.Get("/data", handlers.ListEntries)
	r.Post("/data", handlers.CreateEntry)
	r.Get("/search", handlers.SearchEntries)
	r.Put("/data/{id}", handlers.UpdateEntry)
	r.Delete("/data/{id}", handlers.DeleteEntry)

	// Push channel: SSE for browsers, WebSocket for engine clients
	r.Get("/events", handlers.Events)
	r.Get("/ws/journal", handlers.JournalWebSocket)

	// Server-rendered views
	r.Get("/", views.BoardPage)
	r.Get("/userprofile", views.ProfilePage)
}
