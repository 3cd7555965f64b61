package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/LouisaLyu/System-design-project-3/internal/config"
	"github.com/LouisaLyu/System-design-project-3/internal/database"
	"github.com/LouisaLyu/System-design-project-3/internal/handlers"
	"github.com/LouisaLyu/System-design-project-3/internal/middleware"
	"github.com/LouisaLyu/System-design-project-3/internal/routes"
	"github.com/LouisaLyu/System-design-project-3/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Connect to PostgreSQL (user accounts)
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis (sessions, rate limiting, change pub/sub)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (journal entries)
	log.Printf("Connecting to MongoDB...")
	if cfg.MongoURI != "" && strings.Contains(cfg.MongoURI, "@") {
		log.Printf("MongoDB URI: %s", maskURI(cfg.MongoURI))
	}
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge change events between instances
	services.StartRedisChangeSubscriber(ctx)

	// Server-side rendered board, live via the push channel
	views := handlers.NewBoardView(cfg.StoreBaseURL, wsURL(cfg.StoreBaseURL)+"/ws/journal")

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, views)

	// The board engine dials this instance's own push endpoint, so it
	// starts after the listener is up.
	go func() {
		views.Start(ctx)
	}()

	log.Printf("🚀 Journal backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// maskURI hides the password in a connection string before logging.
func maskURI(uri string) string {
	at := strings.Index(uri, "@")
	if at == -1 {
		return uri
	}
	head := uri[:at]
	if i := strings.LastIndex(head, ":"); i != -1 {
		return head[:i+1] + "***" + uri[at:]
	}
	return uri
}

// wsURL converts the store base URL to its WebSocket equivalent.
func wsURL(base string) string {
	if strings.HasPrefix(base, "https://") {
		return "wss://" + strings.TrimPrefix(base, "https://")
	}
	return "ws://" + strings.TrimPrefix(base, "http://")
}
