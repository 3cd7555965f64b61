package config

import (
	"os"
	"strings"
)

type Config struct {
	MongoURI       string
	PostgresURI    string
	RedisURI       string
	Port           string
	StoreBaseURL   string   // Base URL the hosted engine uses to reach the store API
	AllowedOrigins []string // CORS allow-list; defaults to the frontend dev origin
	Environment    string   // ENV: production, development, etc.
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	port := getEnv("PORT", "8080")

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	return &Config{
		MongoURI:       getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/journal")),
		PostgresURI:    getEnv("POSTGRES_URI", "postgres://localhost:5432/journal?sslmode=disable"),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:           port,
		StoreBaseURL:   getEnv("STORE_BASE_URL", "http://127.0.0.1:"+port),
		AllowedOrigins: allowedOrigins,
		Environment:    env,
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
