package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/LouisaLyu/System-design-project-3/internal/database"
	"github.com/LouisaLyu/System-design-project-3/internal/models"
	"github.com/LouisaLyu/System-design-project-3/internal/services"
	"github.com/LouisaLyu/System-design-project-3/pkg/utils"
)

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// extractBearerToken returns the token from an Authorization header.
func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireAuth validates the session and returns the authenticated
// user's ID. The token may come from the Authorization header or,
// for browser EventSource/WebSocket clients, a token query parameter.
func requireAuth(r *http.Request) (uuid.UUID, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return uuid.Nil, false
	}
	userID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		return uuid.Nil, false
	}
	return userID, true
}

// Signup registers a new account and signs it in.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 || len(req.Username) > 20 {
		writeError(w, http.StatusBadRequest, "Username must be 3-20 characters")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	var user models.User
	err = database.PostgresDB.QueryRow(`
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, created_at
	`, req.Username, hash).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			writeError(w, http.StatusConflict, "Username already taken")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	token, err := services.CreateSession(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Signin validates credentials and issues a session token.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var user models.User
	var passwordHash string
	var isActive bool
	err := database.PostgresDB.QueryRow(`
		SELECT id, username, created_at, password_hash, is_active
		FROM users
		WHERE LOWER(username) = LOWER($1)
	`, strings.TrimSpace(req.Username)).Scan(&user.ID, &user.Username, &user.CreatedAt, &passwordHash, &isActive)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	if !isActive {
		writeError(w, http.StatusUnauthorized, "Account is disabled")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := services.CreateSession(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Profile returns the authenticated subject; user-scoped views call
// it once per load to learn which userId to filter on.
func Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var username string
	err := database.PostgresDB.QueryRow(`
		SELECT username FROM users WHERE id = $1
	`, userID).Scan(&username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"sub":      userID.String(),
		"username": username,
	})
}
