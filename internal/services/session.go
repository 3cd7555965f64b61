package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"github.com/LouisaLyu/System-design-project-3/internal/database"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// CreateSession creates a new session for a user and stores it in
// Redis. Any existing session for the user is invalidated first so the
// expiry timer restarts from the current login. Returns the token.
func CreateSession(userID uuid.UUID) (string, error) {
	InvalidateUserSessions(userID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	sessionToken := base64.URLEncoding.EncodeToString(tokenBytes)

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken
	userSessionKey := UserSessionKeyPrefix + userID.String()

	if err := database.RedisClient.Set(ctx, sessionKey, userID.String(), SessionDuration).Err(); err != nil {
		return "", err
	}
	if err := database.RedisClient.Set(ctx, userSessionKey, sessionToken, SessionDuration).Err(); err != nil {
		return "", err
	}

	return sessionToken, nil
}

// ValidateSession checks a session token and returns the user ID.
func ValidateSession(sessionToken string) (uuid.UUID, bool, error) {
	if sessionToken == "" {
		return uuid.Nil, false, nil
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken

	val, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err != nil {
		// Missing key means expired or never issued; not an error.
		return uuid.Nil, false, nil
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, err
	}

	return userID, true, nil
}

// InvalidateUserSessions removes any existing session for the user.
func InvalidateUserSessions(userID uuid.UUID) {
	ctx := context.Background()
	userSessionKey := UserSessionKeyPrefix + userID.String()

	token, err := database.RedisClient.Get(ctx, userSessionKey).Result()
	if err == nil && token != "" {
		database.RedisClient.Del(ctx, SessionKeyPrefix+token)
	}
	database.RedisClient.Del(ctx, userSessionKey)
}
