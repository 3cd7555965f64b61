package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a journal author's account. Only public profile data lives
// on this struct; the password hash stays in the users table.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
