package user

import (
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
}

// Public strips everything a session or response must not carry.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

type RegisterRequest struct {
	Name            string `json:"name" binding:"max=255"`
	Email           string `json:"email" binding:"max=255"`
	Password        string `json:"password" binding:"max=72"`
	PasswordConfirm string `json:"passwordConfirm" binding:"max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// NormalizeEmail is the canonical form emails are stored and looked up with.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
