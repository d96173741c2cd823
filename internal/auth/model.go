// File: internal/auth/model.go
package auth

import (
	"time"

	"estate_backend/internal/user"
)

// SigninRequest defines the structure for sign-in requests.
type SigninRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GoogleRequest carries the profile the client obtained from Google.
type GoogleRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Photo string `json:"photo"`
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *user.PublicUser
}
