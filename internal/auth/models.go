// internal/auth/models.go
// Data structures used by signup, login and token checks.

package auth

import (
	"time"
)

// User is an account. IDs are opaque strings assigned at signup.
type User struct {
	ID           string    `json:"id" db:"id" dynamodbav:"id"`
	Username     string    `json:"username" db:"username" dynamodbav:"username"`
	Email        string    `json:"email" db:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" db:"password_hash" dynamodbav:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" dynamodbav:"created_at"`
}

// SignupRequest is what the client sends to create an account
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// SigninRequest accepts either a username or an email as Login
type SigninRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is what we send back after successful authentication
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Identity is the authenticated caller, placed in the request context by
// Middleware.Authenticate.
type Identity struct {
	UserID   string
	Username string
	Email    string
}
