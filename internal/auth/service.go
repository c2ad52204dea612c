// internal/auth/service.go
// Signup, signin and token validation.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/imadgeboyega/roomie-backend/internal/common/utils"
)

// Common errors
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserExists            = errors.New("user already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidToken          = errors.New("invalid token")
)

// Service interface
type Service interface {
	Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error)
	Signin(ctx context.Context, req *SigninRequest) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
}

// Config holds service configuration
type Config struct {
	JWTSecret         string
	AccessTokenExpiry time.Duration
	BCryptCost        int
	Issuer            string
}

type service struct {
	store  UserStore
	config *Config
	now    func() time.Time
}

// NewService creates the auth service
func NewService(store UserStore, config *Config) Service {
	return &service{store: store, config: config, now: time.Now}
}

func (s *service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 1. Reject taken username / email
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	// 2. Hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// 3. Create user
	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueToken(user)
}

func (s *service) Signin(ctx context.Context, req *SigninRequest) (*AuthResponse, error) {
	login := strings.ToLower(strings.TrimSpace(req.Login))

	var (
		user *User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.store.GetUserByEmail(ctx, login)
	} else {
		user, err = s.store.GetUserByUsername(ctx, login)
	}
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateJWT(token, s.config.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return s.store.GetUserByID(ctx, userID)
}

func (s *service) issueToken(user *User) (*AuthResponse, error) {
	now := s.now()
	expiry := now.Add(s.config.AccessTokenExpiry)

	token, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Type:      utils.TokenTypeAccess,
		ExpiresAt: expiry.Unix(),
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		Issuer:    s.config.Issuer,
		Subject:   user.ID,
	}, s.config.JWTSecret)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int(s.config.AccessTokenExpiry.Seconds()),
		TokenType:   "Bearer",
	}, nil
}
