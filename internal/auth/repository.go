// internal/auth/repository.go
// User persistence. The Postgres implementation lives here; the other
// backends implement UserStore next to their roommate storage.

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// UserStore is the persistence the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// postgresRepository implements UserStore using PostgreSQL
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL user store
func NewPostgresRepository(db *sqlx.DB) UserStore {
	return &postgresRepository{db: db}
}

// CreateUser inserts a new user. Unique violations map to ErrUserExists.
func (r *postgresRepository) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	return r.getUser(ctx, "id", id)
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.getUser(ctx, "email", email)
}

func (r *postgresRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.getUser(ctx, "username", username)
}

// getUser looks a user up by one of the fixed unique columns.
func (r *postgresRepository) getUser(ctx context.Context, column, value string) (*User, error) {
	var user User
	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE ` + column + ` = $1`

	err := r.db.GetContext(ctx, &user, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
