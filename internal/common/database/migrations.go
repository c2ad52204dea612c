// internal/common/database/migrations.go
// Schema for the PostgreSQL backend

package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username VARCHAR(20) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		age INTEGER NOT NULL CHECK (age BETWEEN 18 AND 100),
		budget INTEGER NOT NULL CHECK (budget BETWEEN 300 AND 5000),
		location VARCHAR(200) NOT NULL,
		bio TEXT NOT NULL DEFAULT '',
		interests TEXT NOT NULL DEFAULT '[]',
		lifestyle_preferences TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS swipes (
		id BIGSERIAL PRIMARY KEY,
		swiper_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		swiped_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		action VARCHAR(10) NOT NULL CHECK (action IN ('like', 'pass')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (swiper_id, swiped_id)
	)`,

	`CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		user1_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user2_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (user1_id COLLATE "C" < user2_id COLLATE "C"),
		UNIQUE (user1_id, user2_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_swipes_swiped ON swipes(swiped_id, swiper_id)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_user2 ON matches(user2_id)`,
}

// RunMigrations creates the tables if they don't exist
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	log.Printf("   - %d migrations applied", len(migrations))
	return nil
}
