// internal/roommate/repository.go
// PostgreSQL Repository. Uniqueness of swipes and matches is enforced by the
// schema; inserts use ON CONFLICT DO NOTHING and report whether a row landed.

package roommate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `user_id, name, age, budget, location, bio, interests, lifestyle_preferences, created_at, updated_at`

func (r *postgresRepository) CreateProfile(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES (:user_id, :name, :age, :budget, :location, :bio, :interests, :lifestyle_preferences, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrProfileExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, p *Profile) error {
	query := `
		UPDATE profiles SET
			name = :name, age = :age, budget = :budget, location = :location, bio = :bio,
			interests = :interests, lifestyle_preferences = :lifestyle_preferences, updated_at = :updated_at
		WHERE user_id = :user_id`

	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	err := r.db.GetContext(ctx, &p, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *postgresRepository) ListProfiles(ctx context.Context, excludeUserID string) ([]*Profile, error) {
	var profiles []*Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id <> $1 ORDER BY user_id`

	if err := r.db.SelectContext(ctx, &profiles, query, excludeUserID); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (r *postgresRepository) ListSwipedIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT swiped_id FROM swipes WHERE swiper_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("list swiped ids: %w", err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *postgresRepository) GetSwipe(ctx context.Context, swiperID, swipedID string) (*Swipe, error) {
	var s Swipe
	query := `SELECT swiper_id, swiped_id, action, created_at FROM swipes WHERE swiper_id = $1 AND swiped_id = $2`

	err := r.db.GetContext(ctx, &s, query, swiperID, swipedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSwipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get swipe: %w", err)
	}
	return &s, nil
}

func (r *postgresRepository) HasSwipe(ctx context.Context, swiperID, swipedID string, action SwipeAction) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM swipes WHERE swiper_id = $1 AND swiped_id = $2 AND action = $3)`

	if err := r.db.GetContext(ctx, &exists, query, swiperID, swipedID, string(action)); err != nil {
		return false, fmt.Errorf("check swipe: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) AppendSwipe(ctx context.Context, s *Swipe) (bool, error) {
	query := `
		INSERT INTO swipes (swiper_id, swiped_id, action, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (swiper_id, swiped_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, s.SwiperID, s.SwipedID, string(s.Action), s.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert swipe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert swipe: %w", err)
	}
	return n == 1, nil
}

func (r *postgresRepository) ListSwipes(ctx context.Context, swiperID string) ([]*Swipe, error) {
	var swipes []*Swipe
	query := `SELECT swiper_id, swiped_id, action, created_at FROM swipes WHERE swiper_id = $1 ORDER BY created_at, id`

	if err := r.db.SelectContext(ctx, &swipes, query, swiperID); err != nil {
		return nil, fmt.Errorf("list swipes: %w", err)
	}
	return swipes, nil
}

func (r *postgresRepository) CreateMatch(ctx context.Context, userA, userB string) (*Match, bool, error) {
	// Ensure user1_id < user2_id for consistency
	user1, user2 := canonicalPair(userA, userB)

	var m Match
	insert := `
		INSERT INTO matches (id, user1_id, user2_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user1_id, user2_id) DO NOTHING
		RETURNING id, user1_id, user2_id, created_at`

	err := r.db.GetContext(ctx, &m, insert, uuid.NewString(), user1, user2)
	if err == nil {
		return &m, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("insert match: %w", err)
	}

	// Conflict: the pair is already matched.
	existing := `SELECT id, user1_id, user2_id, created_at FROM matches WHERE user1_id = $1 AND user2_id = $2`
	if err := r.db.GetContext(ctx, &m, existing, user1, user2); err != nil {
		return nil, false, fmt.Errorf("load match: %w", err)
	}
	return &m, false, nil
}

func (r *postgresRepository) ListMatches(ctx context.Context, userID string) ([]*Match, error) {
	var matches []*Match
	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM matches
		WHERE user1_id = $1 OR user2_id = $1
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &matches, query, userID); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}
