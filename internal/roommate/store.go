// internal/roommate/store.go
// Persistence contract. The matching core only ever talks to Store; the
// wider Repository adds what the HTTP surface needs.

package roommate

import (
	"context"
)

// Store is the narrow surface the swipe/match state machine and the ranker use.
type Store interface {
	// GetProfile returns ErrProfileNotFound when the user has no profile.
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	// ListProfiles returns every profile except excludeUserID's.
	ListProfiles(ctx context.Context, excludeUserID string) ([]*Profile, error)
	// ListSwipedIDs returns the ids userID has swiped on, like or pass.
	ListSwipedIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	// GetSwipe returns ErrSwipeNotFound when swiperID never swiped on swipedID.
	GetSwipe(ctx context.Context, swiperID, swipedID string) (*Swipe, error)
	HasSwipe(ctx context.Context, swiperID, swipedID string, action SwipeAction) (bool, error)
	// AppendSwipe reports false when the ordered pair was already swiped.
	AppendSwipe(ctx context.Context, swipe *Swipe) (bool, error)
	// CreateMatch stores the unordered pair once. It returns the stored match
	// and whether this call created it.
	CreateMatch(ctx context.Context, userA, userB string) (*Match, bool, error)
}

// Repository is Store plus profile maintenance and read models.
type Repository interface {
	Store

	CreateProfile(ctx context.Context, profile *Profile) error
	UpdateProfile(ctx context.Context, profile *Profile) error
	ListMatches(ctx context.Context, userID string) ([]*Match, error)
	ListSwipes(ctx context.Context, swiperID string) ([]*Swipe, error)
}
