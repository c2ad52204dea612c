// internal/roommate/memory.go
// In-process repository used for local runs and tests.

package roommate

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imadgeboyega/roomie-backend/internal/auth"
)

type swipeKey struct {
	swiper string
	swiped string
}

// MemoryRepository keeps everything in maps behind one RWMutex. It implements
// both Repository and auth.UserStore.
type MemoryRepository struct {
	mu       sync.RWMutex
	users    map[string]*auth.User
	profiles map[string]*Profile
	swipes   map[swipeKey]*Swipe
	order    []swipeKey
	matches  map[string]*Match
	now      func() time.Time
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    make(map[string]*auth.User),
		profiles: make(map[string]*Profile),
		swipes:   make(map[swipeKey]*Swipe),
		matches:  make(map[string]*Match),
		now:      time.Now,
	}
}

func (m *MemoryRepository) CreateUser(ctx context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == user.ID || strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return auth.ErrUserExists
		}
	}
	u := *user
	m.users[u.ID] = &u
	return nil
}

func (m *MemoryRepository) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	return m.findUser(func(u *auth.User) bool { return u.ID == id })
}

func (m *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return m.findUser(func(u *auth.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *MemoryRepository) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	return m.findUser(func(u *auth.User) bool { return strings.EqualFold(u.Username, username) })
}

func (m *MemoryRepository) findUser(match func(*auth.User) bool) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *MemoryRepository) CreateProfile(ctx context.Context, profile *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[profile.UserID]; ok {
		return ErrProfileExists
	}
	m.profiles[profile.UserID] = copyProfile(profile)
	return nil
}

func (m *MemoryRepository) UpdateProfile(ctx context.Context, profile *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.profiles[profile.UserID]
	if !ok {
		return ErrProfileNotFound
	}
	p := copyProfile(profile)
	p.CreatedAt = existing.CreatedAt
	m.profiles[p.UserID] = p
	return nil
}

func (m *MemoryRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return copyProfile(p), nil
}

func (m *MemoryRepository) ListProfiles(ctx context.Context, excludeUserID string) ([]*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Profile, 0, len(m.profiles))
	for id, p := range m.profiles {
		if id == excludeUserID {
			continue
		}
		out = append(out, copyProfile(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *MemoryRepository) ListSwipedIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make(map[string]struct{})
	for k := range m.swipes {
		if k.swiper == userID {
			ids[k.swiped] = struct{}{}
		}
	}
	return ids, nil
}

func (m *MemoryRepository) GetSwipe(ctx context.Context, swiperID, swipedID string) (*Swipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.swipes[swipeKey{swiperID, swipedID}]
	if !ok {
		return nil, ErrSwipeNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) HasSwipe(ctx context.Context, swiperID, swipedID string, action SwipeAction) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.swipes[swipeKey{swiperID, swipedID}]
	return ok && s.Action == action, nil
}

func (m *MemoryRepository) AppendSwipe(ctx context.Context, swipe *Swipe) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := swipeKey{swipe.SwiperID, swipe.SwipedID}
	if _, ok := m.swipes[k]; ok {
		return false, nil
	}
	s := *swipe
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now().UTC()
	}
	m.swipes[k] = &s
	m.order = append(m.order, k)
	return true, nil
}

func (m *MemoryRepository) ListSwipes(ctx context.Context, swiperID string) ([]*Swipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Swipe
	for _, k := range m.order {
		if k.swiper != swiperID {
			continue
		}
		s := *m.swipes[k]
		out = append(out, &s)
	}
	return out, nil
}

func (m *MemoryRepository) CreateMatch(ctx context.Context, userA, userB string) (*Match, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(userA, userB)
	if existing, ok := m.matches[key]; ok {
		cp := *existing
		return &cp, false, nil
	}

	u1, u2 := canonicalPair(userA, userB)
	match := &Match{
		ID:        uuid.NewString(),
		User1ID:   u1,
		User2ID:   u2,
		CreatedAt: m.now().UTC(),
	}
	m.matches[key] = match
	cp := *match
	return &cp, true, nil
}

func (m *MemoryRepository) ListMatches(ctx context.Context, userID string) ([]*Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Match
	for _, match := range m.matches {
		if match.User1ID == userID || match.User2ID == userID {
			cp := *match
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func copyProfile(p *Profile) *Profile {
	cp := *p
	cp.Interests = append(Tags{}, p.Interests...)
	cp.LifestylePreferences = append(Tags{}, p.LifestylePreferences...)
	return &cp
}
