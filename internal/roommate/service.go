// internal/roommate/service.go

package roommate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/imadgeboyega/roomie-backend/internal/common/utils"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrProfileRequired  = errors.New("profile must be set up first")
	ErrProfileExists    = errors.New("profile already exists")
	ErrSwipeNotFound    = errors.New("swipe not found")
	ErrInvalidAction    = errors.New("action must be like or pass")
	ErrCannotSwipeSelf  = errors.New("cannot swipe on yourself")
	ErrValidation       = errors.New("validation failed")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrMatchCheckFailed = errors.New("swipe recorded but match check failed")
)

// MatchNotifier is told about every newly created match. Implementations must
// not block the caller.
type MatchNotifier interface {
	NotifyMatch(ctx context.Context, match *Match)
}

type Service interface {
	// Profiles
	SetupProfile(ctx context.Context, userID string, req *ProfileRequest) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, req *ProfileRequest) (*Profile, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	// Candidates
	NextCandidate(ctx context.Context, userID string) (*ScoredCandidate, error)
	RankedCandidates(ctx context.Context, userID string, limit int) ([]*ScoredCandidate, error)
	Compatibility(ctx context.Context, userID, otherID string) (*ScoredCandidate, error)

	// Swipes & matches
	RecordSwipe(ctx context.Context, swiperID, swipedID string, action SwipeAction) (*SwipeResult, error)
	GetSwipes(ctx context.Context, userID string) ([]*Swipe, error)
	GetMatches(ctx context.Context, userID string) ([]*MatchView, error)
}

// Config tunes the service.
type Config struct {
	// StoreTimeout bounds every request's store work. Zero disables it.
	StoreTimeout time.Duration
}

type service struct {
	repo      Repository
	engine    MatchingEngine
	locker    PairLocker
	notifiers []MatchNotifier
	config    *Config
	now       func() time.Time
}

func NewService(repo Repository, engine MatchingEngine, locker PairLocker, config *Config, notifiers ...MatchNotifier) Service {
	if config == nil {
		config = &Config{}
	}
	if locker == nil {
		locker = NewLocalPairLocker()
	}
	return &service{
		repo:      repo,
		engine:    engine,
		locker:    locker,
		notifiers: notifiers,
		config:    config,
		now:       time.Now,
	}
}

func (s *service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.StoreTimeout)
}

// storeFailure wraps an adapter error so callers can match ErrStoreUnavailable.
func storeFailure(op string, err error) error {
	RecordStoreError(op)
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

func (s *service) SetupProfile(ctx context.Context, userID string, req *ProfileRequest) (*Profile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now().UTC()
	profile := &Profile{UserID: userID, CreatedAt: now, UpdatedAt: now}
	req.apply(profile)

	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, ErrProfileExists) {
			return nil, err
		}
		return nil, storeFailure("create_profile", err)
	}

	log.Printf("roommate: profile created for user %s", userID)
	return profile, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req *ProfileRequest) (*Profile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		return nil, storeFailure("get_profile", err)
	}

	req.apply(profile)
	profile.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		return nil, storeFailure("update_profile", err)
	}
	return profile, nil
}

func (s *service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		return nil, storeFailure("get_profile", err)
	}
	return profile, nil
}

// loadRankingInput fetches the caller's profile, swiped set and all other profiles.
func (s *service) loadRankingInput(ctx context.Context, userID string) (*Profile, map[string]struct{}, []*Profile, error) {
	user, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, nil, nil, ErrProfileRequired
		}
		return nil, nil, nil, storeFailure("get_profile", err)
	}

	swiped, err := s.repo.ListSwipedIDs(ctx, userID)
	if err != nil {
		return nil, nil, nil, storeFailure("list_swiped_ids", err)
	}

	profiles, err := s.repo.ListProfiles(ctx, userID)
	if err != nil {
		return nil, nil, nil, storeFailure("list_profiles", err)
	}

	return user, swiped, profiles, nil
}

func (s *service) NextCandidate(ctx context.Context, userID string) (*ScoredCandidate, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, swiped, profiles, err := s.loadRankingInput(ctx, userID)
	if err != nil {
		return nil, err
	}

	best, err := NextCandidate(s.engine, user, profiles, swiped)
	if err != nil {
		if errors.Is(err, ErrNoCandidates) {
			RecordCandidatesExhausted()
		}
		return nil, err
	}

	RecordCompatibilityScore(best.Score)
	return best, nil
}

func (s *service) RankedCandidates(ctx context.Context, userID string, limit int) ([]*ScoredCandidate, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, swiped, profiles, err := s.loadRankingInput(ctx, userID)
	if err != nil {
		return nil, err
	}

	ranked := RankCandidates(s.engine, user, profiles, swiped)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (s *service) Compatibility(ctx context.Context, userID, otherID string) (*ScoredCandidate, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrProfileRequired
		}
		return nil, storeFailure("get_profile", err)
	}

	other, err := s.repo.GetProfile(ctx, otherID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		return nil, storeFailure("get_profile", err)
	}

	score, factors, err := s.engine.CalculateCompatibility(user, other)
	if err != nil {
		return nil, err
	}
	return &ScoredCandidate{Profile: other, Score: score, Factors: factors}, nil
}

// RecordSwipe appends the swipe and, when it is a like answered by a like,
// creates the match. The pair lock keeps the reciprocity check and the match
// insert atomic with respect to the other side swiping at the same time.
//
// A repeated swipe on the same pair is not stored again but re-runs the match
// check for a stored like, which repairs a previous attempt whose match step
// failed.
func (s *service) RecordSwipe(ctx context.Context, swiperID, swipedID string, action SwipeAction) (*SwipeResult, error) {
	if !action.Valid() {
		return nil, ErrInvalidAction
	}
	if swiperID == swipedID {
		return nil, ErrCannotSwipeSelf
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// 1. Target must exist
	if _, err := s.repo.GetProfile(ctx, swipedID); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		return nil, storeFailure("get_profile", err)
	}

	// 2. Serialize with the other side of the pair
	unlock, err := s.locker.Lock(ctx, pairKey(swiperID, swipedID))
	if err != nil {
		return nil, fmt.Errorf("acquire pair lock: %w: %w", ErrStoreUnavailable, err)
	}
	defer unlock()

	// 3. Append
	recorded, err := s.repo.AppendSwipe(ctx, &Swipe{
		SwiperID:  swiperID,
		SwipedID:  swipedID,
		Action:    action,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, storeFailure("append_swipe", err)
	}
	result := &SwipeResult{Recorded: recorded}

	decision := action
	if recorded {
		RecordSwipe(action)
	} else {
		stored, err := s.repo.GetSwipe(ctx, swiperID, swipedID)
		if err != nil {
			return result, s.matchCheckFailure("get_swipe", err)
		}
		decision = stored.Action
	}

	if decision != ActionLike {
		return result, nil
	}

	// 4. Reciprocity
	mutual, err := s.repo.HasSwipe(ctx, swipedID, swiperID, ActionLike)
	if err != nil {
		return result, s.matchCheckFailure("has_swipe", err)
	}
	if !mutual {
		return result, nil
	}

	// 5. Match, at most once per pair
	match, created, err := s.repo.CreateMatch(ctx, swiperID, swipedID)
	if err != nil {
		return result, s.matchCheckFailure("create_match", err)
	}
	result.Matched = true
	result.Match = match

	if created {
		RecordMatch()
		log.Printf("roommate: match %s created between %s and %s", match.ID, match.User1ID, match.User2ID)
		s.notify(context.WithoutCancel(ctx), match)
	}

	return result, nil
}

func (s *service) matchCheckFailure(op string, err error) error {
	RecordStoreError(op)
	return fmt.Errorf("%w: %s: %w: %w", ErrMatchCheckFailed, op, ErrStoreUnavailable, err)
}

func (s *service) notify(ctx context.Context, match *Match) {
	for _, n := range s.notifiers {
		n.NotifyMatch(ctx, match)
	}
}

func (s *service) GetSwipes(ctx context.Context, userID string) ([]*Swipe, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	swipes, err := s.repo.ListSwipes(ctx, userID)
	if err != nil {
		return nil, storeFailure("list_swipes", err)
	}
	return swipes, nil
}

// GetMatches returns the user's matches with both sides' profile details.
// Matches whose counterpart has no profile are left out.
func (s *service) GetMatches(ctx context.Context, userID string) ([]*MatchView, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	matches, err := s.repo.ListMatches(ctx, userID)
	if err != nil {
		return nil, storeFailure("list_matches", err)
	}

	profiles := make(map[string]*Profile)
	lookup := func(id string) (*Profile, error) {
		if p, ok := profiles[id]; ok {
			return p, nil
		}
		p, err := s.repo.GetProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		profiles[id] = p
		return p, nil
	}

	views := make([]*MatchView, 0, len(matches))
	for _, m := range matches {
		p1, err := lookup(m.User1ID)
		if err == nil {
			var p2 *Profile
			p2, err = lookup(m.User2ID)
			if err == nil {
				views = append(views, &MatchView{
					ID:        m.ID,
					User1:     partyOf(p1),
					User2:     partyOf(p2),
					CreatedAt: m.CreatedAt,
				})
				continue
			}
		}
		if errors.Is(err, ErrProfileNotFound) {
			log.Printf("roommate: match %s skipped, profile missing", m.ID)
			continue
		}
		return nil, storeFailure("get_profile", err)
	}
	return views, nil
}

func partyOf(p *Profile) MatchParty {
	return MatchParty{UserID: p.UserID, Name: p.Name, Bio: p.Bio, Location: p.Location}
}
