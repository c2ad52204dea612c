package roommate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu      sync.Mutex
	matches []*Match
}

func (n *recordingNotifier) NotifyMatch(ctx context.Context, match *Match) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.matches = append(n.matches, match)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.matches)
}

// faultyRepo fails the named operations and otherwise delegates to memory.
type faultyRepo struct {
	*MemoryRepository
	mu     sync.Mutex
	failOn map[string]error
}

func newFaultyRepo() *faultyRepo {
	return &faultyRepo{MemoryRepository: NewMemoryRepository(), failOn: map[string]error{}}
}

func (f *faultyRepo) set(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failOn, op)
		return
	}
	f.failOn[op] = err
}

func (f *faultyRepo) err(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failOn[op]
}

func (f *faultyRepo) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if err := f.err("get_profile"); err != nil {
		return nil, err
	}
	return f.MemoryRepository.GetProfile(ctx, userID)
}

func (f *faultyRepo) AppendSwipe(ctx context.Context, s *Swipe) (bool, error) {
	if err := f.err("append_swipe"); err != nil {
		return false, err
	}
	return f.MemoryRepository.AppendSwipe(ctx, s)
}

func (f *faultyRepo) HasSwipe(ctx context.Context, swiperID, swipedID string, action SwipeAction) (bool, error) {
	if err := f.err("has_swipe"); err != nil {
		return false, err
	}
	return f.MemoryRepository.HasSwipe(ctx, swiperID, swipedID, action)
}

func (f *faultyRepo) CreateMatch(ctx context.Context, userA, userB string) (*Match, bool, error) {
	if err := f.err("create_match"); err != nil {
		return nil, false, err
	}
	return f.MemoryRepository.CreateMatch(ctx, userA, userB)
}

func (f *faultyRepo) ListSwipes(ctx context.Context, swiperID string) ([]*Swipe, error) {
	if err := f.err("list_swipes"); err != nil {
		return nil, err
	}
	return f.MemoryRepository.ListSwipes(ctx, swiperID)
}

func validProfileRequest(name string) *ProfileRequest {
	return &ProfileRequest{
		Name:      name,
		Age:       26,
		Budget:    900,
		Location:  "Austin, TX",
		Interests: []string{" hiking ", "coffee"},
	}
}

func newTestService(t *testing.T, repo Repository, users ...string) (Service, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	svc := NewService(repo, NewMatchingEngine(fixedJitter(0)), nil, &Config{}, notifier)
	for _, id := range users {
		_, err := svc.SetupProfile(context.Background(), id, validProfileRequest("user "+id))
		require.NoError(t, err)
	}
	return svc, notifier
}

func TestSetupProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, NewMemoryRepository())

	p, err := svc.SetupProfile(ctx, "alice", validProfileRequest("  Alice "))
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, Tags{"hiking", "coffee"}, p.Interests)
	assert.False(t, p.CreatedAt.IsZero())

	_, err = svc.SetupProfile(ctx, "alice", validProfileRequest("Alice"))
	assert.ErrorIs(t, err, ErrProfileExists)

	bad := validProfileRequest("Bob")
	bad.Age = 17
	_, err = svc.SetupProfile(ctx, "bob", bad)
	assert.ErrorIs(t, err, ErrValidation)

	bad = validProfileRequest("   ")
	_, err = svc.SetupProfile(ctx, "bob", bad)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, NewMemoryRepository(), "alice")

	req := validProfileRequest("Alice")
	req.Budget = 1500
	req.Location = "Dallas, TX"
	p, err := svc.UpdateProfile(ctx, "alice", req)
	require.NoError(t, err)
	assert.Equal(t, 1500, p.Budget)

	stored, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Dallas, TX", stored.Location)

	_, err = svc.UpdateProfile(ctx, "ghost", validProfileRequest("Ghost"))
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestRecordSwipe_MutualLikeCreatesOneMatch(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	svc, notifier := newTestService(t, repo, "alice", "bob")

	res, err := svc.RecordSwipe(ctx, "alice", "bob", ActionLike)
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.False(t, res.Matched)

	res, err = svc.RecordSwipe(ctx, "bob", "alice", ActionLike)
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	require.True(t, res.Matched)
	assert.Equal(t, "alice", res.Match.User1ID)
	assert.Equal(t, "bob", res.Match.User2ID)
	assert.Equal(t, 1, notifier.count())

	// repeating either like does not create a second match
	again, err := svc.RecordSwipe(ctx, "alice", "bob", ActionLike)
	require.NoError(t, err)
	assert.False(t, again.Recorded)
	assert.True(t, again.Matched)
	assert.Equal(t, res.Match.ID, again.Match.ID)
	assert.Equal(t, 1, notifier.count())

	matches, err := repo.ListMatches(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRecordSwipe_PassNeverMatches(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService(t, NewMemoryRepository(), "alice", "bob")

	_, err := svc.RecordSwipe(ctx, "alice", "bob", ActionPass)
	require.NoError(t, err)

	res, err := svc.RecordSwipe(ctx, "bob", "alice", ActionLike)
	require.NoError(t, err)
	assert.False(t, res.Matched)

	// a later like does not overwrite the stored pass
	res, err = svc.RecordSwipe(ctx, "alice", "bob", ActionLike)
	require.NoError(t, err)
	assert.False(t, res.Recorded)
	assert.False(t, res.Matched)
	assert.Equal(t, 0, notifier.count())
}

func TestRecordSwipe_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, NewMemoryRepository(), "alice")

	_, err := svc.RecordSwipe(ctx, "alice", "alice", ActionLike)
	assert.ErrorIs(t, err, ErrCannotSwipeSelf)

	_, err = svc.RecordSwipe(ctx, "alice", "bob", SwipeAction("superlike"))
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = svc.RecordSwipe(ctx, "alice", "nobody", ActionLike)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestRecordSwipe_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := newFaultyRepo()
	svc, _ := newTestService(t, repo, "alice", "bob")

	repo.set("append_swipe", errors.New("connection refused"))
	res, err := svc.RecordSwipe(ctx, "alice", "bob", ActionLike)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	swipes, err := repo.MemoryRepository.ListSwipes(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, swipes)
}

func TestRecordSwipe_MatchFailureIsReported(t *testing.T) {
	ctx := context.Background()
	repo := newFaultyRepo()
	svc, notifier := newTestService(t, repo, "alice", "bob")

	_, err := svc.RecordSwipe(ctx, "alice", "bob", ActionLike)
	require.NoError(t, err)

	repo.set("create_match", errors.New("timeout"))
	res, err := svc.RecordSwipe(ctx, "bob", "alice", ActionLike)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMatchCheckFailed)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	require.NotNil(t, res)
	assert.True(t, res.Recorded)
	assert.False(t, res.Matched)

	// retrying the same swipe repairs the missing match
	repo.set("create_match", nil)
	res, err = svc.RecordSwipe(ctx, "bob", "alice", ActionLike)
	require.NoError(t, err)
	assert.False(t, res.Recorded)
	assert.True(t, res.Matched)
	assert.Equal(t, 1, notifier.count())
}

func TestRecordSwipe_ReciprocityCheckFailure(t *testing.T) {
	ctx := context.Background()
	repo := newFaultyRepo()
	svc, _ := newTestService(t, repo, "alice", "bob")

	repo.set("has_swipe", errors.New("read timeout"))
	res, err := svc.RecordSwipe(ctx, "alice", "bob", ActionLike)
	assert.ErrorIs(t, err, ErrMatchCheckFailed)
	require.NotNil(t, res)
	assert.True(t, res.Recorded)
}

func TestRecordSwipe_ConcurrentMutualLikes(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	svc, notifier := newTestService(t, repo)

	const pairs = 25
	for i := 0; i < pairs; i++ {
		for _, id := range []string{fmt.Sprintf("a%02d", i), fmt.Sprintf("b%02d", i)} {
			_, err := svc.SetupProfile(ctx, id, validProfileRequest(id))
			require.NoError(t, err)
		}
	}

	var wg sync.WaitGroup
	matched := make(chan bool, pairs*2)
	for i := 0; i < pairs; i++ {
		a, b := fmt.Sprintf("a%02d", i), fmt.Sprintf("b%02d", i)
		for _, p := range [][2]string{{a, b}, {b, a}} {
			wg.Add(1)
			go func(from, to string) {
				defer wg.Done()
				res, err := svc.RecordSwipe(ctx, from, to, ActionLike)
				if assert.NoError(t, err) {
					matched <- res.Matched
				}
			}(p[0], p[1])
		}
	}
	wg.Wait()
	close(matched)

	n := 0
	for m := range matched {
		if m {
			n++
		}
	}
	assert.Equal(t, pairs, n, "exactly one side of each pair sees the match")
	assert.Equal(t, pairs, notifier.count())
}

func TestNextCandidate_Service(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, NewMemoryRepository(), "alice", "bob", "carol")

	_, err := svc.NextCandidate(ctx, "nobody")
	assert.ErrorIs(t, err, ErrProfileRequired)

	first, err := svc.NextCandidate(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "bob", first.Profile.UserID, "equal scores fall back to user id order")

	_, err = svc.RecordSwipe(ctx, "alice", "bob", ActionPass)
	require.NoError(t, err)

	next, err := svc.NextCandidate(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "carol", next.Profile.UserID)

	_, err = svc.RecordSwipe(ctx, "alice", "carol", ActionLike)
	require.NoError(t, err)

	_, err = svc.NextCandidate(ctx, "alice")
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestRankedCandidates_Limit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, NewMemoryRepository(), "u1", "u2", "u3", "u4")

	ranked, err := svc.RankedCandidates(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "u2", ranked[0].Profile.UserID)

	all, err := svc.RankedCandidates(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCompatibility_Service(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, NewMemoryRepository(), "alice", "bob")

	scored, err := svc.Compatibility(ctx, "alice", "bob")
	require.NoError(t, err)
	// identical profiles: 40 + 30 + 20 + 25
	assert.Equal(t, 115.0, scored.Score)

	_, err = svc.Compatibility(ctx, "alice", "ghost")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = svc.Compatibility(ctx, "ghost", "alice")
	assert.ErrorIs(t, err, ErrProfileRequired)
}

func TestGetMatchesAndSwipes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, NewMemoryRepository(), "alice", "bob", "carol")

	_, err := svc.RecordSwipe(ctx, "alice", "bob", ActionLike)
	require.NoError(t, err)
	_, err = svc.RecordSwipe(ctx, "bob", "alice", ActionLike)
	require.NoError(t, err)
	_, err = svc.RecordSwipe(ctx, "alice", "carol", ActionPass)
	require.NoError(t, err)

	views, err := svc.GetMatches(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "user alice", views[0].User1.Name)
	assert.Equal(t, "user bob", views[0].User2.Name)

	swipes, err := svc.GetSwipes(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, swipes, 2)
	assert.Equal(t, "bob", swipes[0].SwipedID)
	assert.Equal(t, ActionPass, swipes[1].Action)

	empty, err := svc.GetMatches(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetSwipes_StoreUnavailable(t *testing.T) {
	repo := newFaultyRepo()
	svc, _ := newTestService(t, repo)

	repo.set("list_swipes", errors.New("down"))
	_, err := svc.GetSwipes(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
