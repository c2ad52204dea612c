package roommate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPairLocker_Exclusive(t *testing.T) {
	locker := NewLocalPairLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "a:b")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		second, err := locker.Lock(ctx, "a:b")
		if assert.NoError(t, err) {
			close(acquired)
			second()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first is held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	unlock() // second call is a no-op

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
}

func TestLocalPairLocker_IndependentKeys(t *testing.T) {
	locker := NewLocalPairLocker()
	ctx := context.Background()

	u1, err := locker.Lock(ctx, "a:b")
	require.NoError(t, err)
	u2, err := locker.Lock(ctx, "c:d")
	require.NoError(t, err)
	u1()
	u2()

	locker.mu.Lock()
	defer locker.mu.Unlock()
	assert.Empty(t, locker.locks)
}

func TestLocalPairLocker_ContextCancelled(t *testing.T) {
	locker := NewLocalPairLocker()

	unlock, err := locker.Lock(context.Background(), "a:b")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "a:b")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func newRedisLocker(t *testing.T) (*RedisPairLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisPairLocker(client, 2*time.Second), mr
}

func TestRedisPairLocker_LockAndRelease(t *testing.T) {
	locker, mr := newRedisLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "a:b")
	require.NoError(t, err)

	key := "roommate:swipe-lock:a:b"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 2*time.Second, mr.TTL(key))

	busyCtx, cancel := context.WithTimeout(ctx, 80*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(busyCtx, "a:b")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.False(t, mr.Exists(key))

	again, err := locker.Lock(ctx, "a:b")
	require.NoError(t, err)
	again()
}

func TestRedisPairLocker_ReleaseKeepsForeignToken(t *testing.T) {
	locker, mr := newRedisLocker(t)

	unlock, err := locker.Lock(context.Background(), "a:b")
	require.NoError(t, err)

	// the lock expired and someone else took it
	key := "roommate:swipe-lock:a:b"
	require.NoError(t, mr.Set(key, "other-holder"))

	unlock()
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "other-holder", got)
}

func TestRedisPairLocker_BackendDown(t *testing.T) {
	locker, mr := newRedisLocker(t)
	mr.Close()

	_, err := locker.Lock(context.Background(), "a:b")
	assert.ErrorIs(t, err, ErrLockUnavailable)
}

func TestService_WithRedisLocker(t *testing.T) {
	locker, _ := newRedisLocker(t)
	ctx := context.Background()

	svc := NewService(NewMemoryRepository(), NewMatchingEngine(fixedJitter(0)), locker, nil)
	for _, id := range []string{"alice", "bob"} {
		_, err := svc.SetupProfile(ctx, id, validProfileRequest(id))
		require.NoError(t, err)
	}

	_, err := svc.RecordSwipe(ctx, "alice", "bob", ActionLike)
	require.NoError(t, err)
	res, err := svc.RecordSwipe(ctx, "bob", "alice", ActionLike)
	require.NoError(t, err)
	assert.True(t, res.Matched)
}
