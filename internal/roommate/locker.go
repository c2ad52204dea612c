// internal/roommate/locker.go
// Per-pair locks serialize the swipe read-then-write for one unordered pair.

package roommate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockUnavailable is returned when the lock backend itself fails.
var ErrLockUnavailable = errors.New("pair lock unavailable")

// PairLocker hands out a mutual-exclusion lock per key. The returned unlock
// func is safe to call more than once.
type PairLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type localLock struct {
	ch   chan struct{}
	refs int
}

// LocalPairLocker is a PairLocker for a single process.
type LocalPairLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

// NewLocalPairLocker returns a ready LocalPairLocker.
func NewLocalPairLocker() *LocalPairLocker {
	return &LocalPairLocker{locks: make(map[string]*localLock)}
}

func (l *LocalPairLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[key]
	if !ok {
		lk = &localLock{ch: make(chan struct{}, 1)}
		l.locks[key] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, lk)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lk.ch
			l.release(key, lk)
		})
	}, nil
}

func (l *LocalPairLocker) release(key string, lk *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, key)
	}
}

// Deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisPairLocker is a PairLocker shared by every instance using the same Redis.
type RedisPairLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	prefix string
}

// NewRedisPairLocker returns a locker whose keys expire after ttl so a crashed
// holder cannot block a pair forever.
func NewRedisPairLocker(client *redis.Client, ttl time.Duration) *RedisPairLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisPairLocker{
		client: client,
		ttl:    ttl,
		retry:  25 * time.Millisecond,
		prefix: "roommate:swipe-lock:",
	}
}

func (l *RedisPairLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %v", ErrLockUnavailable, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				log.Printf("roommate: releasing %s failed, key expires after ttl: %v", redisKey, err)
			}
		})
	}, nil
}
