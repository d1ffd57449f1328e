package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"goaltracker/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockTimeout = errors.New("timed out waiting for scope lock")
	ErrLockLost    = errors.New("scope lock expired before release")
)

// releaseScript deletes the lock only if it is still held by this owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisScopeLocker serializes work on a key across processes with SET NX PX.
type RedisScopeLocker struct {
	Client   *redis.Client
	TTL      time.Duration
	Wait     time.Duration
	Interval time.Duration
}

func NewRedisScopeLocker(client *redis.Client) *RedisScopeLocker {
	return &RedisScopeLocker{
		Client:   client,
		TTL:      10 * time.Second,
		Wait:     5 * time.Second,
		Interval: 25 * time.Millisecond,
	}
}

func (l *RedisScopeLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := "streak-lock:" + key
	token := uuid.New().String()
	deadline := time.Now().Add(l.Wait)

	for {
		ok, err := l.Client.SetNX(ctx, lockKey, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// Release with a fresh context so a cancelled request still unlocks.
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := l.release(releaseCtx, lockKey, token); err != nil {
					utils.TrackError("redis", "scope_lock_release_failed")
					utils.Log.WithError(err).WithField("scope", key).Warn("failed to release streak lock")
				}
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.Interval):
		}
	}
}

// release deletes lockKey if token still owns it. A lock that expired or
// passed to another owner is reported as an error.
func (l *RedisScopeLocker) release(ctx context.Context, lockKey, token string) error {
	n, err := releaseScript.Run(ctx, l.Client, []string{lockKey}, token).Int()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", lockKey, err)
	}
	if n == 0 {
		return fmt.Errorf("release lock %s: %w", lockKey, ErrLockLost)
	}
	return nil
}

// LocalScopeLocker is the single-process equivalent used without Redis.
type LocalScopeLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

type localLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalScopeLocker() *LocalScopeLocker {
	return &LocalScopeLocker{locks: make(map[string]*localLock)}
}

func (l *LocalScopeLocker) Lock(ctx context.Context, key string) (func(), error) {
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
		l.release(key, lk, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, lk, true) })
	}, nil
}

func (l *LocalScopeLocker) release(key string, lk *localLock, held bool) {
	if held {
		<-lk.ch
	}
	l.mu.Lock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
