package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Sup3r$ecret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "argon2id$v=19$m=65536,t=3,p=2$"))

	ok, err := VerifyPassword(hash, "Sup3r$ecret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := HashPassword("Sup3r$ecret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salts differ")

	_, err = VerifyPassword("salt$hash", "x")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestNeedsRehash(t *testing.T) {
	weak, err := hashWith("pw", Argon2Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)
	strong, err := HashPassword("pw")
	require.NoError(t, err)

	assert.True(t, NeedsRehash(weak))
	assert.False(t, NeedsRehash(strong))
	assert.True(t, NeedsRehash("garbage"))

	ok, err := VerifyPassword(weak, "pw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	ti := NewTokenIssuer("test-secret", "goaltracker", time.Hour, 24*time.Hour)
	ti.Now = func() time.Time { return now }

	access, err := ti.GenerateToken("user-1")
	require.NoError(t, err)
	claims, err := ti.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())

	refresh, err := ti.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	_, err = ti.ParseAccessToken(refresh)
	assert.Error(t, err, "refresh token is not an access token")
	_, err = ti.ParseRefreshToken(access)
	assert.Error(t, err)
	rc, err := ti.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", rc.UserID)

	other := NewTokenIssuer("another-secret", "goaltracker", time.Hour, time.Hour)
	other.Now = ti.Now
	_, err = other.ParseAccessToken(access)
	assert.Error(t, err)

	now = now.Add(2 * time.Hour)
	_, err = ti.ParseAccessToken(access)
	assert.Error(t, err, "expired")
}

func TestLocalScopeLockerSerializes(t *testing.T) {
	l := NewLocalScopeLocker()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "user:u1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, l.locks, "idle keys are released")
}

func TestLocalScopeLockerHonoursContext(t *testing.T) {
	l := NewLocalScopeLocker()
	unlock, err := l.Lock(context.Background(), "goal:u1:g1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "goal:u1:g1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := l.Lock(context.Background(), "goal:u1:g2")
	require.NoError(t, err)
	other()
}

func TestRedisScopeLockerReleaseReportsFailure(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	l := NewRedisScopeLocker(client)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := l.release(ctx, "lock:streak:user:u1", "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock:streak:user:u1")
}

func TestLocalTokenBlacklist(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	tb := NewLocalTokenBlacklist()
	tb.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, tb.Blacklist(ctx, "tok", now.Add(time.Minute)))
	require.NoError(t, tb.Blacklist(ctx, "already-expired", now.Add(-time.Minute)))

	assert.True(t, tb.IsBlacklisted(ctx, "tok"))
	assert.False(t, tb.IsBlacklisted(ctx, "already-expired"))

	now = now.Add(2 * time.Minute)
	assert.False(t, tb.IsBlacklisted(ctx, "tok"))
}

func TestBuildDailySpec(t *testing.T) {
	spec, err := BuildDailySpec("20:05")
	require.NoError(t, err)
	assert.Equal(t, "0 5 20 * * *", spec)

	for _, bad := range []string{"", "25:00", "12:60", "noon", "1:2:3"} {
		_, err := BuildDailySpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestSchedulerRegistersJob(t *testing.T) {
	s := NewScheduler(time.UTC)
	id, err := s.ScheduleDaily("06:30", func() {})
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = s.ScheduleDaily("6.30", func() {})
	assert.Error(t, err)
}
