package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenBlacklist stores logged-out tokens until they would have expired.
type RedisTokenBlacklist struct {
	Client *redis.Client
}

func NewTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{Client: client}
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}

// Blacklist adds token to the blacklist until expiresAt.
func (tb *RedisTokenBlacklist) Blacklist(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := tb.Client.Set(ctx, blacklistKey(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token in Redis: %w", err)
	}
	return nil
}

// IsBlacklisted fails open when Redis is unreachable.
func (tb *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, token string) bool {
	n, err := tb.Client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// LocalTokenBlacklist keeps logged-out tokens in process memory when Redis is
// not configured. Entries are dropped once they expire.
type LocalTokenBlacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	now    func() time.Time
}

func NewLocalTokenBlacklist() *LocalTokenBlacklist {
	return &LocalTokenBlacklist{tokens: make(map[string]time.Time), now: time.Now}
}

func (tb *LocalTokenBlacklist) Blacklist(_ context.Context, token string, expiresAt time.Time) error {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	for t, exp := range tb.tokens {
		if !exp.After(now) {
			delete(tb.tokens, t)
		}
	}
	if expiresAt.After(now) {
		tb.tokens[token] = expiresAt
	}
	return nil
}

func (tb *LocalTokenBlacklist) IsBlacklisted(_ context.Context, token string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	exp, ok := tb.tokens[token]
	return ok && exp.After(tb.now())
}
