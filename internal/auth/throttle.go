package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atlas-backoffice/atlas/internal/shared"
)

// LoginThrottle limits failed login attempts per username using a Redis
// counter. It protects against online brute force; it is not an
// authorization decision, so a Redis outage degrades to allowing the
// attempt rather than locking everyone out.
type LoginThrottle struct {
	client *redis.Client
	limit  int64
	window time.Duration
	logger *slog.Logger
}

// NewLoginThrottle constructs a LoginThrottle.
func NewLoginThrottle(client *redis.Client, limit int64, window time.Duration, logger *slog.Logger) *LoginThrottle {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginThrottle{client: client, limit: limit, window: window, logger: logger}
}

// Allow reports whether a login attempt for the username may proceed.
func (t *LoginThrottle) Allow(ctx context.Context, username string) error {
	if t == nil || t.client == nil {
		return nil
	}
	count, err := t.client.Get(ctx, t.key(username)).Int64()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		t.logger.Warn("login throttle read", slog.Any("error", err))
		return nil
	}
	if count >= t.limit {
		return shared.ErrTooManyAttempts
	}
	return nil
}

// RecordFailure counts a failed attempt, starting the window on the first.
func (t *LoginThrottle) RecordFailure(ctx context.Context, username string) {
	if t == nil || t.client == nil {
		return
	}
	key := t.key(username)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		t.logger.Warn("login throttle incr", slog.Any("error", err))
		return
	}
	if count == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			t.logger.Warn("login throttle expire", slog.Any("error", err))
		}
	}
}

// Reset clears the failure counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, username string) {
	if t == nil || t.client == nil {
		return
	}
	if err := t.client.Del(ctx, t.key(username)).Err(); err != nil {
		t.logger.Warn("login throttle reset", slog.Any("error", err))
	}
}

func (t *LoginThrottle) key(username string) string {
	return fmt.Sprintf("login:attempts:%s", username)
}
