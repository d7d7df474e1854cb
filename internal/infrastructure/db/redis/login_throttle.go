package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const failureWindow = 15 * time.Minute

// LoginThrottle counts failed logins per identifier in Redis.
// Key format: login_fail:<identifier>. The window starts at the first failure.
type LoginThrottle struct {
	client *redis.Client
	window time.Duration
}

// NewLoginThrottle returns a throttle with the given window, or 15 minutes when window <= 0.
func NewLoginThrottle(client *redis.Client, window time.Duration) *LoginThrottle {
	if window <= 0 {
		window = failureWindow
	}
	return &LoginThrottle{client: client, window: window}
}

// Failures returns the current failure count for identifier.
func (t *LoginThrottle) Failures(ctx context.Context, identifier string) (int64, error) {
	n, err := t.client.Get(ctx, failureKey(identifier)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("login throttle get: %w", err)
	}
	return n, nil
}

// RecordFailure increments the failure count and returns the new value.
func (t *LoginThrottle) RecordFailure(ctx context.Context, identifier string) (int64, error) {
	key := failureKey(identifier)
	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("login throttle incr: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return n, fmt.Errorf("login throttle expire: %w", err)
		}
	}
	return n, nil
}

// Reset clears the failure count after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, identifier string) error {
	return t.client.Del(ctx, failureKey(identifier)).Err()
}

func failureKey(identifier string) string {
	return fmt.Sprintf("login_fail:%s", identifier)
}
