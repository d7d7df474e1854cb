package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginThrottle_CountsWithinWindow(t *testing.T) {
	mr, client := newTestClient(t)
	throttle := NewLoginThrottle(client, 10*time.Minute)
	ctx := context.Background()

	n, err := throttle.Failures(ctx, "user:u1")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = throttle.RecordFailure(ctx, "user:u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 10*time.Minute, mr.TTL(failureKey("user:u1")))

	// Later failures do not extend the window.
	mr.FastForward(4 * time.Minute)
	n, err = throttle.RecordFailure(ctx, "user:u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 6*time.Minute, mr.TTL(failureKey("user:u1")))

	n, err = throttle.Failures(ctx, "user:u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mr.FastForward(6 * time.Minute)
	n, err = throttle.Failures(ctx, "user:u1")
	require.NoError(t, err)
	assert.Zero(t, n, "counter expires with the window")
}

func TestLoginThrottle_Reset(t *testing.T) {
	_, client := newTestClient(t)
	throttle := NewLoginThrottle(client, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := throttle.RecordFailure(ctx, "name:ghost")
		require.NoError(t, err)
	}
	_, err := throttle.RecordFailure(ctx, "user:u2")
	require.NoError(t, err)

	require.NoError(t, throttle.Reset(ctx, "name:ghost"))
	n, err := throttle.Failures(ctx, "name:ghost")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = throttle.Failures(ctx, "user:u2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "other identifiers are untouched")
}

func TestNewLoginThrottle_DefaultWindow(t *testing.T) {
	assert.Equal(t, failureWindow, NewLoginThrottle(nil, 0).window)
}
