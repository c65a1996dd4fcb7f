package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/signage-toolkit/gateway/pkg/ratelimiter"
)

func initLimiterTest(t *testing.T, cfg ratelimiter.Config) *ratelimiter.Limiter {
	t.Helper()

	store := ratelimiter.NewMemoryStore(time.Minute)
	t.Cleanup(store.Stop)

	l, err := ratelimiter.New(store, cfg)
	require.NoError(t, err)

	return l
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		store ratelimiter.Store
		cfg   ratelimiter.Config
	}{
		{name: "nil store", store: nil, cfg: ratelimiter.Config{Limit: 1, Window: time.Minute}},
		{name: "zero limit", store: ratelimiter.NewMemoryStore(time.Minute), cfg: ratelimiter.Config{Window: time.Minute}},
		{name: "zero window", store: ratelimiter.NewMemoryStore(time.Minute), cfg: ratelimiter.Config{Limit: 1}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ratelimiter.New(tc.store, tc.cfg)
			require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}
}

func TestAllowWithinLimit(t *testing.T) {
	t.Parallel()

	l := initLimiterTest(t, ratelimiter.Config{Limit: 3, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "claim:principal-1")
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := l.Allow(ctx, "claim:principal-1")
	require.NoError(t, err)
	require.False(t, ok)

	// Other keys count independently.
	ok, err = l.Allow(ctx, "claim:principal-2")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestWindowResets(t *testing.T) {
	t.Parallel()

	l := initLimiterTest(t, ratelimiter.Config{Limit: 1, Window: 30 * time.Millisecond})
	ctx := context.Background()

	ok, err := l.Allow(ctx, "claim:principal-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Allow(ctx, "claim:principal-1")
	require.NoError(t, err)
	require.False(t, ok)

	time.Sleep(40 * time.Millisecond)

	ok, err = l.Allow(ctx, "claim:principal-1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestResetClearsWindow(t *testing.T) {
	t.Parallel()

	l := initLimiterTest(t, ratelimiter.Config{Limit: 1, Window: time.Minute})
	ctx := context.Background()

	_, err := l.Allow(ctx, "claim:principal-1")
	require.NoError(t, err)

	ok, err := l.Allow(ctx, "claim:principal-1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, l.Reset(ctx, "claim:principal-1"))

	ok, err = l.Allow(ctx, "claim:principal-1")
	require.NoError(t, err)
	require.True(t, ok)
}
