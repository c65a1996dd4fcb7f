// Package ratelimiter implements fixed-window rate limiting with pluggable
// storage, so a single gateway can count in memory while a scaled deployment
// shares windows through Redis.
package ratelimiter

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidConfig    = errors.New("invalid rate limiter configuration")
	ErrStoreUnavailable = errors.New("rate limiter store unavailable")
)

// Config bounds one limiter: at most Limit events per Window per key.
type Config struct {
	Limit  int
	Window time.Duration
}

// Store counts events within the current window for a key. Incr must be
// atomic across concurrent callers, including callers in other processes for
// shared backends.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

// Limiter -.
type Limiter struct {
	store Store
	cfg   Config
}

// New -.
func New(store Store, cfg Config) (*Limiter, error) {
	if store == nil || cfg.Limit <= 0 || cfg.Window <= 0 {
		return nil, ErrInvalidConfig
	}

	return &Limiter{store: store, cfg: cfg}, nil
}

// Allow records one event for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Incr(ctx, key, l.cfg.Window)
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}

	return count <= int64(l.cfg.Limit), nil
}

// Reset clears the current window for key, for administrative overrides.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
