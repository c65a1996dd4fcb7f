// Package kvstore owns the connection to the shared key-value store backing
// the pairing-code registry, the session store and the cross-process bus, and
// the error vocabulary the repositories translate store failures into.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrTimeout marks a store round trip that exceeded its deadline. It is
	// retryable and must never be treated as a terminal pairing failure.
	ErrTimeout = errors.New("kv store timeout")

	// ErrUnavailable marks a store that could not be reached at all.
	ErrUnavailable = errors.New("kv store unavailable")
)

const _pingTimeout = 5 * time.Second

// New connects to Redis and verifies the connection before returning it.
func New(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, _pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("kvstore - New - client.Ping: %w", err)
	}

	return client, nil
}

// Wrap classifies a store error into the retryable taxonomy. Errors that are
// neither timeouts nor connectivity failures pass through unchanged.
func Wrap(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
