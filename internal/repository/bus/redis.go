package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/signage-toolkit/gateway/internal/repository/kvstore"
	"github.com/signage-toolkit/gateway/pkg/logger"
)

// RedisBus implements Bus over Redis pub/sub, one channel per gateway
// process.
type RedisBus struct {
	client *redis.Client
	prefix string
	log    logger.Interface

	mu     sync.Mutex
	pubsub *redis.PubSub
}

// NewRedisBus -.
func NewRedisBus(client *redis.Client, prefix string, log logger.Interface) *RedisBus {
	return &RedisBus{client: client, prefix: prefix, log: log}
}

func (b *RedisBus) channel(processID string) string {
	return b.prefix + ":bus:" + processID
}

// Publish -.
func (b *RedisBus) Publish(ctx context.Context, processID string, env Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("bus - Publish - json.Marshal: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel(processID), raw).Err(); err != nil {
		return kvstore.Wrap(err)
	}

	return nil
}

// Subscribe starts consuming this process's channel. Malformed envelopes are
// logged and dropped; the subscription survives them.
func (b *RedisBus) Subscribe(ctx context.Context, processID string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pubsub != nil {
		return fmt.Errorf("bus - Subscribe: already subscribed")
	}

	pubsub := b.client.Subscribe(ctx, b.channel(processID))

	// Force the subscription before returning so no published envelope races
	// the subscriber setup.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()

		return kvstore.Wrap(err)
	}

	b.pubsub = pubsub

	go func() {
		for msg := range pubsub.Channel() {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn("bus - Subscribe - dropping malformed envelope: %s", err)

				continue
			}

			handler(env)
		}
	}()

	return nil
}

// Close -.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pubsub == nil {
		return nil
	}

	err := b.pubsub.Close()
	b.pubsub = nil

	return err
}
