package bus

import (
	"context"
	"sync"
)

// MemoryBus is the single-node bus: a process table in memory. With one
// process it is effectively a loopback, which is exactly what tests and
// single-node deployments need.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	closed   bool
}

// NewMemoryBus -.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string]Handler)}
}

// Publish delivers asynchronously, mirroring the decoupling of the shared
// backend. Envelopes for unknown processes are dropped (at-most-once).
func (b *MemoryBus) Publish(_ context.Context, processID string, env Envelope) error {
	b.mu.RLock()
	handler, ok := b.handlers[processID]
	closed := b.closed
	b.mu.RUnlock()

	if closed || !ok {
		return nil
	}

	go handler(env)

	return nil
}

// Subscribe -.
func (b *MemoryBus) Subscribe(_ context.Context, processID string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[processID] = handler

	return nil
}

// Close -.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.handlers = make(map[string]Handler)

	return nil
}
