package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count    int64
	resetsAt time.Time
}

// MemoryStore implements Store with a mutex-guarded map. Windows reset lazily
// on access; a background sweep drops idle keys.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window

	sweepTicker *time.Ticker
	done        chan struct{}
}

// NewMemoryStore -.
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	ms := &MemoryStore{
		windows:     make(map[string]*window),
		sweepTicker: time.NewTicker(sweepInterval),
		done:        make(chan struct{}),
	}

	go ms.sweepLoop()

	return ms
}

func (ms *MemoryStore) sweepLoop() {
	for {
		select {
		case <-ms.sweepTicker.C:
			ms.removeExpired()
		case <-ms.done:
			return
		}
	}
}

func (ms *MemoryStore) removeExpired() {
	now := time.Now()

	ms.mu.Lock()
	defer ms.mu.Unlock()

	for key, w := range ms.windows {
		if now.After(w.resetsAt) {
			delete(ms.windows, key)
		}
	}
}

// Stop terminates the background sweep.
func (ms *MemoryStore) Stop() {
	ms.sweepTicker.Stop()
	close(ms.done)
}

// Incr -.
func (ms *MemoryStore) Incr(_ context.Context, key string, windowSize time.Duration) (int64, error) {
	now := time.Now()

	ms.mu.Lock()
	defer ms.mu.Unlock()

	w, ok := ms.windows[key]
	if !ok || now.After(w.resetsAt) {
		w = &window{resetsAt: now.Add(windowSize)}
		ms.windows[key] = w
	}

	w.count++

	return w.count, nil
}

// Reset -.
func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.windows, key)

	return nil
}
