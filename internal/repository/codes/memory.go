package codes

import (
	"context"
	"sync"
	"time"

	"github.com/signage-toolkit/gateway/internal/entity"
)

// MemoryRegistry is the single-node registry: a mutex-guarded map with the
// same conditional-write contract as the Redis implementation, so the pairing
// state machine is identical against either.
type MemoryRegistry struct {
	mu    sync.Mutex
	codes map[string]*entity.PairingCode
	cfg   Config

	sweepTicker *time.Ticker
	done        chan struct{}
}

// NewMemoryRegistry -.
func NewMemoryRegistry(cfg Config) *MemoryRegistry {
	cfg = cfg.withDefaults()

	r := &MemoryRegistry{
		codes:       make(map[string]*entity.PairingCode),
		cfg:         cfg,
		sweepTicker: time.NewTicker(cfg.TTL),
		done:        make(chan struct{}),
	}

	go r.sweepLoop()

	return r
}

func (r *MemoryRegistry) sweepLoop() {
	for {
		select {
		case <-r.sweepTicker.C:
			r.removeStale()
		case <-r.done:
			return
		}
	}
}

// removeStale evicts records held past expiry for Expired reporting.
func (r *MemoryRegistry) removeStale() {
	cutoff := time.Now().UTC().Add(-r.cfg.TTL * (_retentionFactor - 1))

	r.mu.Lock()
	defer r.mu.Unlock()

	for code, pc := range r.codes {
		if pc.ExpiresAt.Before(cutoff) {
			delete(r.codes, code)
		}
	}
}

// Stop terminates the background sweep.
func (r *MemoryRegistry) Stop() {
	r.sweepTicker.Stop()
	close(r.done)
}

// Issue -.
func (r *MemoryRegistry) Issue(_ context.Context, displayID string, location entity.Location) (entity.PairingCode, error) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < _issueAttempts; attempt++ {
		code, err := Generate(r.cfg.Length)
		if err != nil {
			return entity.PairingCode{}, err
		}

		if existing, ok := r.codes[code]; ok && !existing.Expired(now) && !existing.Consumed {
			continue
		}

		pc := entity.PairingCode{
			Code:            code,
			DisplayID:       displayID,
			DisplayLocation: location,
			IssuedAt:        now,
			ExpiresAt:       now.Add(r.cfg.TTL),
		}
		r.codes[code] = &pc

		return pc, nil
	}

	return entity.PairingCode{}, ErrIssueExhausted
}

// ValidateAndConsume -.
func (r *MemoryRegistry) ValidateAndConsume(_ context.Context, code, controllerPrincipalID string) (entity.PairingCode, error) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	pc, ok := r.codes[code]
	if !ok {
		return entity.PairingCode{}, ErrNotFound
	}

	if pc.Consumed {
		return entity.PairingCode{}, ErrAlreadyConsumed
	}

	if pc.Expired(now) {
		return entity.PairingCode{}, ErrExpired
	}

	pc.Consumed = true
	pc.ConsumedBy = controllerPrincipalID

	return *pc, nil
}

// MarkDisplayLost -.
func (r *MemoryRegistry) MarkDisplayLost(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pc, ok := r.codes[code]; ok && !pc.Consumed {
		pc.DisplayLocation = entity.Location{}
	}

	return nil
}

// Revoke -.
func (r *MemoryRegistry) Revoke(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.codes, code)

	return nil
}
