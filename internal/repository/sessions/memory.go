package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/signage-toolkit/gateway/internal/entity"
)

// MemoryStore is the single-node session store: a mutex-guarded map honoring
// the same conditional-transition contract as the Redis implementation.
type MemoryStore struct {
	mu           sync.Mutex
	byDisplay    map[string]*record
	idIndex      map[string]string          // sessionID -> displayID
	byController map[string]map[string]bool // principalID -> set of displayIDs
	ctrlLoc      map[string]entity.Location // principalID -> live controller socket
	closedAt     map[string]time.Time       // displayID -> close time, for retention
	detachedAt   map[string]time.Time       // displayID -> detach time, for retention

	sweepTicker *time.Ticker
	done        chan struct{}
}

// NewMemoryStore -.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		byDisplay:    make(map[string]*record),
		idIndex:      make(map[string]string),
		byController: make(map[string]map[string]bool),
		ctrlLoc:      make(map[string]entity.Location),
		closedAt:     make(map[string]time.Time),
		detachedAt:   make(map[string]time.Time),
		sweepTicker:  time.NewTicker(_closedRetention / 4),
		done:         make(chan struct{}),
	}

	go s.sweepLoop()

	return s
}

func (s *MemoryStore) sweepLoop() {
	for {
		select {
		case <-s.sweepTicker.C:
			s.removeExpired(time.Now())
		case <-s.done:
			return
		}
	}
}

// removeExpired evicts closed records past their retention and
// DISPLAY_DISCONNECTED records whose grace timer never fired, matching the
// key expiries the Redis implementation sets.
func (s *MemoryStore) removeExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	closedCutoff := now.Add(-_closedRetention)
	for displayID, at := range s.closedAt {
		if at.Before(closedCutoff) {
			s.evictLocked(displayID)
		}
	}

	detachedCutoff := now.Add(-_disconnectedRetention)
	for displayID, at := range s.detachedAt {
		if at.Before(detachedCutoff) {
			s.evictLocked(displayID)
		}
	}
}

func (s *MemoryStore) evictLocked(displayID string) {
	if rec, ok := s.byDisplay[displayID]; ok {
		delete(s.idIndex, rec.ID)

		if set, ok := s.byController[rec.ControllerPrincipalID]; ok {
			delete(set, displayID)
		}
	}

	delete(s.byDisplay, displayID)
	delete(s.closedAt, displayID)
	delete(s.detachedAt, displayID)
}

// Stop terminates the background sweep.
func (s *MemoryStore) Stop() {
	s.sweepTicker.Stop()
	close(s.done)
}

// Create -.
func (s *MemoryStore) Create(_ context.Context, session entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byDisplay[session.DisplayID]; ok && existing.State != string(entity.StateClosed) {
		return ErrConflict
	}

	rec := toRecord(session)
	s.byDisplay[session.DisplayID] = &rec
	s.idIndex[session.ID] = session.DisplayID

	set, ok := s.byController[session.ControllerPrincipalID]
	if !ok {
		set = make(map[string]bool)
		s.byController[session.ControllerPrincipalID] = set
	}

	set[session.DisplayID] = true
	delete(s.closedAt, session.DisplayID)
	delete(s.detachedAt, session.DisplayID)

	return nil
}

// AttachDisplay -.
func (s *MemoryStore) AttachDisplay(_ context.Context, displayID string, location entity.Location) (entity.Session, *entity.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byDisplay[displayID]
	if !ok {
		return entity.Session{}, nil, ErrNotFound
	}

	if rec.State == string(entity.StateClosed) {
		return entity.Session{}, nil, ErrClosed
	}

	var superseded *entity.Location

	if rec.DisplayProcessID != "" &&
		(rec.DisplayProcessID != location.ProcessID || rec.DisplayConnectionID != location.ConnectionID) {
		superseded = &entity.Location{
			ProcessID:    rec.DisplayProcessID,
			ConnectionID: rec.DisplayConnectionID,
		}
	}

	rec.DisplayProcessID = location.ProcessID
	rec.DisplayConnectionID = location.ConnectionID
	rec.State = string(entity.StateActive)
	rec.LastHeartbeatMs = time.Now().UTC().UnixMilli()
	delete(s.detachedAt, displayID)

	return rec.toSession(nil), superseded, nil
}

// DetachDisplay -.
func (s *MemoryStore) DetachDisplay(_ context.Context, displayID string, location entity.Location) (entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byDisplay[displayID]
	if !ok {
		return entity.Session{}, ErrNotFound
	}

	if rec.State == string(entity.StateClosed) {
		return entity.Session{}, ErrClosed
	}

	if rec.DisplayProcessID != location.ProcessID || rec.DisplayConnectionID != location.ConnectionID {
		return entity.Session{}, ErrLocationMismatch
	}

	rec.DisplayProcessID = ""
	rec.DisplayConnectionID = ""
	rec.State = string(entity.StateDisplayDisconnected)
	s.detachedAt[displayID] = time.Now()

	return rec.toSession(nil), nil
}

// Heartbeat -.
func (s *MemoryStore) Heartbeat(_ context.Context, displayID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byDisplay[displayID]
	if !ok {
		return ErrNotFound
	}

	if rec.State == string(entity.StateActive) {
		rec.LastHeartbeatMs = at.UnixMilli()
	}

	return nil
}

// Close -.
func (s *MemoryStore) Close(_ context.Context, displayID, reason string, expectState entity.SessionState) (entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byDisplay[displayID]
	if !ok {
		return entity.Session{}, ErrNotFound
	}

	if rec.State == string(entity.StateClosed) {
		return rec.toSession(nil), ErrClosed
	}

	if expectState != "" && rec.State != string(expectState) {
		return entity.Session{}, ErrStateChanged
	}

	rec.State = string(entity.StateClosed)
	rec.CloseReason = reason
	rec.DisplayProcessID = ""
	rec.DisplayConnectionID = ""
	s.closedAt[displayID] = time.Now()
	delete(s.detachedAt, displayID)

	if set, ok := s.byController[rec.ControllerPrincipalID]; ok {
		delete(set, displayID)
	}

	return rec.toSession(nil), nil
}

// GetByDisplayID -.
func (s *MemoryStore) GetByDisplayID(_ context.Context, displayID string) (entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byDisplay[displayID]
	if !ok {
		return entity.Session{}, ErrNotFound
	}

	return rec.toSession(s.controllerLocationLocked(rec.ControllerPrincipalID)), nil
}

// GetBySessionID -.
func (s *MemoryStore) GetBySessionID(_ context.Context, sessionID string) (entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	displayID, ok := s.idIndex[sessionID]
	if !ok {
		return entity.Session{}, ErrNotFound
	}

	rec, ok := s.byDisplay[displayID]
	if !ok {
		return entity.Session{}, ErrNotFound
	}

	return rec.toSession(s.controllerLocationLocked(rec.ControllerPrincipalID)), nil
}

// GetByController -.
func (s *MemoryStore) GetByController(_ context.Context, principalID string) ([]entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc := s.controllerLocationLocked(principalID)
	out := make([]entity.Session, 0, len(s.byController[principalID]))

	for displayID := range s.byController[principalID] {
		if rec, ok := s.byDisplay[displayID]; ok {
			out = append(out, rec.toSession(loc))
		}
	}

	return out, nil
}

// AttachController -.
func (s *MemoryStore) AttachController(_ context.Context, principalID string, location entity.Location) (*entity.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.ctrlLoc[principalID]
	s.ctrlLoc[principalID] = location

	if had && prev != location {
		return &prev, nil
	}

	return nil, nil
}

// DetachController -.
func (s *MemoryStore) DetachController(_ context.Context, principalID string, location entity.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.ctrlLoc[principalID]
	if !ok {
		return ErrNotFound
	}

	if current != location {
		return ErrLocationMismatch
	}

	delete(s.ctrlLoc, principalID)

	return nil
}

// GetControllerLocation -.
func (s *MemoryStore) GetControllerLocation(_ context.Context, principalID string) (*entity.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.controllerLocationLocked(principalID), nil
}

func (s *MemoryStore) controllerLocationLocked(principalID string) *entity.Location {
	if loc, ok := s.ctrlLoc[principalID]; ok {
		return &loc
	}

	return nil
}
