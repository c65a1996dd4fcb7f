// Package connections tracks the live transport connections owned by this
// gateway process. State here is strictly process-local; other processes see
// these connections only as (processID, connectionID) locations in the shared
// session store.
package connections

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/signage-toolkit/gateway/internal/entity"
	"github.com/signage-toolkit/gateway/pkg/logger"
)

var (
	ErrNotFound           = errors.New("connection not found")
	ErrTooManyConnections = errors.New("too many connections from address")
	ErrShuttingDown       = errors.New("connection manager is shutting down")
)

// Transport is the minimal surface of a live socket. Implementations must
// serialize their own writes.
type Transport interface {
	WriteMessage(data []byte) error
	Close(reason string) error
}

// DisconnectEvent is emitted exactly once per registered connection, whether
// the transport reported closure or the heartbeat watchdog declared it dead.
type DisconnectEvent struct {
	ConnectionID   string
	Role           entity.Role
	RemoteIdentity string
}

// Config -.
type Config struct {
	HeartbeatInterval time.Duration
	MissedThreshold   int
	MaxPerAddr        int
}

func (c Config) withDefaults() Config {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}

	if c.MissedThreshold <= 0 {
		c.MissedThreshold = 2
	}

	if c.MaxPerAddr <= 0 {
		c.MaxPerAddr = 32
	}

	return c
}

type conn struct {
	entity.Connection
	transport Transport
}

// Manager -.
type Manager struct {
	processID string
	cfg       Config
	log       logger.Interface

	mu     sync.RWMutex
	conns  map[string]*conn
	byAddr map[string]int
	closed bool

	// evMu serializes event sends against Shutdown closing the channel.
	evMu     sync.Mutex
	evClosed bool
	events   chan DisconnectEvent

	watchdogTicker *time.Ticker
	done           chan struct{}
	closeOnce      sync.Once
}

// NewManager -.
func NewManager(processID string, cfg Config, log logger.Interface) *Manager {
	cfg = cfg.withDefaults()

	m := &Manager{
		processID:      processID,
		cfg:            cfg,
		log:            log,
		conns:          make(map[string]*conn),
		byAddr:         make(map[string]int),
		events:         make(chan DisconnectEvent, 1024),
		watchdogTicker: time.NewTicker(cfg.HeartbeatInterval),
		done:           make(chan struct{}),
	}

	go m.watchdogLoop()

	return m
}

// ProcessID -.
func (m *Manager) ProcessID() string {
	return m.processID
}

// Disconnects delivers disconnect notifications in arrival order per
// connection. The channel is closed by Shutdown.
func (m *Manager) Disconnects() <-chan DisconnectEvent {
	return m.events
}

// Register adds a live transport and returns its connection id. The per-address
// cap is the first line of abuse mitigation for unauthenticated display
// sockets.
func (m *Manager) Register(role entity.Role, remoteIdentity, remoteAddr string, t Transport) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", ErrShuttingDown
	}

	if m.byAddr[remoteAddr] >= m.cfg.MaxPerAddr {
		return "", ErrTooManyConnections
	}

	id := uuid.NewString()
	m.conns[id] = &conn{
		Connection: entity.Connection{
			ID:             id,
			Role:           role,
			RemoteIdentity: remoteIdentity,
			RemoteAddr:     remoteAddr,
			LastSeenAt:     time.Now(),
		},
		transport: t,
	}
	m.byAddr[remoteAddr]++

	connectionsActive.WithLabelValues(string(role)).Inc()

	return id, nil
}

// SetIdentity binds the remote identity once it is known; display sockets
// register before announcing who they are.
func (m *Manager) SetIdentity(connectionID, remoteIdentity string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.conns[connectionID]; ok {
		c.RemoteIdentity = remoteIdentity
	}
}

// Heartbeat marks the connection alive. Any inbound frame counts.
func (m *Manager) Heartbeat(connectionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.conns[connectionID]; ok {
		c.LastSeenAt = time.Now()
	}
}

// Get returns a snapshot of the connection's metadata.
func (m *Manager) Get(connectionID string) (entity.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.conns[connectionID]
	if !ok {
		return entity.Connection{}, ErrNotFound
	}

	return c.Connection, nil
}

// Send writes a frame to a local connection. A write failure tears the
// connection down; pending senders racing a disconnect simply get ErrNotFound.
func (m *Manager) Send(connectionID string, frame []byte) error {
	m.mu.RLock()
	c, ok := m.conns[connectionID]
	m.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}

	if err := c.transport.WriteMessage(frame); err != nil {
		m.teardown(connectionID, "")

		return ErrNotFound
	}

	return nil
}

// CloseConnection force-closes a local connection, telling the peer why.
func (m *Manager) CloseConnection(connectionID, reason string) {
	m.teardown(connectionID, reason)
}

// Unregister removes a connection after its transport reported closure. Safe
// to call any number of times.
func (m *Manager) Unregister(connectionID string) {
	m.teardown(connectionID, "")
}

// teardown is the single removal path: it deletes the connection, closes the
// transport and emits the disconnect event, exactly once per connection.
func (m *Manager) teardown(connectionID, reason string) {
	m.mu.Lock()

	c, ok := m.conns[connectionID]
	if !ok {
		m.mu.Unlock()

		return
	}

	delete(m.conns, connectionID)

	m.byAddr[c.RemoteAddr]--
	if m.byAddr[c.RemoteAddr] <= 0 {
		delete(m.byAddr, c.RemoteAddr)
	}

	m.mu.Unlock()

	connectionsActive.WithLabelValues(string(c.Role)).Dec()

	if err := c.transport.Close(reason); err != nil {
		m.log.Debug("connections - teardown - transport.Close: %s", err)
	}

	m.emit(DisconnectEvent{
		ConnectionID:   connectionID,
		Role:           c.Role,
		RemoteIdentity: c.RemoteIdentity,
	})
}

// emit sends a disconnect event unless Shutdown already closed the channel.
func (m *Manager) emit(ev DisconnectEvent) {
	m.evMu.Lock()
	defer m.evMu.Unlock()

	if m.evClosed {
		return
	}

	m.events <- ev
}

func (m *Manager) watchdogLoop() {
	for {
		select {
		case <-m.watchdogTicker.C:
			m.sweepStale()
		case <-m.done:
			return
		}
	}
}

// sweepStale declares displays dead after the missed-heartbeat threshold,
// bounding disconnect detection latency independent of transport keepalive.
func (m *Manager) sweepStale() {
	deadline := time.Now().Add(-m.cfg.HeartbeatInterval * time.Duration(m.cfg.MissedThreshold))

	m.mu.RLock()

	var stale []string

	for id, c := range m.conns {
		if c.Role == entity.RoleDisplay && c.LastSeenAt.Before(deadline) {
			stale = append(stale, id)
		}
	}

	m.mu.RUnlock()

	for _, id := range stale {
		heartbeatTimeouts.Inc()
		m.log.Info("connections - watchdog closing stale connection %s", id)
		m.teardown(id, "heartbeat timeout")
	}
}

// Shutdown stops the watchdog, rejects further registrations and tears down
// every remaining connection before closing the event channel.
func (m *Manager) Shutdown() {
	m.closeOnce.Do(func() {
		m.watchdogTicker.Stop()
		close(m.done)

		m.mu.Lock()

		m.closed = true

		ids := make([]string, 0, len(m.conns))
		for id := range m.conns {
			ids = append(ids, id)
		}

		m.mu.Unlock()

		for _, id := range ids {
			m.teardown(id, entity.CloseReasonShutdown)
		}

		m.evMu.Lock()
		m.evClosed = true
		close(m.events)
		m.evMu.Unlock()
	})
}
