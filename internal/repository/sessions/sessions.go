// Package sessions implements the shared session store: the authoritative
// display ↔ controller binding with compare-and-set state transitions, so
// concurrent attaches from different gateway processes resolve
// deterministically.
package sessions

import (
	"errors"
	"time"

	"github.com/signage-toolkit/gateway/internal/entity"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrClosed           = errors.New("session closed")
	ErrConflict         = errors.New("display already has an unclosed session")
	ErrLocationMismatch = errors.New("connection no longer owns this session side")
	ErrStateChanged     = errors.New("session state changed concurrently")
)

const (
	// Closed sessions are retained briefly so late lookups see CLOSED rather
	// than vanishing, then evicted.
	_closedRetention = time.Hour

	// Grace timers live in the gateway process that saw the disconnect. A
	// DISPLAY_DISCONNECTED record whose timer died with its process is evicted
	// after this retention instead of lingering forever.
	_disconnectedRetention = time.Hour
)

// record is the persisted shape. Locations are flattened and times are unix
// milliseconds so the Redis-side scripts can update fields without a Go round
// trip.
type record struct {
	ID                    string `json:"id"`
	DisplayID             string `json:"display_id"`
	ControllerPrincipalID string `json:"controller_principal_id"`
	DisplayProcessID      string `json:"display_process_id"`
	DisplayConnectionID   string `json:"display_connection_id"`
	State                 string `json:"state"`
	CreatedAtMs           int64  `json:"created_at_ms"`
	LastHeartbeatMs       int64  `json:"last_heartbeat_ms"`
	CloseReason           string `json:"close_reason"`
}

func toRecord(s entity.Session) record {
	rec := record{
		ID:                    s.ID,
		DisplayID:             s.DisplayID,
		ControllerPrincipalID: s.ControllerPrincipalID,
		State:                 string(s.State),
		CreatedAtMs:           s.CreatedAt.UnixMilli(),
		LastHeartbeatMs:       s.LastDisplayHeartbeatAt.UnixMilli(),
		CloseReason:           s.CloseReason,
	}

	if s.DisplayLocation != nil {
		rec.DisplayProcessID = s.DisplayLocation.ProcessID
		rec.DisplayConnectionID = s.DisplayLocation.ConnectionID
	}

	return rec
}

func (r record) toSession(controllerLocation *entity.Location) entity.Session {
	s := entity.Session{
		ID:                     r.ID,
		DisplayID:              r.DisplayID,
		ControllerPrincipalID:  r.ControllerPrincipalID,
		ControllerLocation:     controllerLocation,
		State:                  entity.SessionState(r.State),
		CreatedAt:              time.UnixMilli(r.CreatedAtMs).UTC(),
		LastDisplayHeartbeatAt: time.UnixMilli(r.LastHeartbeatMs).UTC(),
		CloseReason:            r.CloseReason,
	}

	if r.DisplayProcessID != "" || r.DisplayConnectionID != "" {
		s.DisplayLocation = &entity.Location{
			ProcessID:    r.DisplayProcessID,
			ConnectionID: r.DisplayConnectionID,
		}
	}

	return s
}
