package entity

import "time"

// SessionState tracks the lifecycle of a pairing binding.
type SessionState string

const (
	StatePending             SessionState = "PENDING"
	StateActive              SessionState = "ACTIVE"
	StateDisplayDisconnected SessionState = "DISPLAY_DISCONNECTED"
	StateClosed              SessionState = "CLOSED"
)

// Close reasons recorded on terminal sessions and reported to both parties.
const (
	CloseReasonUnpaired    = "unpaired"
	CloseReasonDisplayLost = "display_lost"
	CloseReasonRevoked     = "revoked"
	CloseReasonGraceExpiry = "grace_period_expired"
	CloseReasonShutdown    = "gateway_shutdown"
)

// Location identifies which gateway process owns a transport connection.
// Connections are never shared between processes; a Location is the only
// cross-process handle to one.
type Location struct {
	ProcessID    string `json:"process_id"`
	ConnectionID string `json:"connection_id"`
}

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool {
	return l.ProcessID == "" && l.ConnectionID == ""
}

// Session is the durable binding between a display identity and the
// controller principal that claimed it. It outlives any single transport
// connection on either side.
type Session struct {
	ID                     string       `json:"id"`
	DisplayID              string       `json:"display_id"`
	ControllerPrincipalID  string       `json:"controller_principal_id"`
	DisplayLocation        *Location    `json:"display_location,omitempty"`
	ControllerLocation     *Location    `json:"controller_location,omitempty"`
	State                  SessionState `json:"state"`
	CreatedAt              time.Time    `json:"created_at"`
	LastDisplayHeartbeatAt time.Time    `json:"last_display_heartbeat_at"`
	CloseReason            string       `json:"close_reason,omitempty"`
}

// DisplayOnline reports whether the display side currently has a live
// transport attached.
func (s *Session) DisplayOnline() bool {
	return s.State == StateActive && s.DisplayLocation != nil
}
