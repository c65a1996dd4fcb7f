package entity

import "time"

// Role distinguishes the two parties of a session on the wire.
type Role string

const (
	RoleDisplay    Role = "display"
	RoleController Role = "controller"
)

// Connection is a live transport-level socket. It is owned exclusively by the
// connection manager of the process that accepted it and is referenced across
// processes only through its Location.
type Connection struct {
	ID             string    `json:"id"`
	Role           Role      `json:"role"`
	RemoteIdentity string    `json:"remote_identity"`
	RemoteAddr     string    `json:"remote_addr"`
	LastSeenAt     time.Time `json:"last_seen_at"`
}
