// Package dto holds the request and response shapes of the v1 HTTP API.
package dto

import (
	"time"

	"github.com/signage-toolkit/gateway/internal/entity"
)

// Session is the API view of a display binding.
type Session struct {
	ID                     string    `json:"id"`
	DisplayID              string    `json:"display_id"`
	ControllerPrincipalID  string    `json:"controller_principal_id"`
	State                  string    `json:"state"`
	DisplayOnline          bool      `json:"display_online"`
	CreatedAt              time.Time `json:"created_at"`
	LastDisplayHeartbeatAt time.Time `json:"last_display_heartbeat_at,omitempty"`
}

// FromSession -.
func FromSession(s entity.Session) Session {
	return Session{
		ID:                     s.ID,
		DisplayID:              s.DisplayID,
		ControllerPrincipalID:  s.ControllerPrincipalID,
		State:                  string(s.State),
		DisplayOnline:          s.DisplayOnline(),
		CreatedAt:              s.CreatedAt,
		LastDisplayHeartbeatAt: s.LastDisplayHeartbeatAt,
	}
}

// Version reports build information.
type Version struct {
	Version   string `json:"version"`
	ProcessID string `json:"process_id"`
}
