package pairing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/signage-toolkit/gateway/internal/entity"
)

type (
	// CodeRegistry is the shared pairing-code registry.
	CodeRegistry interface {
		Issue(ctx context.Context, displayID string, location entity.Location) (entity.PairingCode, error)
		ValidateAndConsume(ctx context.Context, code, controllerPrincipalID string) (entity.PairingCode, error)
		MarkDisplayLost(ctx context.Context, code string) error
		Revoke(ctx context.Context, code string) error
	}

	// SessionStore is the shared display ↔ controller binding store. Every
	// mutation is a conditional state transition.
	SessionStore interface {
		Create(ctx context.Context, session entity.Session) error
		AttachDisplay(ctx context.Context, displayID string, location entity.Location) (entity.Session, *entity.Location, error)
		DetachDisplay(ctx context.Context, displayID string, location entity.Location) (entity.Session, error)
		Heartbeat(ctx context.Context, displayID string, at time.Time) error
		Close(ctx context.Context, displayID, reason string, expectState entity.SessionState) (entity.Session, error)
		GetByDisplayID(ctx context.Context, displayID string) (entity.Session, error)
		GetBySessionID(ctx context.Context, sessionID string) (entity.Session, error)
		GetByController(ctx context.Context, principalID string) ([]entity.Session, error)
		AttachController(ctx context.Context, principalID string, location entity.Location) (*entity.Location, error)
		DetachController(ctx context.Context, principalID string, location entity.Location) error
	}

	// ConnectionRegistry is this process's live-socket table.
	ConnectionRegistry interface {
		ProcessID() string
		SetIdentity(connectionID, remoteIdentity string)
		Heartbeat(connectionID string)
		Get(connectionID string) (entity.Connection, error)
		CloseConnection(connectionID, reason string)
	}

	// Relay pushes events to either party of a session, wherever their socket
	// lives.
	Relay interface {
		SendToDisplay(ctx context.Context, displayID string, frame []byte) error
		SendToController(ctx context.Context, principalID string, frame []byte) error
		CloseTarget(ctx context.Context, loc entity.Location, reason string) error
	}

	// TokenService issues and verifies device tokens.
	TokenService interface {
		Issue(displayID string) (string, error)
		Verify(ctx context.Context, token string) (string, error)
		Revoke(ctx context.Context, displayID string) error
	}

	// ContentCatalog resolves content payload references before they are
	// pushed to a display. It is an external collaborator.
	ContentCatalog interface {
		ResolvePayload(ctx context.Context, displayID string, payload json.RawMessage) (json.RawMessage, error)
	}
)

// PassthroughCatalog forwards payloads unresolved, for deployments where
// controllers push fully materialized content.
type PassthroughCatalog struct{}

// ResolvePayload -.
func (PassthroughCatalog) ResolvePayload(_ context.Context, _ string, payload json.RawMessage) (json.RawMessage, error) {
	return payload, nil
}
