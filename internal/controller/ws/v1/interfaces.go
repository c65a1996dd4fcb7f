package wsv1

import (
	"context"
	"encoding/json"

	"github.com/signage-toolkit/gateway/internal/entity"
	"github.com/signage-toolkit/gateway/internal/entity/message/v1"
	"github.com/signage-toolkit/gateway/internal/usecase/connections"
)

type (
	// PairingService is the protocol surface the socket handlers drive.
	PairingService interface {
		Announce(ctx context.Context, connectionID string, info message.DisplayInfo) (entity.PairingCode, error)
		Reconnect(ctx context.Context, connectionID, token string) (entity.Session, error)
		Heartbeat(ctx context.Context, connectionID, displayID string)
		HandleScreenshotUpload(ctx context.Context, displayID, requestID, url string) error
		ClaimCode(ctx context.Context, controllerPrincipalID, code string) (entity.Session, error)
		PushContent(ctx context.Context, controllerPrincipalID, displayID string, payload json.RawMessage) error
		RequestScreenshot(ctx context.Context, controllerPrincipalID, displayID string) (string, error)
		Unpair(ctx context.Context, controllerPrincipalID, displayID string) error
		ControllerConnected(ctx context.Context, controllerPrincipalID, connectionID string) error
	}

	// ConnectionRegistrar is the slice of the connection manager the handlers
	// need. Responses go through Send so write failures share one teardown
	// path.
	ConnectionRegistrar interface {
		Register(role entity.Role, remoteIdentity, remoteAddr string, t connections.Transport) (string, error)
		Unregister(connectionID string)
		Send(connectionID string, frame []byte) error
	}

	// Authenticator verifies a controller credential and yields its principal.
	Authenticator interface {
		Authenticate(ctx context.Context, token string) (string, error)
	}

	// ClaimLimiter throttles pairing-code claims.
	ClaimLimiter interface {
		Allow(ctx context.Context, key string) (bool, error)
	}
)
