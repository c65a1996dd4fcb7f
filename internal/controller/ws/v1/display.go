package wsv1

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/signage-toolkit/gateway/internal/entity"
	"github.com/signage-toolkit/gateway/internal/entity/message/v1"
	"github.com/signage-toolkit/gateway/internal/repository/sessions"
	"github.com/signage-toolkit/gateway/internal/usecase/connections"
	"github.com/signage-toolkit/gateway/internal/usecase/identity"
	"github.com/signage-toolkit/gateway/pkg/logger"
)

type displayRoutes struct {
	p        PairingService
	conns    ConnectionRegistrar
	upgrader *websocket.Upgrader
	log      logger.Interface
}

// serve runs the display socket's read pump. A display speaks either the
// announce flow (brand new) or the reconnect flow (holding a device token),
// then heartbeats until it drops.
func (r *displayRoutes) serve(c *gin.Context) {
	ws, err := r.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		r.log.Warn("ws - v1 - display upgrade: %s", err)

		return
	}

	transport := newTransport(ws)

	connID, err := r.conns.Register(entity.RoleDisplay, "", c.ClientIP(), transport)
	if err != nil {
		if errors.Is(err, connections.ErrTooManyConnections) {
			_ = transport.Close("too many connections")
		} else {
			_ = transport.Close("unavailable")
		}

		return
	}

	defer r.conns.Unregister(connID)

	// Set once announce or reconnect succeeds. Frames that need a bound
	// identity are rejected before then.
	displayID := ""

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		msgType, err := message.DecodeType(data)
		if err != nil {
			r.sendError(connID, "bad_frame", "missing or invalid type")

			continue
		}

		switch msgType {
		case message.TypeAnnounce:
			if id, ok := r.handleAnnounce(c, connID, data); ok {
				displayID = id
			}
		case message.TypeReconnect:
			if id, ok := r.handleReconnect(c, connID, data); ok {
				displayID = id
			}
		case message.TypeHeartbeat:
			r.p.Heartbeat(c.Request.Context(), connID, displayID)
		case message.TypeScreenshotUpload:
			r.handleScreenshotUpload(c, connID, displayID, data)
		default:
			r.sendError(connID, "bad_frame", "unexpected type "+string(msgType))
		}
	}
}

// handleAnnounce reports the minted display id so heartbeats after a claim
// reach the session record.
func (r *displayRoutes) handleAnnounce(c *gin.Context, connID string, data []byte) (string, bool) {
	req, err := message.Decode[message.Announce](data)
	if err != nil {
		r.sendError(connID, "bad_frame", "malformed announce")

		return "", false
	}

	code, err := r.p.Announce(c.Request.Context(), connID, req.Display)
	if err != nil {
		r.log.Error(err, "ws - v1 - announce")
		r.sendError(connID, "try_again", "could not issue a pairing code")

		return "", false
	}

	r.send(connID, message.PairingCode{
		Type:      message.TypePairingCode,
		Code:      code.Code,
		ExpiresAt: code.ExpiresAt,
	})

	return code.DisplayID, true
}

// handleReconnect reports the bound display id so the pump can attribute
// subsequent heartbeats.
func (r *displayRoutes) handleReconnect(c *gin.Context, connID string, data []byte) (string, bool) {
	req, err := message.Decode[message.Reconnect](data)
	if err != nil {
		r.sendError(connID, "bad_frame", "malformed reconnect")

		return "", false
	}

	sess, err := r.p.Reconnect(c.Request.Context(), connID, req.Token)

	switch {
	case errors.Is(err, identity.ErrInvalidToken), errors.Is(err, identity.ErrExpiredToken), errors.Is(err, identity.ErrRevokedToken):
		r.sendError(connID, "invalid_token", "token rejected, announce to pair again")

		return "", false
	case errors.Is(err, sessions.ErrClosed):
		r.sendError(connID, "session_gone", "session is gone, announce to pair again")

		return "", false
	case err != nil:
		r.log.Error(err, "ws - v1 - reconnect")
		r.sendError(connID, "try_again", "could not resume the session")

		return "", false
	}

	r.send(connID, message.Paired{
		Type:                  message.TypePaired,
		SessionID:             sess.ID,
		ControllerPrincipalID: sess.ControllerPrincipalID,
	})

	return sess.DisplayID, true
}

func (r *displayRoutes) handleScreenshotUpload(c *gin.Context, connID, displayID string, data []byte) {
	if displayID == "" {
		r.sendError(connID, "bad_frame", "screenshot_upload before pairing")

		return
	}

	req, err := message.Decode[message.ScreenshotUpload](data)
	if err != nil {
		r.sendError(connID, "bad_frame", "malformed screenshot_upload")

		return
	}

	if err := r.p.HandleScreenshotUpload(c.Request.Context(), displayID, req.RequestID, req.URL); err != nil {
		r.log.Warn("ws - v1 - screenshot_upload: %s", err)
	}
}

func (r *displayRoutes) send(connID string, msg any) {
	frame, err := message.Encode(msg)
	if err != nil {
		r.log.Error(err, "ws - v1 - display encode")

		return
	}

	// A write failure tears the connection down inside the manager; the read
	// pump then exits on its own.
	_ = r.conns.Send(connID, frame)
}

func (r *displayRoutes) sendError(connID, kind, msg string) {
	r.send(connID, message.Error{
		Type:    message.TypeError,
		Kind:    kind,
		Message: msg,
	})
}
