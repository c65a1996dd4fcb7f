package wsv1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/signage-toolkit/gateway/internal/entity"
	"github.com/signage-toolkit/gateway/internal/entity/message/v1"
	"github.com/signage-toolkit/gateway/internal/repository/codes"
	"github.com/signage-toolkit/gateway/internal/repository/sessions"
	"github.com/signage-toolkit/gateway/internal/usecase/pairing"
	"github.com/signage-toolkit/gateway/internal/usecase/relay"
	"github.com/signage-toolkit/gateway/pkg/logger"
)

type controllerRoutes struct {
	p        PairingService
	conns    ConnectionRegistrar
	auth     Authenticator
	limiter  ClaimLimiter
	upgrader *websocket.Upgrader
	log      logger.Interface
}

// serve authenticates the controller, registers its socket for event
// delivery and runs its command pump.
func (r *controllerRoutes) serve(c *gin.Context) {
	principal, err := r.auth.Authenticate(c.Request.Context(), bearerToken(c))
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)

		return
	}

	ws, err := r.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		r.log.Warn("ws - v1 - controller upgrade: %s", err)

		return
	}

	transport := newTransport(ws)

	connID, err := r.conns.Register(entity.RoleController, principal, c.ClientIP(), transport)
	if err != nil {
		_ = transport.Close("unavailable")

		return
	}

	defer r.conns.Unregister(connID)

	if err := r.p.ControllerConnected(c.Request.Context(), principal, connID); err != nil {
		r.log.Error(err, "ws - v1 - controller connect")
		r.sendError(connID, "try_again", "could not register the connection")

		return
	}

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
		case message.TypeClaimCode:
			r.handleClaim(c, connID, principal, data)
		case message.TypePushContent:
			r.handlePushContent(c, connID, principal, data)
		case message.TypeRequestScreenshot:
			r.handleRequestScreenshot(c, connID, principal, data)
		case message.TypeUnpair:
			r.handleUnpair(c, connID, principal, data)
		case message.TypeHeartbeat:
			r.p.Heartbeat(c.Request.Context(), connID, "")
		default:
			r.sendError(connID, "bad_frame", "unexpected type "+string(msgType))
		}
	}
}

func (r *controllerRoutes) handleClaim(c *gin.Context, connID, principal string, data []byte) {
	req, err := message.Decode[message.ClaimCode](data)
	if err != nil {
		r.sendError(connID, "bad_frame", "malformed claim_code")

		return
	}

	allowed, err := r.limiter.Allow(c.Request.Context(), "claim:"+principal)
	if err != nil {
		r.log.Warn("ws - v1 - claim limiter: %s", err)
	}

	if !allowed && err == nil {
		r.sendPairFailed(connID, "rate_limited")

		return
	}

	sess, err := r.p.ClaimCode(c.Request.Context(), principal, req.Code)
	if err != nil {
		r.sendPairFailed(connID, claimReason(err))

		return
	}

	r.send(connID, message.PairSuccess{
		Type:      message.TypePairSuccess,
		DisplayID: sess.DisplayID,
		SessionID: sess.ID,
	})
}

func (r *controllerRoutes) handlePushContent(c *gin.Context, connID, principal string, data []byte) {
	req, err := message.Decode[message.PushContent](data)
	if err != nil {
		r.sendError(connID, "bad_frame", "malformed push_content")

		return
	}

	err = r.p.PushContent(c.Request.Context(), principal, req.DisplayID, req.Payload)
	r.reportCommandResult(connID, err, "ws - v1 - push_content")
}

func (r *controllerRoutes) handleRequestScreenshot(c *gin.Context, connID, principal string, data []byte) {
	req, err := message.Decode[message.RequestScreenshot](data)
	if err != nil {
		r.sendError(connID, "bad_frame", "malformed request_screenshot")

		return
	}

	_, err = r.p.RequestScreenshot(c.Request.Context(), principal, req.DisplayID)
	r.reportCommandResult(connID, err, "ws - v1 - request_screenshot")
}

func (r *controllerRoutes) handleUnpair(c *gin.Context, connID, principal string, data []byte) {
	req, err := message.Decode[message.Unpair](data)
	if err != nil {
		r.sendError(connID, "bad_frame", "malformed unpair")

		return
	}

	err = r.p.Unpair(c.Request.Context(), principal, req.DisplayID)
	r.reportCommandResult(connID, err, "ws - v1 - unpair")
}

func (r *controllerRoutes) reportCommandResult(connID string, err error, logPrefix string) {
	switch {
	case err == nil:
	case errors.Is(err, sessions.ErrNotFound):
		r.sendError(connID, "unknown_display", "no session for that display")
	case errors.Is(err, relay.ErrTargetOffline):
		r.sendError(connID, "display_offline", "display is not connected right now")
	default:
		r.log.Error(err, logPrefix)
		r.sendError(connID, "try_again", "command failed")
	}
}

func (r *controllerRoutes) send(connID string, msg any) {
	frame, err := message.Encode(msg)
	if err != nil {
		r.log.Error(err, "ws - v1 - controller encode")

		return
	}

	_ = r.conns.Send(connID, frame)
}

func (r *controllerRoutes) sendError(connID, kind, msg string) {
	r.send(connID, message.Error{
		Type:    message.TypeError,
		Kind:    kind,
		Message: msg,
	})
}

func (r *controllerRoutes) sendPairFailed(connID, reason string) {
	r.send(connID, message.PairFailed{
		Type:   message.TypePairFailed,
		Reason: reason,
	})
}

// claimReason maps a claim error to the wire reason. Everything the principal
// has no business distinguishing collapses to code_not_found.
func claimReason(err error) string {
	switch {
	case errors.Is(err, codes.ErrExpired):
		return "code_expired"
	case errors.Is(err, codes.ErrAlreadyConsumed):
		return "code_already_consumed"
	case errors.Is(err, pairing.ErrDisplayNoLongerAvailable):
		return "display_no_longer_available"
	case errors.Is(err, codes.ErrNotFound):
		return "code_not_found"
	default:
		return "try_again"
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return after
	}

	// Browser websocket clients cannot set headers; allow the credential as
	// a query parameter.
	return c.Query("access_token")
}
