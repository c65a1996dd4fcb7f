// Package pairing implements the protocol state machine: display announce,
// code issuance, controller claim, session binding, disconnect grace and
// teardown.
package pairing

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/signage-toolkit/gateway/internal/entity"
	"github.com/signage-toolkit/gateway/internal/entity/message/v1"
	"github.com/signage-toolkit/gateway/internal/repository/codes"
	"github.com/signage-toolkit/gateway/internal/repository/kvstore"
	"github.com/signage-toolkit/gateway/internal/repository/sessions"
	"github.com/signage-toolkit/gateway/internal/usecase/connections"
	"github.com/signage-toolkit/gateway/internal/usecase/relay"
	"github.com/signage-toolkit/gateway/pkg/gatewayerrors"
	"github.com/signage-toolkit/gateway/pkg/logger"
)

// ErrDisplayNoLongerAvailable is returned for a claim whose code was valid
// but whose announcing display has since dropped off.
var ErrDisplayNoLongerAvailable = errors.New("display no longer available")

var errPairing = gatewayerrors.CreateError("PairingUseCase")

// Config -.
type Config struct {
	CodeLength    int
	GracePeriod   time.Duration
	StoreTimeout  time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
}

func (c Config) withDefaults() Config {
	if c.CodeLength <= 0 {
		c.CodeLength = codes.DefaultLength
	}

	if c.GracePeriod <= 0 {
		c.GracePeriod = 90 * time.Second
	}

	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 500 * time.Millisecond
	}

	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 2
	}

	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 50 * time.Millisecond
	}

	return c
}

// UseCase -.
type UseCase struct {
	registry CodeRegistry
	sessions SessionStore
	conns    ConnectionRegistry
	relay    Relay
	tokens   TokenService
	catalog  ContentCatalog
	log      logger.Interface
	cfg      Config

	mu          sync.Mutex
	graceTimers map[string]*time.Timer // displayID -> pending grace expiry
	pending     map[string]string      // local connectionID -> unclaimed code
}

// New -.
func New(
	registry CodeRegistry,
	sessionStore SessionStore,
	conns ConnectionRegistry,
	relay Relay,
	tokens TokenService,
	catalog ContentCatalog,
	log logger.Interface,
	cfg Config,
) *UseCase {
	return &UseCase{
		registry:    registry,
		sessions:    sessionStore,
		conns:       conns,
		relay:       relay,
		tokens:      tokens,
		catalog:     catalog,
		log:         log,
		cfg:         cfg.withDefaults(),
		graceTimers: make(map[string]*time.Timer),
		pending:     make(map[string]string),
	}
}

// Announce handles a display's first frame: mint a display identity, issue a
// pairing code and hand it back for on-screen display.
func (uc *UseCase) Announce(ctx context.Context, connectionID string, _ message.DisplayInfo) (entity.PairingCode, error) {
	displayID := uuid.NewString()
	uc.conns.SetIdentity(connectionID, displayID)

	location := entity.Location{
		ProcessID:    uc.conns.ProcessID(),
		ConnectionID: connectionID,
	}

	var code entity.PairingCode

	err := uc.retryStore(ctx, func(opCtx context.Context) error {
		var issueErr error
		code, issueErr = uc.registry.Issue(opCtx, displayID, location)

		return issueErr
	})
	if err != nil {
		return entity.PairingCode{}, errPairing.Wrap("Announce", "registry.Issue", err)
	}

	uc.mu.Lock()
	uc.pending[connectionID] = code.Code
	uc.mu.Unlock()

	pairingsStarted.Inc()

	return code, nil
}

// ClaimCode consumes a submitted code on behalf of the controller and binds
// the two parties into an ACTIVE session.
func (uc *UseCase) ClaimCode(ctx context.Context, controllerPrincipalID, code string) (entity.Session, error) {
	if !codes.IsValid(code, uc.cfg.CodeLength) {
		pairingsFailed.WithLabelValues("code_not_found").Inc()

		return entity.Session{}, codes.ErrNotFound
	}

	var pc entity.PairingCode

	err := uc.retryStore(ctx, func(opCtx context.Context) error {
		var claimErr error
		pc, claimErr = uc.registry.ValidateAndConsume(opCtx, code, controllerPrincipalID)

		return claimErr
	})
	if err != nil {
		pairingsFailed.WithLabelValues(claimFailureReason(err)).Inc()

		return entity.Session{}, err
	}

	if pc.DisplayLocation.IsZero() {
		pairingsFailed.WithLabelValues("display_lost").Inc()

		return entity.Session{}, ErrDisplayNoLongerAvailable
	}

	sess := entity.Session{
		ID:                    uuid.NewString(),
		DisplayID:             pc.DisplayID,
		ControllerPrincipalID: controllerPrincipalID,
		State:                 entity.StatePending,
		CreatedAt:             time.Now().UTC(),
	}

	err = uc.retryStore(ctx, func(opCtx context.Context) error {
		return uc.sessions.Create(opCtx, sess)
	})
	if err != nil {
		return entity.Session{}, errPairing.Wrap("ClaimCode", "sessions.Create", err)
	}

	var bound entity.Session

	err = uc.retryStore(ctx, func(opCtx context.Context) error {
		var attachErr error
		bound, _, attachErr = uc.sessions.AttachDisplay(opCtx, pc.DisplayID, pc.DisplayLocation)

		return attachErr
	})
	if err != nil {
		uc.abandonClaim(ctx, pc.DisplayID)

		return entity.Session{}, errPairing.Wrap("ClaimCode", "sessions.AttachDisplay", err)
	}

	token, err := uc.tokens.Issue(pc.DisplayID)
	if err != nil {
		uc.abandonClaim(ctx, pc.DisplayID)

		return entity.Session{}, errPairing.Wrap("ClaimCode", "tokens.Issue", err)
	}

	frame, err := message.Encode(message.Paired{
		Type:                  message.TypePaired,
		SessionID:             bound.ID,
		ControllerPrincipalID: controllerPrincipalID,
		Token:                 token,
	})
	if err != nil {
		uc.abandonClaim(ctx, pc.DisplayID)

		return entity.Session{}, errPairing.Wrap("ClaimCode", "message.Encode", err)
	}

	// The paired push doubles as the liveness check: a display that dropped
	// between issuance and claim fails delivery and the fresh session is torn
	// straight back down.
	if err := uc.relay.SendToDisplay(ctx, pc.DisplayID, frame); err != nil {
		uc.abandonClaim(ctx, pc.DisplayID)
		pairingsFailed.WithLabelValues("display_lost").Inc()

		return entity.Session{}, ErrDisplayNoLongerAvailable
	}

	// The code is consumed; its pending entry must not translate a later
	// disconnect of this socket into MarkDisplayLost.
	if pc.DisplayLocation.ProcessID == uc.conns.ProcessID() {
		uc.mu.Lock()
		delete(uc.pending, pc.DisplayLocation.ConnectionID)
		uc.mu.Unlock()
	}

	pairingsCompleted.Inc()

	return bound, nil
}

// abandonClaim tears a half-built session back down so a claim that failed
// after sessions.Create never leaves a live record behind.
func (uc *UseCase) abandonClaim(ctx context.Context, displayID string) {
	if _, err := uc.sessions.Close(ctx, displayID, entity.CloseReasonDisplayLost, ""); err != nil {
		uc.log.Warn("pairing - abandonClaim - sessions.Close: %s", err)
	}
}

// Reconnect resumes a paired display presenting its device token. The newest
// attach wins; any stale socket still attached is evicted.
func (uc *UseCase) Reconnect(ctx context.Context, connectionID, token string) (entity.Session, error) {
	displayID, err := uc.tokens.Verify(ctx, token)
	if err != nil {
		return entity.Session{}, err
	}

	uc.conns.SetIdentity(connectionID, displayID)

	location := entity.Location{
		ProcessID:    uc.conns.ProcessID(),
		ConnectionID: connectionID,
	}

	var (
		sess       entity.Session
		superseded *entity.Location
	)

	err = uc.retryStore(ctx, func(opCtx context.Context) error {
		var attachErr error
		sess, superseded, attachErr = uc.sessions.AttachDisplay(opCtx, displayID, location)

		return attachErr
	})

	switch {
	case errors.Is(err, sessions.ErrNotFound), errors.Is(err, sessions.ErrClosed):
		return entity.Session{}, sessions.ErrClosed
	case err != nil:
		return entity.Session{}, errPairing.Wrap("Reconnect", "sessions.AttachDisplay", err)
	}

	uc.cancelGrace(displayID)

	if superseded != nil {
		if err := uc.relay.CloseTarget(ctx, *superseded, "superseded"); err != nil {
			uc.log.Warn("pairing - Reconnect - evicting superseded socket: %s", err)
		}
	}

	reconnects.Inc()
	uc.notifyDisplayStatus(ctx, sess, true)

	return sess, nil
}

// Heartbeat records display liveness on both the local connection and the
// shared session record.
func (uc *UseCase) Heartbeat(ctx context.Context, connectionID, displayID string) {
	uc.conns.Heartbeat(connectionID)

	if displayID == "" {
		return
	}

	err := uc.retryStore(ctx, func(opCtx context.Context) error {
		return uc.sessions.Heartbeat(opCtx, displayID, time.Now().UTC())
	})
	if err != nil && !errors.Is(err, sessions.ErrNotFound) {
		uc.log.Warn("pairing - Heartbeat - sessions.Heartbeat: %s", err)
	}
}

// ConsumeDisconnects processes the connection manager's disconnect stream
// until it closes. Events for one connection arrive in order.
func (uc *UseCase) ConsumeDisconnects(ctx context.Context, events <-chan connections.DisconnectEvent) {
	for ev := range events {
		uc.HandleDisconnect(ctx, ev)
	}
}

// HandleDisconnect reacts to a local socket going away: unclaimed codes are
// marked display-lost, bound displays enter the disconnect grace period, and
// controller locations are released.
func (uc *UseCase) HandleDisconnect(ctx context.Context, ev connections.DisconnectEvent) {
	uc.mu.Lock()
	pendingCode, hadPending := uc.pending[ev.ConnectionID]
	delete(uc.pending, ev.ConnectionID)
	uc.mu.Unlock()

	if hadPending {
		if err := uc.registry.MarkDisplayLost(ctx, pendingCode); err != nil {
			uc.log.Warn("pairing - HandleDisconnect - registry.MarkDisplayLost: %s", err)
		}
	}

	if ev.RemoteIdentity == "" {
		return
	}

	location := entity.Location{
		ProcessID:    uc.conns.ProcessID(),
		ConnectionID: ev.ConnectionID,
	}

	switch ev.Role {
	case entity.RoleDisplay:
		uc.handleDisplayDisconnect(ctx, ev.RemoteIdentity, location)
	case entity.RoleController:
		err := uc.retryStore(ctx, func(opCtx context.Context) error {
			return uc.sessions.DetachController(opCtx, ev.RemoteIdentity, location)
		})
		if err != nil && !errors.Is(err, sessions.ErrNotFound) && !errors.Is(err, sessions.ErrLocationMismatch) {
			uc.log.Warn("pairing - HandleDisconnect - sessions.DetachController: %s", err)
		}
	}
}

func (uc *UseCase) handleDisplayDisconnect(ctx context.Context, displayID string, location entity.Location) {
	var sess entity.Session

	err := uc.retryStore(ctx, func(opCtx context.Context) error {
		var detachErr error
		sess, detachErr = uc.sessions.DetachDisplay(opCtx, displayID, location)

		return detachErr
	})

	switch {
	case errors.Is(err, sessions.ErrLocationMismatch):
		// Superseded by a newer attach; the winner owns the session now.
		return
	case errors.Is(err, sessions.ErrNotFound), errors.Is(err, sessions.ErrClosed):
		return
	case err != nil:
		uc.log.Error(errPairing.Wrap("handleDisplayDisconnect", "sessions.DetachDisplay", err))

		return
	}

	uc.startGrace(displayID)
	uc.notifyDisplayStatus(ctx, sess, false)
}

// Unpair ends the session at the controller's request. The display is told to
// re-announce if it wants to pair again.
func (uc *UseCase) Unpair(ctx context.Context, controllerPrincipalID, displayID string) error {
	sess, err := uc.ownedSession(ctx, controllerPrincipalID, displayID)
	if err != nil {
		return err
	}

	return uc.closeSession(ctx, sess, entity.CloseReasonUnpaired, false)
}

// Revoke administratively ends the session and bars the display's device
// token from ever resuming.
func (uc *UseCase) Revoke(ctx context.Context, displayID string) error {
	sess, err := uc.getSession(ctx, displayID)
	if err != nil {
		return err
	}

	if err := uc.tokens.Revoke(ctx, displayID); err != nil {
		return err
	}

	return uc.closeSession(ctx, sess, entity.CloseReasonRevoked, true)
}

// PushContent relays a content update to a display the principal controls.
func (uc *UseCase) PushContent(ctx context.Context, controllerPrincipalID, displayID string, payload json.RawMessage) error {
	if _, err := uc.ownedSession(ctx, controllerPrincipalID, displayID); err != nil {
		return err
	}

	resolved, err := uc.catalog.ResolvePayload(ctx, displayID, payload)
	if err != nil {
		return errPairing.Wrap("PushContent", "catalog.ResolvePayload", err)
	}

	frame, err := message.Encode(message.ContentUpdate{
		Type:    message.TypeContentUpdate,
		Payload: resolved,
	})
	if err != nil {
		return errPairing.Wrap("PushContent", "message.Encode", err)
	}

	return uc.relay.SendToDisplay(ctx, displayID, frame)
}

// RequestScreenshot asks a display for a capture and returns the request id
// the result will carry.
func (uc *UseCase) RequestScreenshot(ctx context.Context, controllerPrincipalID, displayID string) (string, error) {
	if _, err := uc.ownedSession(ctx, controllerPrincipalID, displayID); err != nil {
		return "", err
	}

	requestID := uuid.NewString()

	frame, err := message.Encode(message.ScreenshotRequest{
		Type:      message.TypeScreenshotRequest,
		RequestID: requestID,
	})
	if err != nil {
		return "", errPairing.Wrap("RequestScreenshot", "message.Encode", err)
	}

	if err := uc.relay.SendToDisplay(ctx, displayID, frame); err != nil {
		return "", err
	}

	return requestID, nil
}

// HandleScreenshotUpload forwards a display's capture to its controller.
func (uc *UseCase) HandleScreenshotUpload(ctx context.Context, displayID, requestID, url string) error {
	sess, err := uc.getSession(ctx, displayID)
	if err != nil {
		return err
	}

	frame, err := message.Encode(message.ScreenshotResult{
		Type:      message.TypeScreenshotResult,
		DisplayID: displayID,
		RequestID: requestID,
		URL:       url,
	})
	if err != nil {
		return errPairing.Wrap("HandleScreenshotUpload", "message.Encode", err)
	}

	return uc.relay.SendToController(ctx, sess.ControllerPrincipalID, frame)
}

// ControllerConnected records the principal's live socket and replays the
// current status of every display it controls.
func (uc *UseCase) ControllerConnected(ctx context.Context, controllerPrincipalID, connectionID string) error {
	location := entity.Location{
		ProcessID:    uc.conns.ProcessID(),
		ConnectionID: connectionID,
	}

	var superseded *entity.Location

	err := uc.retryStore(ctx, func(opCtx context.Context) error {
		var attachErr error
		superseded, attachErr = uc.sessions.AttachController(opCtx, controllerPrincipalID, location)

		return attachErr
	})
	if err != nil {
		return errPairing.Wrap("ControllerConnected", "sessions.AttachController", err)
	}

	if superseded != nil {
		if err := uc.relay.CloseTarget(ctx, *superseded, "superseded"); err != nil {
			uc.log.Warn("pairing - ControllerConnected - evicting superseded socket: %s", err)
		}
	}

	bound, err := uc.sessions.GetByController(ctx, controllerPrincipalID)
	if err != nil {
		uc.log.Warn("pairing - ControllerConnected - sessions.GetByController: %s", err)

		return nil
	}

	for i := range bound {
		uc.notifyDisplayStatus(ctx, bound[i], bound[i].DisplayOnline())
	}

	return nil
}

// ListSessions returns every non-closed session bound to the principal.
func (uc *UseCase) ListSessions(ctx context.Context, controllerPrincipalID string) ([]entity.Session, error) {
	var bound []entity.Session

	err := uc.retryStore(ctx, func(opCtx context.Context) error {
		var listErr error
		bound, listErr = uc.sessions.GetByController(opCtx, controllerPrincipalID)

		return listErr
	})
	if err != nil {
		return nil, errPairing.Wrap("ListSessions", "sessions.GetByController", err)
	}

	return bound, nil
}

func (uc *UseCase) ownedSession(ctx context.Context, controllerPrincipalID, displayID string) (entity.Session, error) {
	sess, err := uc.getSession(ctx, displayID)
	if err != nil {
		return entity.Session{}, err
	}

	if sess.ControllerPrincipalID != controllerPrincipalID {
		return entity.Session{}, sessions.ErrNotFound
	}

	return sess, nil
}

func (uc *UseCase) getSession(ctx context.Context, displayID string) (entity.Session, error) {
	var sess entity.Session

	err := uc.retryStore(ctx, func(opCtx context.Context) error {
		var getErr error
		sess, getErr = uc.sessions.GetByDisplayID(opCtx, displayID)

		return getErr
	})
	if err != nil {
		return entity.Session{}, err
	}

	if sess.State == entity.StateClosed {
		return entity.Session{}, sessions.ErrNotFound
	}

	return sess, nil
}

func (uc *UseCase) closeSession(ctx context.Context, sess entity.Session, reason string, revoked bool) error {
	_, err := uc.sessions.Close(ctx, sess.DisplayID, reason, "")
	if err != nil && !errors.Is(err, sessions.ErrClosed) {
		return errPairing.Wrap("closeSession", "sessions.Close", err)
	}

	uc.cancelGrace(sess.DisplayID)
	sessionsClosed.WithLabelValues(reason).Inc()

	frame, encErr := message.Encode(message.SessionClosed{
		Type:   message.TypeSessionClosed,
		Reason: reason,
	})
	if encErr != nil {
		return errPairing.Wrap("closeSession", "message.Encode", encErr)
	}

	// Both parties learn the relationship is over. The display keeps its
	// socket unless revoked; re-pairing starts with a fresh announce.
	if sess.DisplayLocation != nil {
		if sendErr := uc.relay.SendToDisplay(ctx, sess.DisplayID, frame); sendErr != nil && !errors.Is(sendErr, relay.ErrTargetOffline) {
			uc.log.Warn("pairing - closeSession - notify display: %s", sendErr)
		}

		if revoked {
			if closeErr := uc.relay.CloseTarget(ctx, *sess.DisplayLocation, reason); closeErr != nil {
				uc.log.Warn("pairing - closeSession - drop display socket: %s", closeErr)
			}
		}
	}

	if sendErr := uc.relay.SendToController(ctx, sess.ControllerPrincipalID, frame); sendErr != nil && !errors.Is(sendErr, relay.ErrTargetOffline) {
		uc.log.Warn("pairing - closeSession - notify controller: %s", sendErr)
	}

	return nil
}

func (uc *UseCase) notifyDisplayStatus(ctx context.Context, sess entity.Session, online bool) {
	frame, err := message.Encode(message.DisplayStatus{
		Type:      message.TypeDisplayStatus,
		DisplayID: sess.DisplayID,
		Online:    online,
	})
	if err != nil {
		uc.log.Error(errPairing.Wrap("notifyDisplayStatus", "message.Encode", err))

		return
	}

	if err := uc.relay.SendToController(ctx, sess.ControllerPrincipalID, frame); err != nil && !errors.Is(err, relay.ErrTargetOffline) {
		uc.log.Warn("pairing - notifyDisplayStatus - relay.SendToController: %s", err)
	}
}

// startGrace arms the reconnect window for a disconnected display. If it
// fires, the close is conditional on the session still being disconnected, so
// a reconnect that won the race is never undone.
func (uc *UseCase) startGrace(displayID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if t, ok := uc.graceTimers[displayID]; ok {
		t.Stop()
	}

	uc.graceTimers[displayID] = time.AfterFunc(uc.cfg.GracePeriod, func() {
		uc.graceExpired(displayID)
	})
}

func (uc *UseCase) cancelGrace(displayID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if t, ok := uc.graceTimers[displayID]; ok {
		t.Stop()
		delete(uc.graceTimers, displayID)
	}
}

func (uc *UseCase) graceExpired(displayID string) {
	ctx, cancel := context.WithTimeout(context.Background(), uc.cfg.StoreTimeout*time.Duration(uc.cfg.RetryAttempts+1))
	defer cancel()

	uc.mu.Lock()
	delete(uc.graceTimers, displayID)
	uc.mu.Unlock()

	sess, err := uc.sessions.Close(ctx, displayID, entity.CloseReasonGraceExpiry, entity.StateDisplayDisconnected)

	switch {
	case errors.Is(err, sessions.ErrStateChanged), errors.Is(err, sessions.ErrNotFound), errors.Is(err, sessions.ErrClosed):
		return
	case err != nil:
		uc.log.Error(errPairing.Wrap("graceExpired", "sessions.Close", err))

		return
	}

	sessionsClosed.WithLabelValues(entity.CloseReasonGraceExpiry).Inc()

	frame, err := message.Encode(message.SessionClosed{
		Type:   message.TypeSessionClosed,
		Reason: entity.CloseReasonGraceExpiry,
	})
	if err != nil {
		return
	}

	if err := uc.relay.SendToController(ctx, sess.ControllerPrincipalID, frame); err != nil && !errors.Is(err, relay.ErrTargetOffline) {
		uc.log.Warn("pairing - graceExpired - relay.SendToController: %s", err)
	}
}

// retryStore applies the bounded-timeout, bounded-retry policy for shared
// store round trips. Only infrastructure errors are retried; protocol errors
// surface immediately.
func (uc *UseCase) retryStore(ctx context.Context, op func(context.Context) error) error {
	backoff := uc.cfg.RetryBackoff

	var err error

	for attempt := 0; attempt <= uc.cfg.RetryAttempts; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, uc.cfg.StoreTimeout)
		err = op(opCtx)

		cancel()

		if err == nil || !isRetryable(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}

		backoff *= 2
	}

	storeRetriesExhausted.Inc()

	return err
}

func isRetryable(err error) bool {
	return errors.Is(err, kvstore.ErrTimeout) || errors.Is(err, kvstore.ErrUnavailable)
}

func claimFailureReason(err error) string {
	switch {
	case errors.Is(err, codes.ErrExpired):
		return "code_expired"
	case errors.Is(err, codes.ErrAlreadyConsumed):
		return "code_already_consumed"
	case errors.Is(err, codes.ErrNotFound):
		return "code_not_found"
	default:
		return "store_error"
	}
}
