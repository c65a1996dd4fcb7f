// Package relay delivers events between the two bound parties of a session,
// across processes when the target's socket lives elsewhere. Delivery is
// at-most-once with no buffering: an offline target means the event is
// dropped and the party reconciles on its next connect.
package relay

import (
	"context"
	"errors"

	"github.com/signage-toolkit/gateway/internal/entity"
	"github.com/signage-toolkit/gateway/internal/repository/bus"
	"github.com/signage-toolkit/gateway/internal/repository/sessions"
	"github.com/signage-toolkit/gateway/pkg/logger"
)

// ErrTargetOffline is a normal outcome, not a fault: the event was dropped
// because no live socket represents the target right now.
var ErrTargetOffline = errors.New("target offline")

// SessionLocator resolves where each party of a session is connected.
type SessionLocator interface {
	GetByDisplayID(ctx context.Context, displayID string) (entity.Session, error)
	GetControllerLocation(ctx context.Context, principalID string) (*entity.Location, error)
}

// LocalSender delivers frames to, and drops, connections owned by this
// process.
type LocalSender interface {
	ProcessID() string
	Send(connectionID string, frame []byte) error
	CloseConnection(connectionID, reason string)
}

// Service -.
type Service struct {
	sessions SessionLocator
	local    LocalSender
	bus      bus.Bus
	log      logger.Interface
}

// New -.
func New(sessionLocator SessionLocator, local LocalSender, b bus.Bus, log logger.Interface) *Service {
	return &Service{
		sessions: sessionLocator,
		local:    local,
		bus:      b,
		log:      log,
	}
}

// SendToDisplay delivers a frame to the display of an ACTIVE session.
func (s *Service) SendToDisplay(ctx context.Context, displayID string, frame []byte) error {
	sess, err := s.sessions.GetByDisplayID(ctx, displayID)
	if errors.Is(err, sessions.ErrNotFound) {
		relayDeliveries.WithLabelValues("offline").Inc()

		return ErrTargetOffline
	}

	if err != nil {
		return err
	}

	if !sess.DisplayOnline() {
		relayDeliveries.WithLabelValues("offline").Inc()

		return ErrTargetOffline
	}

	return s.deliver(ctx, *sess.DisplayLocation, frame)
}

// SendToController delivers a frame to the principal's live controller
// socket.
func (s *Service) SendToController(ctx context.Context, principalID string, frame []byte) error {
	loc, err := s.sessions.GetControllerLocation(ctx, principalID)
	if err != nil {
		return err
	}

	if loc == nil {
		relayDeliveries.WithLabelValues("offline").Inc()

		return ErrTargetOffline
	}

	return s.deliver(ctx, *loc, frame)
}

func (s *Service) deliver(ctx context.Context, loc entity.Location, frame []byte) error {
	if loc.ProcessID == s.local.ProcessID() {
		if err := s.local.Send(loc.ConnectionID, frame); err != nil {
			relayDeliveries.WithLabelValues("offline").Inc()

			return ErrTargetOffline
		}

		relayDeliveries.WithLabelValues("local").Inc()

		return nil
	}

	if err := s.bus.Publish(ctx, loc.ProcessID, bus.Envelope{
		ConnectionID: loc.ConnectionID,
		Frame:        frame,
	}); err != nil {
		return err
	}

	relayDeliveries.WithLabelValues("remote").Inc()

	return nil
}

// CloseTarget drops the connection at the given location, wherever it lives.
// Used to evict sockets superseded by a newer attach.
func (s *Service) CloseTarget(ctx context.Context, loc entity.Location, reason string) error {
	if loc.ProcessID == s.local.ProcessID() {
		s.local.CloseConnection(loc.ConnectionID, reason)

		return nil
	}

	return s.bus.Publish(ctx, loc.ProcessID, bus.Envelope{
		ConnectionID: loc.ConnectionID,
		Close:        true,
		CloseReason:  reason,
	})
}

// HandleInbound delivers envelopes published by other processes to local
// connections. Frames racing a local disconnect are dropped silently.
func (s *Service) HandleInbound(env bus.Envelope) {
	if env.Close {
		s.local.CloseConnection(env.ConnectionID, env.CloseReason)

		return
	}

	if err := s.local.Send(env.ConnectionID, env.Frame); err != nil {
		relayDeliveries.WithLabelValues("offline").Inc()
		s.log.Debug("relay - HandleInbound - dropping frame for %s: %s", env.ConnectionID, err)

		return
	}

	relayDeliveries.WithLabelValues("local").Inc()
}
