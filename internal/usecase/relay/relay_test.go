package relay_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/signage-toolkit/gateway/internal/entity"
	"github.com/signage-toolkit/gateway/internal/repository/bus"
	"github.com/signage-toolkit/gateway/internal/repository/sessions"
	"github.com/signage-toolkit/gateway/internal/usecase/relay"
	"github.com/signage-toolkit/gateway/pkg/logger"
)

type fakeLocator struct {
	session       entity.Session
	sessionErr    error
	controllerLoc *entity.Location
	locatorErr    error
}

func (f *fakeLocator) GetByDisplayID(_ context.Context, _ string) (entity.Session, error) {
	return f.session, f.sessionErr
}

func (f *fakeLocator) GetControllerLocation(_ context.Context, _ string) (*entity.Location, error) {
	return f.controllerLoc, f.locatorErr
}

type fakeSender struct {
	mu        sync.Mutex
	processID string
	sendErr   error
	sent      map[string][][]byte
	closed    map[string]string
}

func newFakeSender(processID string) *fakeSender {
	return &fakeSender{
		processID: processID,
		sent:      make(map[string][][]byte),
		closed:    make(map[string]string),
	}
}

func (f *fakeSender) ProcessID() string { return f.processID }

func (f *fakeSender) Send(connectionID string, frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}

	f.sent[connectionID] = append(f.sent[connectionID], frame)

	return nil
}

func (f *fakeSender) CloseConnection(connectionID, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed[connectionID] = reason
}

type fakeBus struct {
	mu        sync.Mutex
	published []publishedEnvelope
}

type publishedEnvelope struct {
	processID string
	env       bus.Envelope
}

func (f *fakeBus) Publish(_ context.Context, processID string, env bus.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishedEnvelope{processID: processID, env: env})

	return nil
}

func (f *fakeBus) Subscribe(_ context.Context, _ string, _ bus.Handler) error { return nil }

func (f *fakeBus) Close() error { return nil }

func initRelayTest(locator *fakeLocator) (*relay.Service, *fakeSender, *fakeBus) {
	local := newFakeSender("proc-1")
	b := &fakeBus{}

	return relay.New(locator, local, b, logger.New("error")), local, b
}

func activeSession(loc entity.Location) entity.Session {
	return entity.Session{
		ID:              "sess-1",
		DisplayID:       "display-1",
		State:           entity.StateActive,
		DisplayLocation: &loc,
	}
}

func TestSendToDisplayLocal(t *testing.T) {
	t.Parallel()

	locator := &fakeLocator{
		session: activeSession(entity.Location{ProcessID: "proc-1", ConnectionID: "conn-1"}),
	}
	svc, local, b := initRelayTest(locator)

	err := svc.SendToDisplay(context.Background(), "display-1", []byte("frame"))

	require.NoError(t, err)
	require.Len(t, local.sent["conn-1"], 1)
	require.Empty(t, b.published)
}

func TestSendToDisplayRemote(t *testing.T) {
	t.Parallel()

	locator := &fakeLocator{
		session: activeSession(entity.Location{ProcessID: "proc-2", ConnectionID: "conn-9"}),
	}
	svc, local, b := initRelayTest(locator)

	err := svc.SendToDisplay(context.Background(), "display-1", []byte("frame"))

	require.NoError(t, err)
	require.Empty(t, local.sent)
	require.Len(t, b.published, 1)
	require.Equal(t, "proc-2", b.published[0].processID)
	require.Equal(t, "conn-9", b.published[0].env.ConnectionID)
	require.Equal(t, []byte("frame"), b.published[0].env.Frame)
}

func TestSendToDisplayOffline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		locator *fakeLocator
	}{
		{
			name:    "no session",
			locator: &fakeLocator{sessionErr: sessions.ErrNotFound},
		},
		{
			name: "grace period",
			locator: &fakeLocator{session: entity.Session{
				DisplayID: "display-1",
				State:     entity.StateDisplayDisconnected,
			}},
		},
		{
			name: "active but no socket",
			locator: &fakeLocator{session: entity.Session{
				DisplayID: "display-1",
				State:     entity.StateActive,
			}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, local, b := initRelayTest(tc.locator)

			err := svc.SendToDisplay(context.Background(), "display-1", []byte("frame"))

			require.ErrorIs(t, err, relay.ErrTargetOffline)
			require.Empty(t, local.sent)
			require.Empty(t, b.published)
		})
	}
}

func TestSendToDisplayLocalSocketGone(t *testing.T) {
	t.Parallel()

	locator := &fakeLocator{
		session: activeSession(entity.Location{ProcessID: "proc-1", ConnectionID: "conn-1"}),
	}
	svc, local, _ := initRelayTest(locator)
	local.sendErr = errors.New("connection not found")

	err := svc.SendToDisplay(context.Background(), "display-1", []byte("frame"))
	require.ErrorIs(t, err, relay.ErrTargetOffline)
}

func TestSendToControllerOffline(t *testing.T) {
	t.Parallel()

	svc, local, b := initRelayTest(&fakeLocator{controllerLoc: nil})

	err := svc.SendToController(context.Background(), "principal-1", []byte("frame"))

	require.ErrorIs(t, err, relay.ErrTargetOffline)
	require.Empty(t, local.sent)
	require.Empty(t, b.published)
}

func TestSendToControllerLocal(t *testing.T) {
	t.Parallel()

	locator := &fakeLocator{
		controllerLoc: &entity.Location{ProcessID: "proc-1", ConnectionID: "ctrl-1"},
	}
	svc, local, _ := initRelayTest(locator)

	err := svc.SendToController(context.Background(), "principal-1", []byte("frame"))

	require.NoError(t, err)
	require.Len(t, local.sent["ctrl-1"], 1)
}

func TestCloseTargetLocal(t *testing.T) {
	t.Parallel()

	svc, local, b := initRelayTest(&fakeLocator{})

	err := svc.CloseTarget(context.Background(), entity.Location{ProcessID: "proc-1", ConnectionID: "conn-1"}, "superseded")

	require.NoError(t, err)
	require.Equal(t, "superseded", local.closed["conn-1"])
	require.Empty(t, b.published)
}

func TestCloseTargetRemote(t *testing.T) {
	t.Parallel()

	svc, local, b := initRelayTest(&fakeLocator{})

	err := svc.CloseTarget(context.Background(), entity.Location{ProcessID: "proc-2", ConnectionID: "conn-9"}, "revoked")

	require.NoError(t, err)
	require.Empty(t, local.closed)
	require.Len(t, b.published, 1)
	require.True(t, b.published[0].env.Close)
	require.Equal(t, "revoked", b.published[0].env.CloseReason)
}

func TestHandleInboundFrame(t *testing.T) {
	t.Parallel()

	svc, local, _ := initRelayTest(&fakeLocator{})

	svc.HandleInbound(bus.Envelope{ConnectionID: "conn-1", Frame: []byte("frame")})

	require.Len(t, local.sent["conn-1"], 1)
}

func TestHandleInboundClose(t *testing.T) {
	t.Parallel()

	svc, local, _ := initRelayTest(&fakeLocator{})

	svc.HandleInbound(bus.Envelope{ConnectionID: "conn-1", Close: true, CloseReason: "superseded"})

	require.Equal(t, "superseded", local.closed["conn-1"])
	require.Empty(t, local.sent)
}

func TestHandleInboundRacingDisconnect(t *testing.T) {
	t.Parallel()

	svc, local, _ := initRelayTest(&fakeLocator{})
	local.sendErr = errors.New("connection not found")

	// Dropped silently; the frame was addressed to a socket that just went
	// away.
	svc.HandleInbound(bus.Envelope{ConnectionID: "conn-1", Frame: []byte("frame")})

	require.Empty(t, local.sent)
}
