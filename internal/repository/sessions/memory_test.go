package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/signage-toolkit/gateway/internal/entity"
	"github.com/signage-toolkit/gateway/internal/repository/sessions"
)

func initStoreTest(t *testing.T) *sessions.MemoryStore {
	t.Helper()

	s := sessions.NewMemoryStore()
	t.Cleanup(s.Stop)

	return s
}

func pendingSession(id, displayID string) entity.Session {
	return entity.Session{
		ID:                    id,
		DisplayID:             displayID,
		ControllerPrincipalID: "principal-1",
		State:                 entity.StatePending,
		CreatedAt:             time.Now().UTC(),
	}
}

func loc(process, conn string) entity.Location {
	return entity.Location{ProcessID: process, ConnectionID: conn}
}

func TestCreateAndAttach(t *testing.T) {
	t.Parallel()

	s := initStoreTest(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, pendingSession("sess-1", "display-1")))

	sess, superseded, err := s.AttachDisplay(ctx, "display-1", loc("p1", "c1"))
	require.NoError(t, err)
	require.Nil(t, superseded)
	require.Equal(t, entity.StateActive, sess.State)
	require.NotNil(t, sess.DisplayLocation)
	require.Equal(t, loc("p1", "c1"), *sess.DisplayLocation)
}

func TestCreateConflict(t *testing.T) {
	t.Parallel()

	s := initStoreTest(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, pendingSession("sess-1", "display-1")))

	err := s.Create(ctx, pendingSession("sess-2", "display-1"))
	require.ErrorIs(t, err, sessions.ErrConflict)

	// A closed session no longer blocks a new one.
	_, err = s.Close(ctx, "display-1", entity.CloseReasonUnpaired, "")
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, pendingSession("sess-2", "display-1")))
}

func TestAttachSupersedesPreviousSocket(t *testing.T) {
	t.Parallel()

	s := initStoreTest(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, pendingSession("sess-1", "display-1")))

	_, _, err := s.AttachDisplay(ctx, "display-1", loc("p1", "c1"))
	require.NoError(t, err)

	_, superseded, err := s.AttachDisplay(ctx, "display-1", loc("p2", "c9"))
	require.NoError(t, err)
	require.NotNil(t, superseded)
	require.Equal(t, loc("p1", "c1"), *superseded)
}

func TestDetachRequiresOwningLocation(t *testing.T) {
	t.Parallel()

	s := initStoreTest(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, pendingSession("sess-1", "display-1")))

	_, _, err := s.AttachDisplay(ctx, "display-1", loc("p1", "c1"))
	require.NoError(t, err)

	// A stale socket's detach must not knock out the live one.
	_, err = s.DetachDisplay(ctx, "display-1", loc("p1", "c-old"))
	require.ErrorIs(t, err, sessions.ErrLocationMismatch)

	sess, err := s.DetachDisplay(ctx, "display-1", loc("p1", "c1"))
	require.NoError(t, err)
	require.Equal(t, entity.StateDisplayDisconnected, sess.State)
	require.False(t, sess.DisplayOnline())
}

func TestCloseConditionalOnState(t *testing.T) {
	t.Parallel()

	s := initStoreTest(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, pendingSession("sess-1", "display-1")))

	_, _, err := s.AttachDisplay(ctx, "display-1", loc("p1", "c1"))
	require.NoError(t, err)

	// Grace expiry closes only a still-disconnected session; the display
	// reconnected here, so the close loses.
	_, err = s.Close(ctx, "display-1", entity.CloseReasonGraceExpiry, entity.StateDisplayDisconnected)
	require.ErrorIs(t, err, sessions.ErrStateChanged)

	_, err = s.DetachDisplay(ctx, "display-1", loc("p1", "c1"))
	require.NoError(t, err)

	closed, err := s.Close(ctx, "display-1", entity.CloseReasonGraceExpiry, entity.StateDisplayDisconnected)
	require.NoError(t, err)
	require.Equal(t, entity.StateClosed, closed.State)
	require.Equal(t, entity.CloseReasonGraceExpiry, closed.CloseReason)

	_, err = s.Close(ctx, "display-1", entity.CloseReasonUnpaired, "")
	require.ErrorIs(t, err, sessions.ErrClosed)
}

func TestHeartbeatOnlyWhenActive(t *testing.T) {
	t.Parallel()

	s := initStoreTest(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, pendingSession("sess-1", "display-1")))

	_, _, err := s.AttachDisplay(ctx, "display-1", loc("p1", "c1"))
	require.NoError(t, err)

	beat := time.Now().UTC().Add(time.Second).Truncate(time.Millisecond)
	require.NoError(t, s.Heartbeat(ctx, "display-1", beat))

	sess, err := s.GetByDisplayID(ctx, "display-1")
	require.NoError(t, err)
	require.True(t, beat.Equal(sess.LastDisplayHeartbeatAt))

	require.ErrorIs(t, s.Heartbeat(ctx, "display-9", beat), sessions.ErrNotFound)
}

func TestLookupBySessionID(t *testing.T) {
	t.Parallel()

	s := initStoreTest(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, pendingSession("sess-1", "display-1")))

	sess, err := s.GetBySessionID(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, "display-1", sess.DisplayID)

	_, err = s.GetBySessionID(ctx, "sess-9")
	require.ErrorIs(t, err, sessions.ErrNotFound)
}

func TestControllerAttachDisplacesPrevious(t *testing.T) {
	t.Parallel()

	s := initStoreTest(t)
	ctx := context.Background()

	displaced, err := s.AttachController(ctx, "principal-1", loc("p1", "c1"))
	require.NoError(t, err)
	require.Nil(t, displaced)

	displaced, err = s.AttachController(ctx, "principal-1", loc("p2", "c2"))
	require.NoError(t, err)
	require.NotNil(t, displaced)
	require.Equal(t, loc("p1", "c1"), *displaced)

	// The displaced socket's later detach is a no-op.
	err = s.DetachController(ctx, "principal-1", loc("p1", "c1"))
	require.ErrorIs(t, err, sessions.ErrLocationMismatch)

	require.NoError(t, s.DetachController(ctx, "principal-1", loc("p2", "c2")))

	current, err := s.GetControllerLocation(ctx, "principal-1")
	require.NoError(t, err)
	require.Nil(t, current)
}

func TestGetByControllerFillsLocation(t *testing.T) {
	t.Parallel()

	s := initStoreTest(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, pendingSession("sess-1", "display-1")))
	require.NoError(t, s.Create(ctx, pendingSession("sess-2", "display-2")))

	_, err := s.AttachController(ctx, "principal-1", loc("p1", "ctrl-1"))
	require.NoError(t, err)

	bound, err := s.GetByController(ctx, "principal-1")
	require.NoError(t, err)
	require.Len(t, bound, 2)

	for _, sess := range bound {
		require.NotNil(t, sess.ControllerLocation)
		require.Equal(t, loc("p1", "ctrl-1"), *sess.ControllerLocation)
	}

	// Closing removes the session from the principal's set.
	_, err = s.Close(ctx, "display-1", entity.CloseReasonUnpaired, "")
	require.NoError(t, err)

	bound, err = s.GetByController(ctx, "principal-1")
	require.NoError(t, err)
	require.Len(t, bound, 1)
	require.Equal(t, "display-2", bound[0].DisplayID)
}
