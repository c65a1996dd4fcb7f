package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/signage-toolkit/gateway/internal/entity"
)

func seedSession(t *testing.T, s *MemoryStore) entity.Session {
	t.Helper()

	ctx := context.Background()

	sess := entity.Session{
		ID:                    "sess-1",
		DisplayID:             "display-1",
		ControllerPrincipalID: "principal-1",
		State:                 entity.StatePending,
		CreatedAt:             time.Now().UTC(),
	}
	require.NoError(t, s.Create(ctx, sess))

	loc := entity.Location{ProcessID: "proc-1", ConnectionID: "conn-1"}
	_, _, err := s.AttachDisplay(ctx, "display-1", loc)
	require.NoError(t, err)

	return sess
}

func TestSweepEvictsStrandedDisconnectedRecords(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	t.Cleanup(s.Stop)

	ctx := context.Background()
	seedSession(t, s)

	loc := entity.Location{ProcessID: "proc-1", ConnectionID: "conn-1"}
	detached, err := s.DetachDisplay(ctx, "display-1", loc)
	require.NoError(t, err)
	require.Equal(t, entity.StateDisplayDisconnected, detached.State)

	// Within retention the record is still there for a reconnect.
	s.removeExpired(time.Now())

	got, err := s.GetByDisplayID(ctx, "display-1")
	require.NoError(t, err)
	require.Equal(t, entity.StateDisplayDisconnected, got.State)

	// Past retention a record whose grace timer never fired is evicted.
	s.removeExpired(time.Now().Add(_disconnectedRetention + time.Minute))

	_, err = s.GetByDisplayID(ctx, "display-1")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetBySessionID(ctx, "sess-1")
	require.ErrorIs(t, err, ErrNotFound)

	out, err := s.GetByController(ctx, "principal-1")
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestReattachCancelsDisconnectRetention(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	t.Cleanup(s.Stop)

	ctx := context.Background()
	seedSession(t, s)

	loc := entity.Location{ProcessID: "proc-1", ConnectionID: "conn-1"}
	_, err := s.DetachDisplay(ctx, "display-1", loc)
	require.NoError(t, err)

	_, _, err = s.AttachDisplay(ctx, "display-1", entity.Location{ProcessID: "proc-1", ConnectionID: "conn-2"})
	require.NoError(t, err)

	s.removeExpired(time.Now().Add(_disconnectedRetention + time.Minute))

	got, err := s.GetByDisplayID(ctx, "display-1")
	require.NoError(t, err)
	require.Equal(t, entity.StateActive, got.State)
}

func TestSweepEvictsExpiredClosedRecords(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	t.Cleanup(s.Stop)

	ctx := context.Background()
	seedSession(t, s)

	_, err := s.Close(ctx, "display-1", entity.CloseReasonUnpaired, "")
	require.NoError(t, err)

	// Freshly closed records survive for late lookups.
	s.removeExpired(time.Now())

	got, err := s.GetByDisplayID(ctx, "display-1")
	require.NoError(t, err)
	require.Equal(t, entity.StateClosed, got.State)

	s.removeExpired(time.Now().Add(_closedRetention + time.Minute))

	_, err = s.GetByDisplayID(ctx, "display-1")
	require.ErrorIs(t, err, ErrNotFound)
}
