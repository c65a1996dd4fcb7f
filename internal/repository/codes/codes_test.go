package codes_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/signage-toolkit/gateway/internal/entity"
	"github.com/signage-toolkit/gateway/internal/repository/codes"
)

func initRegistryTest(t *testing.T, ttl time.Duration) *codes.MemoryRegistry {
	t.Helper()

	r := codes.NewMemoryRegistry(codes.Config{Length: codes.DefaultLength, TTL: ttl})
	t.Cleanup(r.Stop)

	return r
}

func testLocation() entity.Location {
	return entity.Location{ProcessID: "proc-1", ConnectionID: "conn-1"}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	code, err := codes.Generate(codes.DefaultLength)

	require.NoError(t, err)
	require.Len(t, code, codes.DefaultLength)

	for i := 0; i < len(code); i++ {
		require.Contains(t, codes.Alphabet, string(code[i]))
	}
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "valid uppercase", code: "AB23CD", want: true},
		{name: "lowercase rejected", code: "ab23cd", want: false},
		{name: "too short", code: "AB23C", want: false},
		{name: "too long", code: "AB23CDE", want: false},
		{name: "ambiguous zero rejected", code: "AB230D", want: false},
		{name: "ambiguous one rejected", code: "AB231D", want: false},
		{name: "letter O rejected", code: "ABOCDE", want: false},
		{name: "letter I rejected", code: "ABICDE", want: false},
		{name: "empty", code: "", want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, codes.IsValid(tc.code, codes.DefaultLength))
		})
	}
}

func TestIssueAndConsume(t *testing.T) {
	t.Parallel()

	r := initRegistryTest(t, time.Minute)
	ctx := context.Background()

	issued, err := r.Issue(ctx, "display-1", testLocation())
	require.NoError(t, err)
	require.True(t, codes.IsValid(issued.Code, codes.DefaultLength))
	require.Equal(t, "display-1", issued.DisplayID)
	require.False(t, issued.Consumed)

	consumed, err := r.ValidateAndConsume(ctx, issued.Code, "principal-1")
	require.NoError(t, err)
	require.Equal(t, "display-1", consumed.DisplayID)
	require.Equal(t, testLocation(), consumed.DisplayLocation)
	require.True(t, consumed.Consumed)
	require.Equal(t, "principal-1", consumed.ConsumedBy)
}

func TestConsumeTwice(t *testing.T) {
	t.Parallel()

	r := initRegistryTest(t, time.Minute)
	ctx := context.Background()

	issued, err := r.Issue(ctx, "display-1", testLocation())
	require.NoError(t, err)

	_, err = r.ValidateAndConsume(ctx, issued.Code, "principal-1")
	require.NoError(t, err)

	_, err = r.ValidateAndConsume(ctx, issued.Code, "principal-2")
	require.ErrorIs(t, err, codes.ErrAlreadyConsumed)
}

func TestConsumeUnknownCode(t *testing.T) {
	t.Parallel()

	r := initRegistryTest(t, time.Minute)

	_, err := r.ValidateAndConsume(context.Background(), "ZZZZZZ", "principal-1")
	require.ErrorIs(t, err, codes.ErrNotFound)
}

func TestConsumeExpiredCode(t *testing.T) {
	t.Parallel()

	r := initRegistryTest(t, 30*time.Millisecond)
	ctx := context.Background()

	issued, err := r.Issue(ctx, "display-1", testLocation())
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	// Expired is distinguishable from unknown while the record is retained.
	_, err = r.ValidateAndConsume(ctx, issued.Code, "principal-1")
	require.ErrorIs(t, err, codes.ErrExpired)
}

func TestMarkDisplayLostClearsLocation(t *testing.T) {
	t.Parallel()

	r := initRegistryTest(t, time.Minute)
	ctx := context.Background()

	issued, err := r.Issue(ctx, "display-1", testLocation())
	require.NoError(t, err)

	require.NoError(t, r.MarkDisplayLost(ctx, issued.Code))

	// The code still consumes; the zero location is the claim-time signal
	// that the display is gone.
	consumed, err := r.ValidateAndConsume(ctx, issued.Code, "principal-1")
	require.NoError(t, err)
	require.True(t, consumed.DisplayLocation.IsZero())
}

func TestRevoke(t *testing.T) {
	t.Parallel()

	r := initRegistryTest(t, time.Minute)
	ctx := context.Background()

	issued, err := r.Issue(ctx, "display-1", testLocation())
	require.NoError(t, err)

	require.NoError(t, r.Revoke(ctx, issued.Code))

	_, err = r.ValidateAndConsume(ctx, issued.Code, "principal-1")
	require.ErrorIs(t, err, codes.ErrNotFound)
}

func TestConcurrentClaimSingleWinner(t *testing.T) {
	t.Parallel()

	r := initRegistryTest(t, time.Minute)
	ctx := context.Background()

	issued, err := r.Issue(ctx, "display-1", testLocation())
	require.NoError(t, err)

	const claimers = 16

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins []string
	)

	for i := 0; i < claimers; i++ {
		wg.Add(1)

		principal := "principal-" + strings.Repeat("x", i+1)

		go func() {
			defer wg.Done()

			if _, claimErr := r.ValidateAndConsume(ctx, issued.Code, principal); claimErr == nil {
				mu.Lock()
				wins = append(wins, principal)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	require.Len(t, wins, 1)
}
