package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRevokedTokenCache(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewInMemoryRevokedTokenCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Add("live", now.Add(time.Hour)))
	require.NoError(t, c.Add("stale", now.Add(-time.Minute)))
	require.NoError(t, c.Add("", now.Add(time.Hour)))

	require.True(t, c.IsRevoked("live"))
	require.True(t, c.IsRevoked("stale"))
	require.False(t, c.IsRevoked("other"))
	require.Equal(t, 2, c.Len())

	c.Cleanup()
	require.True(t, c.IsRevoked("live"))
	require.False(t, c.IsRevoked("stale"))
	require.Equal(t, 1, c.Len())
}

func TestRunCleanupStopsOnCancel(t *testing.T) {
	c := NewInMemoryRevokedTokenCache()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunCleanup(ctx, c, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}
