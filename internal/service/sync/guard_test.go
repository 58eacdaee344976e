package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestRunGuard covers acquire, overlap detection and stale marker recovery.
func TestRunGuard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), MarkerFilename)
	guard := newRunGuard(path)

	// First acquisition creates the marker.
	require.NoError(t, guard.tryAcquire(ctx))
	_, err := os.Stat(path)
	require.NoError(t, err)

	// A fresh marker blocks a second run.
	require.ErrorIs(t, newRunGuard(path).tryAcquire(ctx), errAlreadyRunning)

	// A stale marker is reclaimed when no sync process is alive.
	stale := time.Now().Add(-2 * markerLifetime)
	require.NoError(t, os.Chtimes(path, stale, stale))
	require.NoError(t, newRunGuard(path).tryAcquire(ctx))

	// Release removes the marker; releasing twice is harmless.
	guard.release(ctx)
	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
	guard.release(ctx)
}
