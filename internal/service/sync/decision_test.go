package sync

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmikhr/upstream-sync/internal/domain/semver"
)

// TestNeedsUpdate pins the decision table: only a strictly newer upstream triggers an update.
func TestNeedsUpdate(t *testing.T) {
	t.Parallel()

	v := semver.Version{Major: 1, Minor: 16, Patch: 8}

	require.False(t, NeedsUpdate(v, v))
	require.True(t, NeedsUpdate(v, v.IncrementPatch()))
	require.False(t, NeedsUpdate(v.IncrementPatch(), v))

	// Numeric comparison across component boundaries.
	older := semver.Version{Major: 1, Minor: 9, Patch: 0}
	newer := semver.Version{Major: 1, Minor: 10, Patch: 0}
	require.True(t, NeedsUpdate(older, newer))
	require.False(t, NeedsUpdate(newer, older))
}
