package sync

import "github.com/dmikhr/upstream-sync/internal/domain/semver"

// NeedsUpdate reports whether the stored upstream version is behind the latest
// release. Equal and ahead both mean no update, so a manually bumped local
// value is never clobbered by a transient upstream regression.
func NeedsUpdate(current, latest semver.Version) bool {
	return semver.Compare(current, latest) < 0
}
