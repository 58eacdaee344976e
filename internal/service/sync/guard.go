package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/dmikhr/upstream-sync/internal/logger"
)

const (
	// MarkerFilename marks that a sync run is in progress to avoid overlapping
	// scheduled executions against the same working tree.
	MarkerFilename = "upstream-sync-marker.bin"

	// markerLifetime is the period after which an abandoned marker is reclaimed.
	markerLifetime = 10 * time.Minute

	// processName is the executable name other live runs are detected by.
	processName = "upstream-sync"
)

// errAlreadyRunning is returned when another sync run holds the marker.
var errAlreadyRunning = errors.New("another sync run is already in progress")

// runGuard serializes runs through a marker file plus a process check for
// stale markers left behind by a crashed run.
type runGuard struct {
	// path is the marker file location.
	path string
}

func newRunGuard(path string) *runGuard {
	return &runGuard{path: path}
}

// tryAcquire creates the marker, reclaiming a stale one when no other sync
// process is alive.
func (g *runGuard) tryAcquire(ctx context.Context) error {
	fileInfo, err := os.Stat(g.path)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return errAlreadyRunning
		}

		logger.Info(ctx, "Run marker is stale, checking for a live sync process")

		alive, aliveErr := anotherSyncProcessAlive()
		if aliveErr != nil || alive {
			return errAlreadyRunning
		}

		if err = os.Remove(g.path); err != nil {
			return fmt.Errorf("remove stale run marker: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read run marker: %w", err)
	}

	marker, err := os.Create(g.path)
	if err != nil {
		return fmt.Errorf("create run marker: %w", err)
	}

	if err = marker.Close(); err != nil {
		return fmt.Errorf("close run marker: %w", err)
	}

	return nil
}

// release removes the marker; a missing marker is not an error.
func (g *runGuard) release(ctx context.Context) {
	if err := os.Remove(g.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf(ctx, "Unable to remove run marker: %v", err)
	}
}

// anotherSyncProcessAlive reports whether a different process with this tool's
// executable name is currently running.
func anotherSyncProcessAlive() (bool, error) {
	processList, err := ps.Processes()
	if err != nil {
		return false, err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		executable := strings.TrimSuffix(process.Executable(), ".exe")
		if executable == processName {
			return true, nil
		}
	}

	return false, nil
}
