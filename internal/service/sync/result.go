package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmikhr/upstream-sync/internal/config"
)

// Result summarizes a completed synchronization run.
type Result struct {
	// UpdateAvailable reports whether the upstream moved and files were rewritten.
	UpdateAvailable bool
	// PreviousUpstream is the upstream value stored before the run.
	PreviousUpstream string
	// NewUpstream is the latest upstream release tag.
	NewUpstream string
	// PreviousPackageVersion is the primary pair's package version before the run.
	PreviousPackageVersion string
	// NewPackageVersion is the primary pair's package version after the run.
	NewPackageVersion string
	// UpdatedPairs counts descriptor pairs rewritten during the run.
	UpdatedPairs int
	// FailedPairs lists networks that were skipped with a warning.
	FailedPairs []string
}

// OutputLines renders the key=value lines consumed by the calling pipeline.
func (r *Result) OutputLines() []string {
	return []string{
		fmt.Sprintf("update_available=%t", r.UpdateAvailable),
		"old_version=" + r.PreviousUpstream,
		"new_version=" + r.NewUpstream,
		"old_package_version=" + r.PreviousPackageVersion,
		"new_package_version=" + r.NewPackageVersion,
		fmt.Sprintf("updated_pairs=%d", r.UpdatedPairs),
		"failed_pairs=" + strings.Join(r.FailedPairs, ","),
	}
}

// AppendOutput appends the result lines to the provided file, creating it when
// absent. The file format matches the GitHub Actions output convention.
func (r *Result) AppendOutput(path string) error {
	file, err := os.OpenFile(
		filepath.Clean(path),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		config.DefaultFilePermissions,
	)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}

	defer file.Close()

	if _, err = file.WriteString(strings.Join(r.OutputLines(), "\n") + "\n"); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}

	return nil
}
