package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmikhr/upstream-sync/internal/config"
	"github.com/dmikhr/upstream-sync/internal/domain/semver"
	"github.com/dmikhr/upstream-sync/internal/logger"
	"github.com/dmikhr/upstream-sync/internal/release/github"
	"github.com/dmikhr/upstream-sync/internal/repository/descriptor"
)

var (
	// errNoPairs is returned when the deployments directory holds no descriptor pairs.
	errNoPairs = errors.New("no descriptor pairs found")
	// errAllPairsFailed is returned when an update was due but no pair could be rewritten.
	errAllPairsFailed = errors.New("no descriptor pair could be updated")
	// errPartialUpdate is returned under the fail_on_partial policy.
	errPartialUpdate = errors.New("some descriptor pairs were skipped")
)

// ReleaseSource supplies the latest upstream release tag.
type ReleaseSource interface {
	LatestTag(ctx context.Context) (string, error)
}

// Options are inputs accepted by the sync entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
}

// runner holds the state for a single synchronization pass.
type runner struct {
	cfg    *config.Config
	source ReleaseSource
	store  *descriptor.Store
	result *Result
}

// Run executes a full synchronization run and is the public entry point for
// the CLI: it loads configuration, guards against overlapping executions and
// builds the real release client before handing over to Sync.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "upstream-sync")

	var configPath string
	if opts != nil {
		configPath = opts.ConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	config.ResolveEnvironment(cfg)

	guard := newRunGuard(MarkerFilename)
	if err = guard.tryAcquire(ctx); err != nil {
		return nil, err
	}

	defer guard.release(ctx)

	source, err := github.NewClient(cfg.UpstreamRepo,
		github.WithToken(cfg.Token),
		github.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, err
	}

	return Sync(ctx, cfg, source)
}

// Sync runs the synchronization engine against an explicit configuration and
// release source. It performs zero writes when no update is needed.
func Sync(ctx context.Context, cfg *config.Config, source ReleaseSource) (*Result, error) {
	r := &runner{
		cfg:    cfg,
		source: source,
		store:  descriptor.NewStore(cfg.DeploymentsDir),
		result: &Result{},
	}

	result, err := r.run(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Sync run failed", "error", err)
		return result, err
	}

	return result, nil
}

// run executes the fixed sequence: fetch, decide, apply, report.
func (r *runner) run(ctx context.Context) (*Result, error) {
	logger.Infof(ctx, "Fetching latest release of %s", r.cfg.UpstreamRepo)

	latestTag, err := r.source.LatestTag(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch latest release: %w", err)
	}

	latest, err := semver.Parse(latestTag)
	if err != nil {
		return nil, fmt.Errorf("parse fetched tag: %w", err)
	}

	pairs, err := r.scopedPairs()
	if err != nil {
		return nil, err
	}

	primary, err := r.readPrimary(pairs)
	if err != nil {
		return nil, err
	}

	current, err := semver.Parse(primary.Upstream)
	if err != nil {
		return nil, fmt.Errorf("parse stored upstream version: %w", err)
	}

	r.result.PreviousUpstream = primary.Upstream
	r.result.NewUpstream = latest.Tag()
	r.result.PreviousPackageVersion = primary.Version
	r.result.NewPackageVersion = primary.Version

	if !NeedsUpdate(current, latest) {
		logger.InfoKV(ctx, "Upstream is current, nothing to do",
			"stored", primary.Upstream, "latest", latest.Tag())

		return r.finish(ctx)
	}

	r.result.UpdateAvailable = true

	logger.InfoKV(ctx, "Upstream moved, updating descriptor pairs",
		"stored", primary.Upstream, "latest", latest.Tag(), "pairs", len(pairs))

	if err = r.updatePairs(ctx, pairs, latest); err != nil {
		return nil, err
	}

	return r.finish(ctx)
}

// scopedPairs resolves the descriptor pairs this run operates on.
func (r *runner) scopedPairs() ([]descriptor.Pair, error) {
	if r.cfg.Scope == config.ScopeSingle {
		return []descriptor.Pair{r.store.PairFor(r.cfg.Network)}, nil
	}

	pairs, err := r.store.DiscoverPairs()
	if err != nil {
		return nil, err
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w in %s", errNoPairs, r.cfg.DeploymentsDir)
	}

	return pairs, nil
}

// readPrimary reads the pair whose versions the decision and the result report
// are based on: the configured network when set, otherwise the first pair in
// sorted order. A failure here is fatal since no file has been touched yet.
func (r *runner) readPrimary(pairs []descriptor.Pair) (*descriptor.Package, error) {
	primary := pairs[0]

	if r.cfg.Network != "" {
		for _, pair := range pairs {
			if pair.Network == r.cfg.Network {
				primary = pair
				break
			}
		}
	}

	pkg, err := r.store.ReadPackage(primary.PackagePath)
	if err != nil {
		return nil, err
	}

	return pkg, nil
}

// updatePairs rewrites every pair in scope. Pairs whose files are missing or
// malformed are skipped with a warning; write failures abort the run since a
// half-written pair must not be silently carried forward.
func (r *runner) updatePairs(ctx context.Context, pairs []descriptor.Pair, latest semver.Version) error {
	for _, pair := range pairs {
		pairCtx := logger.WithKV(ctx, "network", pair.Network)

		newVersion, err := r.updatePair(pairCtx, pair, latest)
		if err != nil {
			if errors.Is(err, descriptor.ErrNotFound) ||
				errors.Is(err, descriptor.ErrMalformed) ||
				errors.Is(err, semver.ErrMalformed) {
				logger.WarnKV(pairCtx, "Skipping descriptor pair", "error", err)
				r.result.FailedPairs = append(r.result.FailedPairs, pair.Network)

				continue
			}

			return err
		}

		if pair.Network == r.primaryNetwork(pairs) {
			r.result.NewPackageVersion = newVersion
		}

		r.result.UpdatedPairs++

		logger.InfoKV(pairCtx, "Descriptor pair updated",
			"package_version", newVersion, "upstream", latest.Tag())
	}

	return nil
}

// updatePair applies the update to one pair: both files are read and
// transformed in memory first, then written back atomically one after another.
func (r *runner) updatePair(
	ctx context.Context,
	pair descriptor.Pair,
	latest semver.Version,
) (string, error) {
	pkg, err := r.store.ReadPackage(pair.PackagePath)
	if err != nil {
		return "", err
	}

	currentVersion, err := semver.Parse(pkg.Version)
	if err != nil {
		return "", fmt.Errorf("package version of %s: %w", pair.PackagePath, err)
	}

	composeText, err := r.store.ReadCompose(pair.ComposePath)
	if err != nil {
		return "", err
	}

	newVersion := currentVersion.IncrementPatch()
	pkg.Version = newVersion.String()
	pkg.Upstream = latest.Tag()

	composeUpdate := descriptor.UpdateCompose(
		composeText,
		r.cfg.ImageDomains,
		newVersion.String(),
		latest.Tag(),
	)

	if !composeUpdate.ImageReplaced {
		logger.Warnf(ctx, "No matching image line in %s", pair.ComposePath)
	}

	if !composeUpdate.VersionReplaced {
		logger.Warnf(ctx, "No VERSION build argument in %s", pair.ComposePath)
	}

	if err = r.store.WritePackage(pair.PackagePath, pkg); err != nil {
		return "", err
	}

	if err = r.store.WriteCompose(pair.ComposePath, composeUpdate.Text); err != nil {
		return "", err
	}

	return newVersion.String(), nil
}

// primaryNetwork names the pair the result's package versions refer to.
func (r *runner) primaryNetwork(pairs []descriptor.Pair) string {
	if r.cfg.Network != "" {
		return r.cfg.Network
	}

	return pairs[0].Network
}

// finish emits the result to the configured output sink and applies the
// partial-failure policy.
func (r *runner) finish(ctx context.Context) (*Result, error) {
	if r.cfg.OutputFile != "" {
		if err := r.result.AppendOutput(r.cfg.OutputFile); err != nil {
			return r.result, err
		}

		logger.Infof(ctx, "Result written to %s", r.cfg.OutputFile)
	}

	if !r.result.UpdateAvailable {
		return r.result, nil
	}

	if r.result.UpdatedPairs == 0 {
		return r.result, fmt.Errorf("%w: %s",
			errAllPairsFailed, strings.Join(r.result.FailedPairs, ", "))
	}

	if len(r.result.FailedPairs) > 0 && r.cfg.FailOnPartial {
		return r.result, fmt.Errorf("%w: %s",
			errPartialUpdate, strings.Join(r.result.FailedPairs, ", "))
	}

	return r.result, nil
}
