package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Scope selects how many descriptor pairs a run updates.
type Scope string

const (
	// ScopeAll updates every descriptor pair found in the deployments directory.
	ScopeAll Scope = "all"
	// ScopeSingle updates only the pair named by Config.Network.
	ScopeSingle Scope = "single"
)

// Config holds the settings for one synchronization run.
type Config struct {
	// UpstreamRepo is the tracked GitHub project in "owner/name" form.
	UpstreamRepo string `yaml:"upstream_repo"`
	// DeploymentsDir is the directory containing descriptor pairs.
	DeploymentsDir string `yaml:"deployments_dir"`
	// OutputFile is the optional path the run appends key=value result lines to.
	OutputFile string `yaml:"output_file"`
	// Scope is the update scope, "all" or "single".
	Scope Scope `yaml:"scope"`
	// Network names the pair to update when Scope is "single".
	Network string `yaml:"network"`
	// ImageDomains restricts image tag rewrites to images whose registry host
	// ends in one of these suffixes. Empty means every image line matches.
	ImageDomains []string `yaml:"image_domains"`
	// Timeout bounds the outbound release fetch.
	Timeout time.Duration `yaml:"timeout"`
	// FailOnPartial makes a run with any skipped pair exit non-zero.
	FailOnPartial bool `yaml:"fail_on_partial"`
	// Token is the optional bearer credential for the release source.
	// It is resolved from the environment at startup and never persisted.
	Token string `yaml:"-"`
}

const (
	// DefaultConfigFilename is the default filename for sync settings.
	DefaultConfigFilename = "upstream-sync.yaml"

	// DefaultDeploymentsDir is where descriptor pairs live relative to the repository root.
	DefaultDeploymentsDir = "deployments"

	// DefaultTimeout is the default duration for the release fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultFilePermissions is the default file permission for files this tool writes.
	DefaultFilePermissions = 0o600

	// TokenEnvVar is the primary environment variable holding the bearer credential.
	TokenEnvVar = "UPSTREAM_SYNC_TOKEN"

	// FallbackTokenEnvVar is honored when TokenEnvVar is unset.
	FallbackTokenEnvVar = "GITHUB_TOKEN" //nolint:gosec // Variable name, not a credential.

	// OutputEnvVar overrides OutputFile when set, matching the CI convention.
	OutputEnvVar = "GITHUB_OUTPUT"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUpstreamRepoRequired is returned when the tracked repository is missing or malformed.
	errUpstreamRepoRequired = errors.New("upstream repository must be provided as owner/name")
	// errNetworkRequired is returned when single scope is selected without a network.
	errNetworkRequired = errors.New("network must be provided when scope is single")
	// errUnknownScope is returned for scope values other than all or single.
	errUnknownScope = errors.New("scope must be either all or single")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and applies defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	owner, name, found := strings.Cut(cfg.UpstreamRepo, "/")
	if !found || owner == "" || name == "" {
		return fmt.Errorf("%w: %q", errUpstreamRepoRequired, cfg.UpstreamRepo)
	}

	if cfg.Scope == "" {
		cfg.Scope = ScopeAll
	}

	switch cfg.Scope {
	case ScopeAll:
	case ScopeSingle:
		if cfg.Network == "" {
			return errNetworkRequired
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownScope, cfg.Scope)
	}

	if cfg.DeploymentsDir == "" {
		cfg.DeploymentsDir = DefaultDeploymentsDir
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return nil
}

// ResolveEnvironment pulls the optional credential and output sink from the
// environment so the rest of the engine never touches ambient process state.
func ResolveEnvironment(cfg *Config) {
	if token := strings.TrimSpace(os.Getenv(TokenEnvVar)); token != "" {
		cfg.Token = token
	} else {
		cfg.Token = strings.TrimSpace(os.Getenv(FallbackTokenEnvVar))
	}

	if output := strings.TrimSpace(os.Getenv(OutputEnvVar)); output != "" {
		cfg.OutputFile = output
	}
}
