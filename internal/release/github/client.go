package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmikhr/upstream-sync/internal/version"
)

const (
	// defaultBaseURL is the GitHub REST API root.
	defaultBaseURL = "https://api.github.com"

	// defaultTimeout bounds the whole request when the caller does not.
	defaultTimeout = 30 * time.Second

	// maxErrorBodySize limits how much of an error response is quoted in diagnostics.
	maxErrorBodySize = 4 << 10
)

var (
	// ErrRateLimited is returned on 403/429 responses from the release API.
	ErrRateLimited = errors.New("release source rate limited")
	// errBadHTTPStatus is returned on any other non-OK response.
	errBadHTTPStatus = errors.New("unexpected http status")
	// errEmptyTag is returned when the release payload carries no tag name.
	errEmptyTag = errors.New("latest release has no tag name")
	// errRepoRequired is returned when the tracked repository is not set.
	errRepoRequired = errors.New("repository must be provided")
)

// Client requests release metadata for a single tracked repository.
type Client struct {
	// repo is the tracked project in "owner/name" form.
	repo string
	// token is the optional bearer credential raising the rate limit.
	token string
	// baseURL is the API root, overridable in tests.
	baseURL string
	// httpClient executes requests with the configured timeout.
	httpClient *http.Client
}

// Option configures client behaviour.
type Option func(*Client)

// WithToken attaches a bearer credential to outbound requests.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithBaseURL points the client at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a client for the provided "owner/name" repository.
func NewClient(repo string, opts ...Option) (*Client, error) {
	if repo == "" {
		return nil, errRepoRequired
	}

	client := &Client{
		repo:    repo,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// latestRelease is the slice of the release payload this tool cares about.
type latestRelease struct {
	TagName string `json:"tag_name"`
}

// LatestTag returns the tag name of the latest published release, e.g. "v1.16.9".
func (c *Client) LatestTag(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/releases/latest", c.baseURL, c.repo)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build release request: %w", err)
	}

	request.Header.Set("Accept", "application/vnd.github.v3+json")
	request.Header.Set("User-Agent", version.UserAgent())

	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("fetch latest release: %w", err)
	}

	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusForbidden,
		response.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: %s from %s", ErrRateLimited, response.Status, endpoint)
	case response.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBodySize))
		return "", fmt.Errorf("%w: %s from %s: %s",
			errBadHTTPStatus, response.Status, endpoint, strings.TrimSpace(string(body)))
	}

	var release latestRelease
	if err = json.NewDecoder(response.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("decode latest release: %w", err)
	}

	if release.TagName == "" {
		return "", errEmptyTag
	}

	return release.TagName, nil
}
