package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLatestTag covers the happy path and the request headers it must carry.
func TestLatestTag(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/ethereum/go-ethereum/releases/latest", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name": "v1.16.9", "name": "Wish (v1.16.9)"}`))
	}))
	defer server.Close()

	client, err := NewClient("ethereum/go-ethereum",
		WithBaseURL(server.URL),
		WithToken("secret"),
	)
	require.NoError(t, err)

	tag, err := client.LatestTag(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v1.16.9", tag)
}

// TestLatestTag_RateLimited ensures 403 and 429 map to ErrRateLimited.
func TestLatestTag_RateLimited(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "API rate limit exceeded", status)
		}))

		client, err := NewClient("ethereum/go-ethereum", WithBaseURL(server.URL))
		require.NoError(t, err)

		_, err = client.LatestTag(context.Background())
		require.ErrorIs(t, err, ErrRateLimited)

		server.Close()
	}
}

// TestLatestTag_Errors covers server failures and empty payloads.
func TestLatestTag_Errors(t *testing.T) {
	t.Parallel()

	// Non-OK status other than rate limiting.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient("ethereum/go-ethereum", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.LatestTag(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrRateLimited)

	// Payload without a tag.
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer empty.Close()

	client, err = NewClient("ethereum/go-ethereum", WithBaseURL(empty.URL))
	require.NoError(t, err)

	_, err = client.LatestTag(context.Background())
	require.ErrorIs(t, err, errEmptyTag)

	// Missing repository.
	_, err = NewClient("")
	require.ErrorIs(t, err, errRepoRequired)
}
