package descriptor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const packageFixture = `{
  "name": "chain-node",
  "version": "10.0.78",
  "upstream": "v1.16.8",
  "port": 30303,
  "maintainers": ["ops@chainops.io"]
}
`

// TestReadPackage parses the required fields and rejects broken documents.
func TestReadPackage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)

	path := filepath.Join(dir, "versions-mainnet.json")
	require.NoError(t, os.WriteFile(path, []byte(packageFixture), 0o644))

	pkg, err := store.ReadPackage(path)
	require.NoError(t, err)
	require.Equal(t, "10.0.78", pkg.Version)
	require.Equal(t, "v1.16.8", pkg.Upstream)

	// Missing file.
	_, err = store.ReadPackage(filepath.Join(dir, "versions-ghost.json"))
	require.ErrorIs(t, err, ErrNotFound)

	// Unparsable document.
	broken := filepath.Join(dir, "versions-broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o644))

	_, err = store.ReadPackage(broken)
	require.ErrorIs(t, err, ErrMalformed)

	// Missing required field.
	partial := filepath.Join(dir, "versions-partial.json")
	require.NoError(t, os.WriteFile(partial, []byte(`{"version": "1.0.0"}`), 0o644))

	_, err = store.ReadPackage(partial)
	require.ErrorIs(t, err, ErrMalformed)

	// Required field of the wrong type.
	typed := filepath.Join(dir, "versions-typed.json")
	require.NoError(t, os.WriteFile(typed, []byte(`{"version": 1, "upstream": "v1.0.0"}`), 0o644))

	_, err = store.ReadPackage(typed)
	require.ErrorIs(t, err, ErrMalformed)
}

// TestWritePackage_PreservesUnrelatedFields updates version and upstream only.
func TestWritePackage_PreservesUnrelatedFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)

	path := filepath.Join(dir, "versions-mainnet.json")
	require.NoError(t, os.WriteFile(path, []byte(packageFixture), 0o644))

	pkg, err := store.ReadPackage(path)
	require.NoError(t, err)

	pkg.Version = "10.0.79"
	pkg.Upstream = "v1.16.9"
	require.NoError(t, store.WritePackage(path, pkg))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, byte('\n'), written[len(written)-1])

	var document map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(written, &document))
	require.Equal(t, `"10.0.79"`, string(document["version"]))
	require.Equal(t, `"v1.16.9"`, string(document["upstream"]))
	require.Equal(t, `"chain-node"`, string(document["name"]))
	require.Equal(t, `30303`, string(document["port"]))
	require.JSONEq(t, `["ops@chainops.io"]`, string(document["maintainers"]))

	// No backup file left behind by the atomic swap.
	_, err = os.Stat(path + ".old")
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestComposeRoundtrip reads, rewrites and re-reads a deployment descriptor.
func TestComposeRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)

	path := filepath.Join(dir, "docker-compose-mainnet.yml")
	require.NoError(t, os.WriteFile(path, []byte(composeFixture), 0o644))

	text, err := store.ReadCompose(path)
	require.NoError(t, err)
	require.Equal(t, composeFixture, text)

	updated := UpdateCompose(text, []string{"chainops.io"}, "10.0.79", "v1.16.9")
	require.NoError(t, store.WriteCompose(path, updated.Text))

	again, err := store.ReadCompose(path)
	require.NoError(t, err)
	require.Equal(t, updated.Text, again)

	_, err = store.ReadCompose(filepath.Join(dir, "docker-compose-ghost.yml"))
	require.ErrorIs(t, err, ErrNotFound)
}

// TestDiscoverPairs returns pairs sorted by network and ignores unrelated files.
func TestDiscoverPairs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)

	for _, name := range []string{
		"versions-holesky.json",
		"versions-mainnet.json",
		"docker-compose-mainnet.yml",
		"versions-.json",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}

	pairs, err := store.DiscoverPairs()
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	require.Equal(t, "holesky", pairs[0].Network)
	require.Equal(t, "mainnet", pairs[1].Network)
	require.Equal(t, filepath.Join(dir, "versions-mainnet.json"), pairs[1].PackagePath)
	require.Equal(t, filepath.Join(dir, "docker-compose-mainnet.yml"), pairs[1].ComposePath)

	// Missing deployments directory is a distinguished error.
	_, err = NewStore(filepath.Join(dir, "nope")).DiscoverPairs()
	require.ErrorIs(t, err, ErrNotFound)
}
