package descriptor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	goupdate "github.com/doitdistributed/go-update"
)

const (
	// packagePrefix and packageSuffix frame the network name in a package descriptor filename.
	packagePrefix = "versions-"
	packageSuffix = ".json"

	// composePrefix and composeSuffix frame the network name in a deployment descriptor filename.
	composePrefix = "docker-compose-"
	composeSuffix = ".yml"

	// versionKey and upstreamKey are the required fields of a package descriptor.
	versionKey  = "version"
	upstreamKey = "upstream"

	// descriptorFileMode is applied to descriptor files on write-back.
	descriptorFileMode os.FileMode = 0o644

	// jsonIndent matches the two-space indentation the descriptors are kept in.
	jsonIndent = "  "
)

var (
	// ErrNotFound is returned when an expected descriptor file is absent.
	ErrNotFound = errors.New("descriptor file not found")
	// ErrMalformed is returned when a package descriptor cannot be parsed
	// or is missing a required field.
	ErrMalformed = errors.New("malformed package descriptor")
)

// Pair couples the two descriptor files of one deployment network.
type Pair struct {
	// Network is the discriminator shared by both filenames.
	Network string
	// PackagePath is the location of the package descriptor.
	PackagePath string
	// ComposePath is the location of the deployment descriptor.
	ComposePath string
}

// Package is a parsed package descriptor. Fields other than version and
// upstream are carried through a rewrite unchanged.
type Package struct {
	// Version is the deployment package's own version, without "v" prefix.
	Version string
	// Upstream is the bundled upstream release tag.
	Upstream string

	// extra holds every other field of the document.
	extra map[string]any
}

// Store reads and writes descriptor pairs under a single deployments directory.
type Store struct {
	// dir is the deployments directory holding all descriptor files.
	dir string
}

// NewStore creates a store rooted at the provided directory.
func NewStore(dir string) *Store {
	return &Store{
		dir: filepath.Clean(dir),
	}
}

// PairFor returns the descriptor pair locations for a named network.
func (s *Store) PairFor(network string) Pair {
	return Pair{
		Network:     network,
		PackagePath: filepath.Join(s.dir, packagePrefix+network+packageSuffix),
		ComposePath: filepath.Join(s.dir, composePrefix+network+composeSuffix),
	}
}

// DiscoverPairs scans the deployments directory for package descriptors and
// returns the pairs they imply, sorted by network name for deterministic runs.
// Whether the companion deployment descriptor exists is checked on read, not
// here, so a broken pair surfaces as a per-pair warning instead of hiding.
func (s *Store) DiscoverPairs() ([]Pair, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.dir)
		}

		return nil, fmt.Errorf("scan deployments directory: %w", err)
	}

	var pairs []Pair

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, packagePrefix) || !strings.HasSuffix(name, packageSuffix) {
			continue
		}

		network := strings.TrimSuffix(strings.TrimPrefix(name, packagePrefix), packageSuffix)
		if network == "" {
			continue
		}

		pairs = append(pairs, s.PairFor(network))
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Network < pairs[j].Network
	})

	return pairs, nil
}

// ReadPackage parses the package descriptor at the provided path.
func (s *Store) ReadPackage(path string) (*Package, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return nil, fmt.Errorf("read package descriptor %s: %w", path, err)
	}

	// UseNumber keeps numeric fields in their original textual form, so an
	// untouched field never changes representation on write-back.
	decoder := json.NewDecoder(bytes.NewReader(contents))
	decoder.UseNumber()

	fields := make(map[string]any)
	if err = decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	pkg := &Package{extra: fields}

	if pkg.Version, err = takeStringField(fields, versionKey); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	if pkg.Upstream, err = takeStringField(fields, upstreamKey); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	return pkg, nil
}

// WritePackage serializes the package descriptor back to disk, preserving every
// field it did not own and appending a trailing newline.
func (s *Store) WritePackage(path string, pkg *Package) error {
	document := make(map[string]any, len(pkg.extra)+2)
	for key, value := range pkg.extra {
		document[key] = value
	}

	document[versionKey] = pkg.Version
	document[upstreamKey] = pkg.Upstream

	data, err := json.MarshalIndent(document, "", jsonIndent)
	if err != nil {
		return fmt.Errorf("encode package descriptor %s: %w", path, err)
	}

	data = append(data, '\n')

	return s.writeAtomic(path, data)
}

// ReadCompose returns the deployment descriptor text at the provided path.
func (s *Store) ReadCompose(path string) (string, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return "", fmt.Errorf("read deployment descriptor %s: %w", path, err)
	}

	return string(contents), nil
}

// WriteCompose persists the deployment descriptor text atomically.
func (s *Store) WriteCompose(path, text string) error {
	return s.writeAtomic(path, []byte(text))
}

// writeAtomic replaces the file content in one step: the new content lands
// completely or the original file remains.
func (s *Store) writeAtomic(path string, data []byte) error {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		// Apply needs an existing target to swap against.
		created, createErr := os.Create(filepath.Clean(path))
		if createErr != nil {
			return fmt.Errorf("create %s: %w", path, createErr)
		}

		if createErr = created.Close(); createErr != nil {
			return fmt.Errorf("close %s: %w", path, createErr)
		}
	}

	options := goupdate.Options{
		TargetPath: path,
		TargetMode: descriptorFileMode,
	}

	if err := goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("apply %s: %w", path, err)
	}

	// Apply leaves the previous content next to the target.
	backupPath := path + ".old"
	if _, err := os.Stat(backupPath); err == nil {
		_ = os.Remove(backupPath)
	}

	return nil
}

// takeStringField removes a required string field from the document and returns it.
func takeStringField(fields map[string]any, key string) (string, error) {
	raw, found := fields[key]
	if !found {
		return "", fmt.Errorf("missing %q field", key)
	}

	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", key)
	}

	delete(fields, key)

	return value, nil
}
