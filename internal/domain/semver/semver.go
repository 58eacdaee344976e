package semver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a string does not parse as MAJOR.MINOR.PATCH.
var ErrMalformed = errors.New("malformed version")

// componentCount is the exact number of numeric components a version carries.
const componentCount = 3

// Version is an immutable semantic version triple.
type Version struct {
	// Major is the first version component.
	Major int
	// Minor is the second version component.
	Minor int
	// Patch is the third version component.
	Patch int
}

// Parse builds a Version from a string of the form "[v]MAJOR.MINOR.PATCH".
// A single leading "v" is stripped; anything else that is not exactly three
// non-negative integer components fails with ErrMalformed. Whitespace is not
// trimmed and signs are not accepted, so the caller sees exactly what was stored.
func Parse(s string) (Version, error) {
	parts := strings.Split(strings.TrimPrefix(s, "v"), ".")
	if len(parts) != componentCount {
		return Version{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	numbers := make([]int, 0, componentCount)

	for _, part := range parts {
		// ParseUint rejects signs, spaces and empty components outright.
		number, err := strconv.ParseUint(part, 10, 31)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrMalformed, s)
		}

		numbers = append(numbers, int(number))
	}

	return Version{
		Major: numbers[0],
		Minor: numbers[1],
		Patch: numbers[2],
	}, nil
}

// Compare orders two versions numerically on (major, minor, patch).
// It returns -1 when a is older than b, 0 when equal and 1 when newer.
func Compare(a, b Version) int {
	if c := compareComponent(a.Major, b.Major); c != 0 {
		return c
	}

	if c := compareComponent(a.Minor, b.Minor); c != 0 {
		return c
	}

	return compareComponent(a.Patch, b.Patch)
}

// IncrementPatch returns a copy of v with the patch component bumped by one.
func (v Version) IncrementPatch() Version {
	return Version{
		Major: v.Major,
		Minor: v.Minor,
		Patch: v.Patch + 1,
	}
}

// String renders the version without a "v" prefix.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Tag renders the version with the "v" prefix used by upstream release tags.
func (v Version) Tag() string {
	return "v" + v.String()
}

func compareComponent(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
