package semver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParse covers accepted and rejected version shapes.
func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		want   Version
		wantOK bool
	}{
		{"1.16.9", Version{1, 16, 9}, true},
		{"v1.16.9", Version{1, 16, 9}, true},
		{"0.0.0", Version{0, 0, 0}, true},
		{"10.0.78", Version{10, 0, 78}, true},
		{"v10.20.30", Version{10, 20, 30}, true},

		{"", Version{}, false},
		{"v", Version{}, false},
		{"10.0", Version{}, false},
		{"1.2.3.4", Version{}, false},
		{"1..3", Version{}, false},
		{"1.a.3", Version{}, false},
		{"-1.2.3", Version{}, false},
		{"1.+2.3", Version{}, false},
		{" 1.2.3", Version{}, false},
		{"1.2.3 ", Version{}, false},
		{"vv1.2.3", Version{}, false},
		{"1.2.3-rc1", Version{}, false},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if !tt.wantOK {
			require.ErrorIs(t, err, ErrMalformed, "input %q", tt.input)
			continue
		}

		require.NoError(t, err, "input %q", tt.input)
		require.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

// TestCompare verifies numeric (not lexicographic) ordering of components.
func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"1.16.9", "1.16.9", 0},
		{"1.9.0", "1.10.0", -1},
		{"1.10.0", "1.9.0", 1},
		{"9.0.0", "10.0.0", -1},
		{"1.16.8", "1.16.9", -1},
		{"2.0.0", "1.99.99", 1},
		{"1.2.9", "1.3.0", -1},
	}

	for _, tt := range tests {
		a, err := Parse(tt.a)
		require.NoError(t, err)

		b, err := Parse(tt.b)
		require.NoError(t, err)

		require.Equal(t, tt.want, Compare(a, b), "%s vs %s", tt.a, tt.b)
	}
}

// TestIncrementPatch ensures only the patch component changes and the receiver stays put.
func TestIncrementPatch(t *testing.T) {
	t.Parallel()

	v := Version{Major: 10, Minor: 0, Patch: 78}
	bumped := v.IncrementPatch()

	require.Equal(t, Version{Major: 10, Minor: 0, Patch: 79}, bumped)
	require.Equal(t, Version{Major: 10, Minor: 0, Patch: 78}, v)
}

// TestRoundTrip checks Parse(String()) and the tag renderer.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"0.0.1", "1.16.9", "10.0.78"} {
		v, err := Parse(s)
		require.NoError(t, err)
		require.Equal(t, s, v.String())

		again, err := Parse(v.String())
		require.NoError(t, err)
		require.Equal(t, v, again)

		require.Equal(t, "v"+s, v.Tag())
	}
}
