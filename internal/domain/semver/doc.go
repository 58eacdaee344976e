// Package semver contains the version value type used across the sync engine.
//
// A Version is a strict MAJOR.MINOR.PATCH triple (an optional leading "v" is
// accepted on parse). Operations are pure: Parse, Compare, IncrementPatch and
// the renderers never mutate their receiver.
package semver
