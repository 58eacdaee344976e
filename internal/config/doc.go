// Package config defines the synchronization settings and provides helpers to
// load, validate and save them in YAML format.
//
// The Config type names the tracked upstream repository, the deployments
// directory holding descriptor pairs, the update scope and the output sink
// used by the calling automation pipeline.
package config
