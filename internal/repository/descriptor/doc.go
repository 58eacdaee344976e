// Package descriptor reads and writes the per-network descriptor pairs: the
// package descriptor (versions-<network>.json) and the deployment descriptor
// (docker-compose-<network>.yml).
//
// Package descriptors round-trip unknown fields untouched. Deployment
// descriptors are treated as opaque text with exactly two line substitutions
// (image tag and VERSION build argument). Every write replaces the file
// atomically, so a failed run never leaves a half-written descriptor behind.
package descriptor
