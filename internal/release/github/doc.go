// Package github fetches the latest release tag of the tracked upstream
// project from the GitHub releases API.
//
// The client makes a single request per run and does not retry; the calling
// scheduler owns retry cadence. Rate-limit responses (403/429) are surfaced
// with a distinguished error so a pipeline can tell them apart from outages.
package github
