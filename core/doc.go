// Package core holds the shared HTTP response plumbing: the standard JSON
// envelope and the HTTPError values handlers use to map domain errors to
// status codes.
package core
