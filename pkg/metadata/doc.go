// Package metadata defines the typed containers for collected cluster state:
// per-path stat records and captured contents, per-node aggregates, and the
// run-scoped store keyed by role group and host.
//
// The containers are deliberately explicit structs rather than free-form
// maps so that checks reading e.g. a file's contents cannot silently read a
// field that was never collected.
package metadata
