// Package defaults centralizes timeout and sizing constants used across
// the collection engine. Keeping them in one place makes the relationships
// between values visible (for example, CallTimeout must stay well under
// RunTimeout for per-node failure isolation to be useful).
package defaults
