// Package checks evaluates collected cluster metadata against known failure
// patterns. Checks read the finished store only; they never reach back to
// the cluster.
package checks
