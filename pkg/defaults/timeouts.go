package defaults

import "time"

// Remote channel timeouts.
const (
	// ConnectTimeout is the timeout for opening a remote channel to a node.
	// Expiry is treated identically to a channel failure for that node.
	ConnectTimeout = 10 * time.Second

	// CallTimeout is the timeout for a single remote operation
	// (readdir, stat, content read, version query).
	CallTimeout = 30 * time.Second

	// CloseTimeout bounds channel teardown so a wedged peer cannot stall
	// the worker that owns it.
	CloseTimeout = 5 * time.Second
)

// Collection run settings.
const (
	// RunTimeout is the default overall timeout for a full collection run.
	RunTimeout = 30 * time.Minute

	// Workers is the default number of nodes collected concurrently.
	Workers = 4

	// DialInterval paces channel opens so a large inventory does not
	// burst-open connections from the coordinator.
	DialInterval = 100 * time.Millisecond

	// DialBurst is the number of channel opens allowed to proceed
	// without pacing.
	DialBurst = 4
)

// Content capture limits.
const (
	// MaxCaptureSize is the maximum file size captured as content.
	// Larger files get a capture-exception marker instead.
	MaxCaptureSize = 1 << 20 // 1MB
)
