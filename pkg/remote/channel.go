package remote

import (
	"context"
	"fmt"

	"github.com/cephmedic/cephmedic/pkg/metadata"
)

// EntryKind classifies a directory entry as reported by the peer, before any
// symlink resolution.
type EntryKind string

const (
	KindFile    EntryKind = "file"
	KindDir     EntryKind = "dir"
	KindSymlink EntryKind = "symlink"
	KindOther   EntryKind = "other"
)

// DirEntry is one entry of a remote directory listing.
type DirEntry struct {
	// Path is the absolute path of the entry.
	Path string
	// Kind is the entry's own kind; symlinks are not resolved here.
	Kind EntryKind
}

// Channel executes named operations on one remote peer. Implementations must
// be safe for sequential use by a single worker; a channel is owned by one
// node pipeline at a time.
//
// Operations map failure modes onto recognizable errors: permission problems
// wrap fs.ErrPermission, missing paths wrap fs.ErrNotExist, command exit
// failures surface as *ExitError, and expired deadlines surface with the
// TIMEOUT error code. Anything else after a successful open is a remote call
// error.
type Channel interface {
	// Host returns the host identifier this channel is connected to.
	Host() string

	// ReadDir lists the immediate entries of a remote directory.
	ReadDir(ctx context.Context, path string) ([]DirEntry, error)

	// Stat retrieves filesystem metadata for a remote path, following
	// symlinks.
	Stat(ctx context.Context, path string) (*metadata.StatRecord, error)

	// ReadFile reads the complete content of a remote file in one shot.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// Output runs a named executable on the peer and returns its combined
	// output. A non-zero exit is returned as *ExitError alongside the
	// output produced.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Close releases the channel. Safe to call after a failed operation.
	Close() error
}

// Target identifies one node to dial. User and Port are optional per-node
// overrides of the dialer's configuration.
type Target struct {
	Host string
	User string
	Port int
}

// Dialer opens channels to cluster nodes.
type Dialer interface {
	// Dial opens a channel to the target. Failure to open is a
	// host-unreachable condition (ErrCodeHostUnreachable), distinct from
	// failures of operations on an open channel.
	Dial(ctx context.Context, target Target) (Channel, error)
}

// ExitError reports a remote command that ran and exited non-zero.
type ExitError struct {
	Code   int
	Output []byte
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("remote command exited with status %d", e.Code)
}
