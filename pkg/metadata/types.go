package metadata

import (
	"fmt"
	"time"

	"github.com/cephmedic/cephmedic/pkg/version"
)

// POSIX mode bit masks used to classify stat records. Values mirror the
// st_mode encoding so records parsed from remote `stat` output classify the
// same way as records built from local syscalls.
const (
	modeTypeMask = 0o170000
	modeDir      = 0o040000
	modeRegular  = 0o100000
	modeSymlink  = 0o120000
)

// StatRecord holds filesystem metadata for one remote path, semantically
// equivalent to a POSIX stat structure. Err carries any remote-side error
// encountered while stating; when set the remaining fields are zero.
type StatRecord struct {
	Mode       uint32    `json:"mode" yaml:"mode"`
	UID        uint32    `json:"uid" yaml:"uid"`
	Owner      string    `json:"owner,omitempty" yaml:"owner,omitempty"`
	GID        uint32    `json:"gid" yaml:"gid"`
	Group      string    `json:"group,omitempty" yaml:"group,omitempty"`
	Size       int64     `json:"size" yaml:"size"`
	Links      uint64    `json:"nlink" yaml:"nlink"`
	Device     uint64    `json:"dev" yaml:"dev"`
	Inode      uint64    `json:"inode" yaml:"inode"`
	AccessTime time.Time `json:"atime" yaml:"atime"`
	ModifyTime time.Time `json:"mtime" yaml:"mtime"`
	ChangeTime time.Time `json:"ctime" yaml:"ctime"`
	Blocks     int64     `json:"blocks" yaml:"blocks"`
	BlockSize  int64     `json:"blksize" yaml:"blksize"`

	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

// IsDir reports whether the record describes a directory.
func (s *StatRecord) IsDir() bool { return s.Mode&modeTypeMask == modeDir }

// IsRegular reports whether the record describes a regular file.
func (s *StatRecord) IsRegular() bool { return s.Mode&modeTypeMask == modeRegular }

// IsSymlink reports whether the record describes a symbolic link.
func (s *StatRecord) IsSymlink() bool { return s.Mode&modeTypeMask == modeSymlink }

// CaptureError marks a failed content capture for a file. It is data, not a
// collection failure: checks that care about capture failures can read it off
// the file entry.
type CaptureError struct {
	Op     string `json:"op" yaml:"op"`
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Error implements the error interface.
func (e *CaptureError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Reason)
}

// FileEntry is one stat-collected file discovered under a path of interest.
// Contents is populated only when the owning root requests content capture
// and the read succeeded; Captured distinguishes an empty file from a file
// that was never read.
type FileEntry struct {
	Stat         StatRecord    `json:"stat" yaml:"stat"`
	Contents     string        `json:"contents,omitempty" yaml:"contents,omitempty"`
	Captured     bool          `json:"captured,omitempty" yaml:"captured,omitempty"`
	CaptureError *CaptureError `json:"capture_error,omitempty" yaml:"capture_error,omitempty"`
}

// DirEntry is one stat-collected directory discovered under a path of
// interest. Directories are never content-captured.
type DirEntry struct {
	Stat StatRecord `json:"stat" yaml:"stat"`
}

// PathMetadata is the collected tree for one path of interest on one node.
// Keys are absolute paths, unique within the root's subtree.
type PathMetadata struct {
	Files map[string]*FileEntry `json:"files" yaml:"files"`
	Dirs  map[string]*DirEntry  `json:"dirs" yaml:"dirs"`
}

// NewPathMetadata returns a PathMetadata with initialized maps.
func NewPathMetadata() *PathMetadata {
	return &PathMetadata{
		Files: make(map[string]*FileEntry),
		Dirs:  make(map[string]*DirEntry),
	}
}

// CephInfo holds the version and install state reported by the node.
type CephInfo struct {
	// Banner is the raw `ceph --version` output.
	Banner string `json:"version,omitempty" yaml:"version,omitempty"`
	// Parsed is the banner broken into comparable components, when the
	// banner was parseable.
	Parsed *version.CephVersion `json:"parsed,omitempty" yaml:"parsed,omitempty"`
	// Installed reports whether the ceph executable is present on the node.
	Installed bool `json:"installed" yaml:"installed"`
	// ClusterConfName is the cluster name inferred from conf files found
	// under /etc/ceph, when not configured explicitly.
	ClusterConfName string `json:"cluster_conf_name,omitempty" yaml:"cluster_conf_name,omitempty"`
}

// NodeMetadata is the per-node aggregate committed into the store after a
// successful build. Network and Devices are extension points; they are empty
// in the current scope but always present so checks can key into them.
type NodeMetadata struct {
	Paths   map[string]*PathMetadata `json:"paths" yaml:"paths"`
	Network map[string]any           `json:"network" yaml:"network"`
	Devices map[string]any           `json:"devices" yaml:"devices"`
	Ceph    CephInfo                 `json:"ceph" yaml:"ceph"`
}

// NewNodeMetadata returns a NodeMetadata with initialized containers.
func NewNodeMetadata() *NodeMetadata {
	return &NodeMetadata{
		Paths:   make(map[string]*PathMetadata),
		Network: make(map[string]any),
		Devices: make(map[string]any),
	}
}

// Path returns the collected tree for a root, or nil when the root was not
// collected on this node.
func (n *NodeMetadata) Path(root string) *PathMetadata {
	return n.Paths[root]
}

// DirPaths returns the absolute directory paths collected across all roots.
// Intended for checks; ordering is not guaranteed.
func (n *NodeMetadata) DirPaths() []string {
	var out []string
	for _, pm := range n.Paths {
		for p := range pm.Dirs {
			out = append(out, p)
		}
	}
	return out
}
