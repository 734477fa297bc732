package collector

// PathRule holds the collection rules for one path of interest.
type PathRule struct {
	// CaptureContents requests the full byte content of every regular
	// file discovered under the root.
	CaptureContents bool
	// SkipDirs lists directory base names excluded from recursion and
	// from the result, anywhere under the root.
	SkipDirs []string
	// SkipFiles lists file base names excluded from the result, anywhere
	// under the root.
	SkipFiles []string
}

// PathOfInterest pairs a filesystem root with its collection rules.
type PathOfInterest struct {
	Root string
	Rule PathRule
}

// DefaultPaths returns the fixed, ordered set of filesystem roots collected
// on every node. The rules are read-only during a run.
func DefaultPaths() []PathOfInterest {
	return []PathOfInterest{
		{
			Root: "/etc/ceph",
			Rule: PathRule{CaptureContents: true},
		},
		{
			Root: "/var/lib/ceph",
			Rule: PathRule{
				CaptureContents: true,
				SkipFiles:       []string{"activate.monmap", "superblock"},
				SkipDirs:        []string{"current", "store.db"},
			},
		},
		{
			Root: "/var/run/ceph",
			Rule: PathRule{CaptureContents: false},
		},
	}
}
