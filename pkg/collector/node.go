package collector

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/cephmedic/cephmedic/pkg/metadata"
	"github.com/cephmedic/cephmedic/pkg/remote"
	"github.com/cephmedic/cephmedic/pkg/version"
)

// Builder assembles the full metadata record for one node over an open
// channel.
type Builder interface {
	Build(ctx context.Context, ch remote.Channel) (*metadata.NodeMetadata, error)
}

// NodeBuilder is the default Builder. It walks every configured path of
// interest, stat-collects the discovered entries, and queries the node's
// ceph install state.
type NodeBuilder struct {
	paths    []PathOfInterest
	notifier Notifier
}

// NodeBuilderOption mutates a NodeBuilder during construction.
type NodeBuilderOption func(*NodeBuilder)

// WithPaths overrides the default paths of interest.
func WithPaths(paths []PathOfInterest) NodeBuilderOption {
	return func(b *NodeBuilder) {
		b.paths = paths
	}
}

// WithBuildNotifier attaches a progress sink to the builder.
func WithBuildNotifier(n Notifier) NodeBuilderOption {
	return func(b *NodeBuilder) {
		if n != nil {
			b.notifier = n
		}
	}
}

// NewNodeBuilder creates a builder with the default paths of interest.
func NewNodeBuilder(opts ...NodeBuilderOption) *NodeBuilder {
	b := &NodeBuilder{
		paths:    DefaultPaths(),
		notifier: slogNotifier(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build collects all metadata for the node behind ch. Degraded entries
// (unreadable files, vanished paths) are recorded in the result; only
// transport-level failures return an error, in which case the node
// contributes nothing.
func (b *NodeBuilder) Build(ctx context.Context, ch remote.Channel) (*metadata.NodeMetadata, error) {
	node := metadata.NewNodeMetadata()
	host := ch.Host()

	b.notifier.Notify(host, PhasePaths, StatusPending)
	for _, poi := range b.paths {
		pm, err := b.collectPath(ctx, ch, poi)
		if err != nil {
			b.notifier.Notify(host, PhasePaths, StatusFailure)
			return nil, err
		}
		node.Paths[poi.Root] = pm
	}
	b.notifier.Notify(host, PhasePaths, StatusSuccess)

	b.notifier.Notify(host, PhaseNetwork, StatusPending)
	node.Network = collectNetwork(ctx, ch)
	b.notifier.Notify(host, PhaseNetwork, StatusSuccess)

	b.notifier.Notify(host, PhaseDevices, StatusPending)
	node.Devices = collectDevices(ctx, ch)
	b.notifier.Notify(host, PhaseDevices, StatusSuccess)

	b.notifier.Notify(host, PhaseCeph, StatusPending)
	info, err := collectCephInfo(ctx, ch, node)
	if err != nil {
		b.notifier.Notify(host, PhaseCeph, StatusFailure)
		return nil, err
	}
	node.Ceph = *info
	b.notifier.Notify(host, PhaseCeph, StatusSuccess)

	return node, nil
}

// collectPath walks one root and stat-collects everything the walk found.
// The root itself, when present, is recorded as a directory entry so checks
// can reason about its ownership and mode.
func (b *NodeBuilder) collectPath(ctx context.Context, ch remote.Channel, poi PathOfInterest) (*metadata.PathMetadata, error) {
	pm := metadata.NewPathMetadata()

	walk, err := walkTree(ctx, ch, poi.Root, poi.Rule)
	if err != nil {
		return nil, err
	}

	// The root itself gets a dir entry whenever it exists, even when empty;
	// an empty /var/run/ceph is exactly the state checks need to see.
	if walk.Root != nil {
		pm.Dirs[poi.Root] = &metadata.DirEntry{Stat: *walk.Root}
	}

	for _, p := range walk.Files {
		entry, err := statFile(ctx, ch, p, poi.Rule.CaptureContents)
		if err != nil {
			return nil, err
		}
		pm.Files[p] = entry
	}
	for _, p := range walk.Dirs {
		entry, err := statDir(ctx, ch, p)
		if err != nil {
			return nil, err
		}
		pm.Dirs[p] = entry
	}

	return pm, nil
}

// collectNetwork is the extension point for interface and routing data.
func collectNetwork(_ context.Context, _ remote.Channel) map[string]any {
	return map[string]any{}
}

// collectDevices is the extension point for block device data.
func collectDevices(_ context.Context, _ remote.Channel) map[string]any {
	return map[string]any{}
}

// collectCephInfo queries the install state of ceph on the node. A missing
// executable is data, not a failure.
func collectCephInfo(ctx context.Context, ch remote.Channel, node *metadata.NodeMetadata) (*metadata.CephInfo, error) {
	info := &metadata.CephInfo{}

	out, err := ch.Output(ctx, "which", "ceph")
	switch {
	case err == nil:
		info.Installed = strings.TrimSpace(string(out)) != ""
	case skippable(err) || isExitError(err):
		info.Installed = false
	default:
		return nil, err
	}

	if info.Installed {
		out, err := ch.Output(ctx, "ceph", "--version")
		switch {
		case err == nil:
			info.Banner = strings.TrimSpace(string(out))
			if parsed, perr := version.ParseBanner(info.Banner); perr == nil {
				info.Parsed = &parsed
			}
		case isExitError(err):
			// installed but not runnable, leave the banner empty
		default:
			return nil, err
		}
	}

	info.ClusterConfName = inferClusterName(node.Path("/etc/ceph"))
	return info, nil
}

// inferClusterName derives the cluster name from conf files found directly
// under /etc/ceph. The stock name wins when its conf file is present;
// otherwise a single custom conf file names the cluster.
func inferClusterName(pm *metadata.PathMetadata) string {
	if pm == nil {
		return ""
	}

	var names []string
	for p := range pm.Files {
		if path.Dir(p) != "/etc/ceph" {
			continue
		}
		base := path.Base(p)
		if !strings.HasSuffix(base, ".conf") {
			continue
		}
		names = append(names, strings.TrimSuffix(base, ".conf"))
	}

	sort.Strings(names)
	for _, n := range names {
		if n == "ceph" {
			return "ceph"
		}
	}
	if len(names) == 1 {
		return names[0]
	}
	return ""
}
