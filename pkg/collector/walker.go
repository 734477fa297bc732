package collector

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path"

	"github.com/cephmedic/cephmedic/pkg/metadata"
	"github.com/cephmedic/cephmedic/pkg/remote"
)

// WalkResult lists the absolute paths discovered under one root. No ordering
// is guaranteed; consumers key the entries by path. Root is the stat of the
// root directory itself, nil when the root is missing or not a directory.
type WalkResult struct {
	Root  *metadata.StatRecord
	Files []string
	Dirs  []string
}

// identity is the resolved (device, inode) pair of a directory, used to
// refuse re-descending into a directory already visited through another
// path. This is what breaks symlink cycles.
type identity struct {
	dev uint64
	ino uint64
}

// walkTree enumerates the tree under root on the remote peer, applying the
// root's name-based skip rules. The descent is iterative with an explicit
// stack so unbounded filesystem depth cannot exhaust the goroutine stack.
//
// A missing root is an empty contribution, not a failure. Unreadable entries
// (permission errors, paths vanishing mid-walk) are skipped; any other
// remote failure aborts the walk and surfaces as a node build failure.
func walkTree(ctx context.Context, ch remote.Channel, root string, rule PathRule) (*WalkResult, error) {
	res := &WalkResult{}

	skipDirs := toSet(rule.SkipDirs)
	skipFiles := toSet(rule.SkipFiles)

	rootStat, err := ch.Stat(ctx, root)
	if err != nil {
		if skippable(err) {
			slog.Debug("root not collectable, recording empty contribution",
				"host", ch.Host(), "root", root, "reason", err.Error())
			return res, nil
		}
		return nil, err
	}
	if !rootStat.IsDir() {
		return res, nil
	}
	res.Root = rootStat

	visited := map[identity]struct{}{
		{rootStat.Device, rootStat.Inode}: {},
	}
	stack := []string{root}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := ch.ReadDir(ctx, dir)
		if err != nil {
			if skippable(err) {
				continue
			}
			return nil, err
		}

		for _, entry := range entries {
			name := path.Base(entry.Path)

			switch entry.Kind {
			case remote.KindFile:
				if _, skip := skipFiles[name]; skip {
					continue
				}
				res.Files = append(res.Files, entry.Path)

			case remote.KindDir, remote.KindSymlink:
				st, err := ch.Stat(ctx, entry.Path)
				if err != nil {
					if skippable(err) {
						continue
					}
					return nil, err
				}

				switch {
				case st.IsDir():
					if _, skip := skipDirs[name]; skip {
						continue
					}
					res.Dirs = append(res.Dirs, entry.Path)
					id := identity{st.Device, st.Inode}
					if _, seen := visited[id]; !seen {
						visited[id] = struct{}{}
						stack = append(stack, entry.Path)
					}
				case st.IsRegular():
					if _, skip := skipFiles[name]; skip {
						continue
					}
					res.Files = append(res.Files, entry.Path)
				}
				// dangling links and special targets are omitted

			default:
				// sockets, fifos, devices: not collected
			}
		}
	}

	return res, nil
}

// skippable reports whether a per-entry error degrades to an empty
// contribution instead of failing the walk.
func skippable(err error) bool {
	return errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist)
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
