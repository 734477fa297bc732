package collector

import (
	"context"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/cephmedic/cephmedic/pkg/errors"
	"github.com/cephmedic/cephmedic/pkg/metadata"
	"github.com/cephmedic/cephmedic/pkg/remote"
)

// fakeChannel is an in-memory Channel over a declared file tree. Directories
// are implied by the file paths; extra empty directories can be declared
// explicitly.
type fakeChannel struct {
	host  string
	files map[string]string
	dirs  map[string]bool
	cmds  map[string]cmdResult

	mu     sync.Mutex
	inodes map[string]uint64
	closed bool
}

type cmdResult struct {
	out  string
	exit int
}

func newFakeChannel(host string, files map[string]string) *fakeChannel {
	c := &fakeChannel{
		host:   host,
		files:  map[string]string{},
		dirs:   map[string]bool{},
		cmds:   map[string]cmdResult{},
		inodes: map[string]uint64{},
	}
	for p, content := range files {
		c.files[p] = content
		for d := path.Dir(p); d != "/" && d != "."; d = path.Dir(d) {
			c.dirs[d] = true
		}
	}
	return c
}

func (c *fakeChannel) withDir(dir string) *fakeChannel {
	for d := dir; d != "/" && d != "."; d = path.Dir(d) {
		c.dirs[d] = true
	}
	return c
}

func (c *fakeChannel) withCmd(cmdline string, out string, exit int) *fakeChannel {
	c.cmds[cmdline] = cmdResult{out: out, exit: exit}
	return c
}

func (c *fakeChannel) Host() string { return c.host }

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeChannel) ReadDir(_ context.Context, dir string) ([]remote.DirEntry, error) {
	if !c.dirs[dir] {
		return nil, errors.Wrap(errors.ErrCodeRemoteCall, "list "+dir, fs.ErrNotExist)
	}
	var entries []remote.DirEntry
	for p := range c.files {
		if path.Dir(p) == dir {
			entries = append(entries, remote.DirEntry{Path: p, Kind: remote.KindFile})
		}
	}
	for p := range c.dirs {
		if path.Dir(p) == dir {
			entries = append(entries, remote.DirEntry{Path: p, Kind: remote.KindDir})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (c *fakeChannel) Stat(_ context.Context, p string) (*metadata.StatRecord, error) {
	switch {
	case c.dirs[p]:
		return &metadata.StatRecord{
			Mode:  0o040755,
			Owner: "ceph", Group: "ceph",
			Device: 1, Inode: c.inode(p),
			Links: 2,
		}, nil
	default:
		content, ok := c.files[p]
		if !ok {
			return nil, errors.Wrap(errors.ErrCodeRemoteCall, "stat "+p, fs.ErrNotExist)
		}
		return &metadata.StatRecord{
			Mode:  0o100644,
			Owner: "ceph", Group: "ceph",
			Size:   int64(len(content)),
			Device: 1, Inode: c.inode(p),
			Links: 1,
		}, nil
	}
}

func (c *fakeChannel) ReadFile(_ context.Context, p string) ([]byte, error) {
	content, ok := c.files[p]
	if !ok {
		return nil, errors.Wrap(errors.ErrCodeRemoteCall, "read "+p, fs.ErrNotExist)
	}
	return []byte(content), nil
}

func (c *fakeChannel) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	res, ok := c.cmds[cmdline]
	if !ok {
		return nil, &remote.ExitError{Code: 127}
	}
	if res.exit != 0 {
		return []byte(res.out), &remote.ExitError{Code: res.exit, Output: []byte(res.out)}
	}
	return []byte(res.out), nil
}

func (c *fakeChannel) inode(p string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ino, ok := c.inodes[p]; ok {
		return ino
	}
	ino := uint64(len(c.inodes) + 1)
	c.inodes[p] = ino
	return ino
}

// fakeDialer maps hosts to prebuilt channels; unmapped hosts are unreachable.
type fakeDialer struct {
	channels map[string]*fakeChannel
}

func (d *fakeDialer) Dial(_ context.Context, target remote.Target) (remote.Channel, error) {
	ch, ok := d.channels[target.Host]
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeHostUnreachable,
			"connection refused", map[string]any{"host": target.Host})
	}
	return ch, nil
}

// recordingNotifier captures progress notifications for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingNotifier) Notify(host string, phase Phase, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, host+"/"+string(phase)+"/"+string(status))
}

func (r *recordingNotifier) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}
