package remote

import (
	"context"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/cephmedic/cephmedic/pkg/metadata"
)

// Local is an os-backed channel for collecting from the coordinator host
// itself, with the same contract as the SSH channel. It also serves as the
// walker's test vehicle against real directory trees.
type Local struct {
	hostname string

	mu     sync.Mutex
	users  map[uint32]string
	groups map[uint32]string
}

// LocalDialer hands out local channels regardless of the target, for runs
// against the coordinator host itself.
type LocalDialer struct{}

// Dial implements Dialer.
func (LocalDialer) Dial(_ context.Context, _ Target) (Channel, error) {
	return NewLocal(), nil
}

// NewLocal creates a channel over the local filesystem.
func NewLocal() *Local {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	return &Local{
		hostname: hostname,
		users:    make(map[uint32]string),
		groups:   make(map[uint32]string),
	}
}

func (l *Local) Host() string { return l.hostname }

func (l *Local) Close() error { return nil }

func (l *Local) ReadDir(ctx context.Context, path string) ([]DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	des, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	entries := make([]DirEntry, 0, len(des))
	for _, de := range des {
		kind := KindOther
		switch {
		case de.Type()&os.ModeSymlink != 0:
			kind = KindSymlink
		case de.IsDir():
			kind = KindDir
		case de.Type().IsRegular():
			kind = KindFile
		}
		entries = append(entries, DirEntry{Path: filepath.Join(path, de.Name()), Kind: kind})
	}
	return entries, nil
}

func (l *Local) Stat(ctx context.Context, path string) (*metadata.StatRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		// Fallback for filesystems without full stat support.
		return &metadata.StatRecord{
			Mode:       modeFromFileInfo(info),
			Size:       info.Size(),
			ModifyTime: info.ModTime().UTC(),
		}, nil
	}

	return &metadata.StatRecord{
		Mode:       st.Mode,
		UID:        st.Uid,
		Owner:      l.userName(st.Uid),
		GID:        st.Gid,
		Group:      l.groupName(st.Gid),
		Size:       st.Size,
		Links:      uint64(st.Nlink),
		Device:     uint64(st.Dev),
		Inode:      st.Ino,
		AccessTime: time.Unix(st.Atim.Sec, st.Atim.Nsec).UTC(),
		ModifyTime: time.Unix(st.Mtim.Sec, st.Mtim.Nsec).UTC(),
		ChangeTime: time.Unix(st.Ctim.Sec, st.Ctim.Nsec).UTC(),
		Blocks:     st.Blocks,
		BlockSize:  st.Blksize,
	}, nil
}

func (l *Local) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (l *Local) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		var ee *exec.ExitError
		if stdErrorsAs(err, &ee) {
			return out, classifyExit(&ExitError{Code: ee.ExitCode(), Output: out}, out)
		}
		return out, err
	}
	return out, nil
}

func (l *Local) userName(uid uint32) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if name, ok := l.users[uid]; ok {
		return name
	}
	name := strconv.FormatUint(uint64(uid), 10)
	if u, err := user.LookupId(name); err == nil {
		name = u.Username
	}
	l.users[uid] = name
	return name
}

func (l *Local) groupName(gid uint32) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if name, ok := l.groups[gid]; ok {
		return name
	}
	name := strconv.FormatUint(uint64(gid), 10)
	if g, err := user.LookupGroupId(name); err == nil {
		name = g.Name
	}
	l.groups[gid] = name
	return name
}

// modeFromFileInfo rebuilds a POSIX st_mode from the portable FileInfo mode.
func modeFromFileInfo(info os.FileInfo) uint32 {
	mode := uint32(info.Mode().Perm())
	switch {
	case info.IsDir():
		mode |= 0o040000
	case info.Mode()&os.ModeSymlink != 0:
		mode |= 0o120000
	case info.Mode().IsRegular():
		mode |= 0o100000
	}
	return mode
}
