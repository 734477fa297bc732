package remote

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/cephmedic/cephmedic/pkg/metadata"
)

// statFormat is the GNU stat format string producing every StatRecord field
// in one call: raw mode (hex), uid, owner, gid, group, size, links, device,
// inode, atime, mtime, ctime (epoch seconds), blocks, block size.
const statFormat = "%f|%u|%U|%g|%G|%s|%h|%d|%i|%X|%Y|%Z|%b|%B"

// parseStatOutput parses one line of statFormat output into a StatRecord.
func parseStatOutput(line string) (*metadata.StatRecord, error) {
	fields := strings.Split(line, "|")
	if len(fields) != 14 {
		return nil, fmt.Errorf("malformed stat output %q: expected 14 fields, got %d", line, len(fields))
	}

	mode, err := strconv.ParseUint(fields[0], 16, 32)
	if err != nil {
		return nil, fmt.Errorf("malformed stat mode %q: %w", fields[0], err)
	}

	ints := make([]int64, 14)
	for _, i := range []int{1, 3, 5, 6, 7, 8, 9, 10, 11, 12, 13} {
		v, err := strconv.ParseInt(fields[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed stat field %q: %w", fields[i], err)
		}
		ints[i] = v
	}

	return &metadata.StatRecord{
		Mode:       uint32(mode),
		UID:        uint32(ints[1]),
		Owner:      fields[2],
		GID:        uint32(ints[3]),
		Group:      fields[4],
		Size:       ints[5],
		Links:      uint64(ints[6]),
		Device:     uint64(ints[7]),
		Inode:      uint64(ints[8]),
		AccessTime: time.Unix(ints[9], 0).UTC(),
		ModifyTime: time.Unix(ints[10], 0).UTC(),
		ChangeTime: time.Unix(ints[11], 0).UTC(),
		Blocks:     ints[12],
		BlockSize:  ints[13],
	}, nil
}

// parseFindOutput parses `find -printf '%y %p\n'` output into directory
// entries. The type character is first, the rest of the line is the path
// (paths may contain spaces).
func parseFindOutput(out []byte) []DirEntry {
	var entries []DirEntry
	for _, line := range strings.Split(string(out), "\n") {
		if len(line) < 3 || line[1] != ' ' {
			continue
		}
		var kind EntryKind
		switch line[0] {
		case 'f':
			kind = KindFile
		case 'd':
			kind = KindDir
		case 'l':
			kind = KindSymlink
		default:
			kind = KindOther
		}
		entries = append(entries, DirEntry{Path: line[2:], Kind: kind})
	}
	return entries
}

// shellQuote wraps s in single quotes, escaping embedded single quotes, so
// remote paths survive the peer's shell untouched.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// classifyExit maps well-known failure text from a non-zero remote exit onto
// sentinel errors the walker understands. Everything else stays an ExitError.
func classifyExit(ee *ExitError, out []byte) error {
	text := string(out)
	switch {
	case strings.Contains(text, "Permission denied"):
		return fmt.Errorf("remote: %s: %w", firstLine(text), fs.ErrPermission)
	case strings.Contains(text, "No such file or directory"):
		return fmt.Errorf("remote: %s: %w", firstLine(text), fs.ErrNotExist)
	default:
		return ee
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func stdErrorsAs(err error, target any) bool {
	return stderrors.As(err, target)
}
