package collector

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/cephmedic/cephmedic/pkg/defaults"
	"github.com/cephmedic/cephmedic/pkg/metadata"
	"github.com/cephmedic/cephmedic/pkg/remote"
)

// statFile stats one file and, when requested, captures its contents.
// A stat refused by the peer (vanished, unreadable) is recorded on the
// entry itself rather than failing the node; the same goes for capture
// problems, which land in FileEntry.CaptureError. Transport failures
// still propagate.
func statFile(ctx context.Context, ch remote.Channel, path string, capture bool) (*metadata.FileEntry, error) {
	entry := &metadata.FileEntry{}

	st, err := ch.Stat(ctx, path)
	if err != nil {
		if skippable(err) {
			entry.Stat = metadata.StatRecord{Err: err.Error()}
			return entry, nil
		}
		return nil, err
	}
	entry.Stat = *st

	if !capture || !st.IsRegular() {
		return entry, nil
	}

	if st.Size > defaults.MaxCaptureSize {
		entry.CaptureError = &metadata.CaptureError{
			Op:     "read",
			Path:   path,
			Reason: fmt.Sprintf("file size %d exceeds capture limit %d", st.Size, defaults.MaxCaptureSize),
		}
		return entry, nil
	}

	data, err := ch.ReadFile(ctx, path)
	if err != nil {
		if skippable(err) || isExitError(err) {
			entry.CaptureError = &metadata.CaptureError{
				Op:     "read",
				Path:   path,
				Reason: err.Error(),
			}
			return entry, nil
		}
		return nil, err
	}

	if !utf8.Valid(data) {
		entry.CaptureError = &metadata.CaptureError{
			Op:     "decode",
			Path:   path,
			Reason: "contents are not valid UTF-8",
		}
		return entry, nil
	}

	entry.Contents = string(data)
	entry.Captured = true
	return entry, nil
}

// statDir stats one directory. Same degradation rules as statFile.
func statDir(ctx context.Context, ch remote.Channel, path string) (*metadata.DirEntry, error) {
	st, err := ch.Stat(ctx, path)
	if err != nil {
		if skippable(err) {
			return &metadata.DirEntry{Stat: metadata.StatRecord{Err: err.Error()}}, nil
		}
		return nil, err
	}
	return &metadata.DirEntry{Stat: *st}, nil
}

func isExitError(err error) bool {
	var ee *remote.ExitError
	return errors.As(err, &ee)
}
