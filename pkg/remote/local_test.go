package remote

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalReadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.conf"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	l := NewLocal()
	entries, err := l.ReadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byPath := map[string]EntryKind{}
	for _, e := range entries {
		assert.True(t, filepath.IsAbs(e.Path))
		byPath[filepath.Base(e.Path)] = e.Kind
	}
	assert.Equal(t, KindFile, byPath["a.conf"])
	assert.Equal(t, KindDir, byPath["sub"])
}

func TestLocalReadDirMissing(t *testing.T) {
	l := NewLocal()
	_, err := l.ReadDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalStat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o640))

	l := NewLocal()
	st, err := l.Stat(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, st.IsRegular())
	assert.Equal(t, int64(5), st.Size)
	assert.NotZero(t, st.Inode)
	assert.NotEmpty(t, st.Owner)
	assert.False(t, st.ModifyTime.IsZero())

	dst, err := l.Stat(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, dst.IsDir())
}

func TestLocalStatFollowsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.WriteFile(target, []byte("data"), 0o644))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	l := NewLocal()
	st, err := l.Stat(context.Background(), link)
	require.NoError(t, err)
	assert.True(t, st.IsRegular(), "Stat follows symlinks")

	tst, err := l.Stat(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, tst.Inode, st.Inode)
}

func TestLocalReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	content := []byte("[global]\nfsid = abc\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	l := NewLocal()
	got, err := l.ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestLocalOutput(t *testing.T) {
	l := NewLocal()

	out, err := l.Output(context.Background(), "true")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = l.Output(context.Background(), "false")
	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 1, ee.Code)
}
