package batch

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zipview/internal/ziptype"
)

func TestFileSinkCommitReplacesExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "sub", "out.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, []byte("old content that is longer"), 0o644))

	w, err := NewFileSink().Writer(dest, 0)
	require.NoError(t, err)

	assert.Equal(t, filepath.Dir(dest), filepath.Dir(w.TempPath()), "temp file must be a sibling")
	assert.NotEqual(t, dest, w.TempPath())
	assert.True(t, strings.HasPrefix(filepath.Base(w.TempPath()), ".out.txt"+tempInfix))

	_, err = w.Write([]byte("new"))
	require.NoError(t, err)

	// Final path still holds the old content until Commit.
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old content that is longer", string(got))

	require.NoError(t, w.Commit())

	got, err = os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	assert.NoFileExists(t, w.TempPath())
}

func TestFileSinkCreatesParents(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "a", "b", "c.txt")
	w, err := NewFileSink().Writer(dest, 0)
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, w.Commit())
	assert.FileExists(t, dest)
}

func TestFileSinkDiscard(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(dest, []byte("original"), 0o644))

	w, err := NewFileSink().Writer(dest, 0)
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, w.Discard())

	assert.NoFileExists(t, w.TempPath())
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}

func TestFileSinkPermissions(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permissions")
	}

	dest := filepath.Join(t.TempDir(), "script.sh")
	w, err := NewFileSink().Writer(dest, 0o750)
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
}

func TestFileSinkRenameFailureKeepsTemp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// A non-empty directory at the destination cannot be removed by os.Remove.
	dest := filepath.Join(dir, "occupied")
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "child"), 0o755))

	w, err := NewFileSink().Writer(dest, 0)
	require.NoError(t, err)
	_, err = w.Write([]byte("data"))
	require.NoError(t, err)

	err = w.Commit()
	require.Error(t, err)
	assert.ErrorIs(t, err, ziptype.ErrDeleteExisting)

	var fe *ziptype.FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, w.TempPath(), fe.TempPath)
	assert.Contains(t, err.Error(), w.TempPath())
	assert.FileExists(t, w.TempPath())
}

func TestFileSinkCreateDirFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := NewFileSink().Writer(filepath.Join(blocker, "x", "y.txt"), 0)
	assert.ErrorIs(t, err, ziptype.ErrCreateDir)
}
