package zipview

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zipview/internal/testutil"
)

func readArchive(t *testing.T, entries []testutil.ZipEntry) *Archive {
	t.Helper()
	path := testutil.WriteZip(t, t.TempDir(), "src.zip", entries)
	a, err := Read(context.Background(), path)
	require.NoError(t, err)
	return a
}

func entryByPath(t *testing.T, a *Archive, path string) Entry {
	t.Helper()
	for _, e := range a.Entries() {
		if e.Path == path {
			return e
		}
	}
	t.Fatalf("entry %s not found", path)
	return Entry{}
}

func TestExtractManyRoundTrip(t *testing.T) {
	t.Parallel()

	a := readArchive(t, sampleEntries())
	dest := t.TempDir()

	entries := a.Entries()
	n, err := ExtractMany(context.Background(), a, entries, []int{0, 1, 2, 3}, dest, false)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	for _, e := range entries {
		target := filepath.Join(dest, filepath.FromSlash(e.Path))
		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, e.Size, uint64(len(data)))
		assert.Equal(t, e.CRC32, testutil.CRC(string(data)))

		info, err := os.Stat(target)
		require.NoError(t, err)
		assert.True(t, info.ModTime().Equal(testutil.ModTime), "mod time of %s", e.Path)
	}

	leftovers, err := filepath.Glob(filepath.Join(dest, "*", ".*.zipview-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestExtractManyFlatten(t *testing.T) {
	t.Parallel()

	a := readArchive(t, []testutil.ZipEntry{
		testutil.File("a/b/c.txt", "c"),
		testutil.File("d.txt", "d"),
	})
	dest := t.TempDir()

	n, err := ExtractMany(context.Background(), a, a.Entries(), []int{0, 1}, dest, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.FileExists(t, filepath.Join(dest, "c.txt"))
	assert.FileExists(t, filepath.Join(dest, "d.txt"))
	assert.NoDirExists(t, filepath.Join(dest, "a"))
}

func TestExtractManySelection(t *testing.T) {
	t.Parallel()

	a := readArchive(t, sampleEntries())
	dest := t.TempDir()

	n, err := ExtractMany(context.Background(), a, a.Entries(), []int{3, 0, 3}, dest, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, filepath.Join(dest, "root.txt"))
	assert.FileExists(t, filepath.Join(dest, "b", "z.txt"))
	assert.NoFileExists(t, filepath.Join(dest, "a", "x.txt"))

	n, err = ExtractMany(context.Background(), a, a.Entries(), []int{0, 4}, dest, false)
	require.ErrorIs(t, err, ErrInvalidSelection)
	assert.Zero(t, n)

	n, err = ExtractMany(context.Background(), a, a.Entries(), nil, dest, false)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExtractManyProgress(t *testing.T) {
	t.Parallel()

	a := readArchive(t, sampleEntries())
	dest := t.TempDir()

	var last ProgressEvent
	var fractions []float64
	_, err := ExtractMany(context.Background(), a, a.Entries(), []int{0, 1, 2, 3}, dest, false,
		WithProgress(func(ev ProgressEvent) {
			last = ev
			fractions = append(fractions, ev.Fraction)
		}),
		WithBufferSize(3),
	)
	require.NoError(t, err)

	assert.Equal(t, StageExtracting, last.Stage)
	assert.Equal(t, a.TotalSize(), last.BytesTotal)
	assert.Equal(t, a.TotalSize(), last.BytesDone)
	assert.Equal(t, 4, last.FilesDone)
	assert.InDelta(t, 1.0, last.Fraction, 1e-9)
	assert.IsNonDecreasing(t, fractions)
}

func TestExtractManyCancelled(t *testing.T) {
	t.Parallel()

	a := readArchive(t, sampleEntries())
	dest := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n, err := ExtractMany(ctx, a, a.Entries(), []int{0, 1, 2, 3}, dest, false,
		WithProgress(func(ev ProgressEvent) {
			if ev.FilesDone == 2 {
				cancel()
			}
		}))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, filepath.Join(dest, "root.txt"))
	assert.FileExists(t, filepath.Join(dest, "a", "x.txt"))
	assert.NoFileExists(t, filepath.Join(dest, "a", "y.txt"))
}

func TestExtractOneReplacesExisting(t *testing.T) {
	t.Parallel()

	a := readArchive(t, sampleEntries())
	dest := t.TempDir()
	target := filepath.Join(dest, "y.txt")
	require.NoError(t, os.WriteFile(target, []byte("old content"), 0o600))

	e := entryByPath(t, a, "a/y.txt")
	require.NoError(t, ExtractOne(context.Background(), a, e, dest))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "yy", string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(target)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	dirEntries, err := os.ReadDir(dest)
	require.NoError(t, err)
	require.Len(t, dirEntries, 1)
}

func TestExtractOneCancelled(t *testing.T) {
	t.Parallel()

	a := readArchive(t, sampleEntries())
	dest := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ExtractOne(ctx, a, entryByPath(t, a, "root.txt"), dest)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dest, "root.txt"))
}

func TestExtractArchiveChanged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.WriteZip(t, dir, "src.zip", []testutil.ZipEntry{
		testutil.File("a.txt", "original"),
	})
	a, err := Read(context.Background(), path)
	require.NoError(t, err)

	testutil.WriteZip(t, dir, "src.zip", []testutil.ZipEntry{
		testutil.File("a.txt", "replaced"),
	})

	dest := t.TempDir()
	target := filepath.Join(dest, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("keep me"), 0o644))

	err = ExtractOne(context.Background(), a, entryByPath(t, a, "a.txt"), dest)
	require.ErrorIs(t, err, ErrArchiveChanged)

	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "a.txt", fe.Entry)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestExtractIndexOutOfRange(t *testing.T) {
	t.Parallel()

	a := readArchive(t, sampleEntries())
	e := entryByPath(t, a, "root.txt")
	e.Index = 99

	_, err := ExtractMany(context.Background(), a, []Entry{e}, []int{0}, t.TempDir(), false)
	require.ErrorIs(t, err, ErrArchiveChanged)
}

func TestExtractCRCMismatchLeavesFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method uint16
	}{
		{name: "stored", method: zip.Store},
		{name: "deflated", method: zip.Deflate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := readArchive(t, []testutil.ZipEntry{
				{Name: "bad.txt", Content: []byte("corrupted"), Method: tt.method, CRC32: testutil.Ptr[uint32](0xdeadbeef)},
			})
			dest := t.TempDir()

			err := ExtractOne(context.Background(), a, entryByPath(t, a, "bad.txt"), dest)
			require.ErrorIs(t, err, ErrCRCMismatch)

			data, err := os.ReadFile(filepath.Join(dest, "bad.txt"))
			require.NoError(t, err)
			assert.Equal(t, "corrupted", string(data))

			dirEntries, err := os.ReadDir(dest)
			require.NoError(t, err)
			assert.Len(t, dirEntries, 1)
		})
	}
}

func TestExtractRejectsNamesResolvingToDest(t *testing.T) {
	t.Parallel()

	for _, name := range []string{".", "x/.."} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			a := readArchive(t, []testutil.ZipEntry{testutil.File(name, "content")})
			require.Equal(t, 1, a.Len())
			dest := t.TempDir()

			n, err := ExtractMany(context.Background(), a, a.Entries(), []int{0}, dest, false)
			require.ErrorIs(t, err, ErrInvalidPath)
			assert.Zero(t, n)

			info, err := os.Stat(dest)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		})
	}
}

func TestExtractReplacesSymlinkWithoutLinkMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	t.Parallel()

	a := readArchive(t, sampleEntries())
	dest := t.TempDir()
	linked := filepath.Join(t.TempDir(), "linked.txt")
	require.NoError(t, os.WriteFile(linked, []byte("private"), 0o600))
	require.NoError(t, os.Chmod(linked, 0o600))
	require.NoError(t, os.Symlink(linked, filepath.Join(dest, "root.txt")))

	require.NoError(t, ExtractOne(context.Background(), a, entryByPath(t, a, "root.txt"), dest))

	info, err := os.Lstat(filepath.Join(dest, "root.txt"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(linked)
	require.NoError(t, err)
	assert.Equal(t, "private", string(data))
}

func TestExtractBatchStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	a := readArchive(t, []testutil.ZipEntry{
		testutil.File("1.txt", "one"),
		{Name: "2.txt", Content: []byte("two"), CRC32: testutil.Ptr[uint32](1)},
		testutil.File("3.txt", "three"),
	})
	dest := t.TempDir()

	n, err := ExtractMany(context.Background(), a, a.Entries(), []int{0, 1, 2}, dest, false)
	require.ErrorIs(t, err, ErrCRCMismatch)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, filepath.Join(dest, "3.txt"))
}

func TestExtractCreateDirFails(t *testing.T) {
	t.Parallel()

	a := readArchive(t, sampleEntries())
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "a"), []byte("file in the way"), 0o644))

	_, err := ExtractMany(context.Background(), a, a.Entries(), []int{1}, dest, false)
	require.ErrorIs(t, err, ErrCreateDir)

	data, err := os.ReadFile(filepath.Join(dest, "a"))
	require.NoError(t, err)
	assert.Equal(t, "file in the way", string(data))
}

func TestConflicts(t *testing.T) {
	t.Parallel()

	a := readArchive(t, sampleEntries())
	dest := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "a", "y.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "z.txt"), nil, 0o644))

	entries := a.Entries()
	assert.Equal(t, []int{2}, Conflicts(entries, []int{3, 2, 2, 0, 7}, dest, false))
	assert.Equal(t, []int{3}, Conflicts(entries, []int{0, 1, 3}, dest, true))
}
