package ziptype

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFileError(t *testing.T) {
	t.Parallel()

	cause := fs.ErrPermission
	err := &FileError{
		Op:       "extract",
		Path:     "/out/a.txt",
		Entry:    "dir/a.txt",
		TempPath: "/out/.a.txt.zipview-01",
		Kind:     ErrRename,
		Err:      cause,
	}

	assert.ErrorIs(t, err, ErrRename)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.NotErrorIs(t, err, ErrDeleteExisting)
	assert.Equal(t,
		"extract /out/a.txt (entry dir/a.txt): zipview: failed to rename temporary file; "+
			"temporary file: /out/.a.txt.zipview-01: permission denied",
		err.Error())

	plain := NewFileError("read", "a.zip", ErrNotFound, nil)
	assert.Equal(t, "read a.zip: zipview: file does not exist", plain.Error())
	assert.Equal(t, []error{ErrNotFound}, plain.Unwrap())

	var fe *FileError
	assert.True(t, errors.As(error(plain), &fe))
}

func TestEntryHelpers(t *testing.T) {
	t.Parallel()

	e := Entry{Path: "a/b/c.txt", ModTime: 1_700_000_000_123}
	assert.Equal(t, "a/b", e.Dir())
	assert.Equal(t, "c.txt", e.Base())

	ts, ok := e.Time()
	assert.True(t, ok)
	assert.Equal(t, int64(1_700_000_000_123), ts.UnixMilli())

	e.ModTime = NoTimestamp
	_, ok = e.Time()
	assert.False(t, ok)

	assert.Equal(t, NoTimestamp, Millis(time.Time{}))
	assert.Equal(t, int64(1000), Millis(time.UnixMilli(1000)))
}

func TestStringers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "extracting", StageExtracting.String())
	assert.Equal(t, "unknown", ProgressStage(99).String())
	assert.Equal(t, "zstd", CompressionZstd.String())
	assert.Equal(t, "1,234", FormatSize(1234))
}
