package batch

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meigma/zipview/internal/ziptype"
)

// DefaultFileMode is used for new files when no existing file supplies a mode.
const DefaultFileMode fs.FileMode = 0o644

const tempInfix = ".zipview-"

// FileSink creates output files through temporary siblings.
//
// Content is written to a temporary file in the same directory as the
// final path and renamed into place on Commit, so a partially written
// file is never visible at the final path.
type FileSink struct {
	dirMode fs.FileMode
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithDirMode sets the mode used for created parent directories.
func WithDirMode(mode fs.FileMode) FileSinkOption {
	return func(s *FileSink) {
		s.dirMode = mode
	}
}

// NewFileSink creates a FileSink.
func NewFileSink(opts ...FileSinkOption) *FileSink {
	s := &FileSink{dirMode: 0o755}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Writer creates the parent directories of destPath and a temporary sibling.
//
// When perm is non-zero the temporary file takes those permission bits,
// otherwise DefaultFileMode.
func (s *FileSink) Writer(destPath string, perm fs.FileMode) (*Committer, error) {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return nil, ziptype.NewFileError("extract", dir, ziptype.ErrCreateDir, err)
	}

	mode := DefaultFileMode
	if perm != 0 {
		mode = perm
	}
	tempFile, err := createTempFile(dir, "."+filepath.Base(destPath)+tempInfix, mode)
	if err != nil {
		return nil, ziptype.NewFileError("extract", destPath, ziptype.ErrCreateTemp, err)
	}
	if perm != 0 {
		// The umask may have narrowed the mode given to open.
		if err := tempFile.Chmod(perm); err != nil {
			_ = tempFile.Close()           //nolint:errcheck // best-effort cleanup
			_ = os.Remove(tempFile.Name()) //nolint:errcheck // best-effort cleanup
			return nil, ziptype.NewFileError("extract", tempFile.Name(), ziptype.ErrCreateTemp, err)
		}
	}

	return &Committer{destPath: destPath, tempFile: tempFile}, nil
}

// Committer writes to a temporary file and renames it into place on Commit.
type Committer struct {
	destPath string
	tempFile *os.File
	closed   bool
}

// Write implements io.Writer.
func (c *Committer) Write(p []byte) (int, error) {
	return c.tempFile.Write(p)
}

// TempPath returns the path of the temporary file.
func (c *Committer) TempPath() string {
	return c.tempFile.Name()
}

// DestPath returns the final path.
func (c *Committer) DestPath() string {
	return c.destPath
}

// Commit closes the temporary file, removes any existing file at the final
// path and renames the temporary file into place.
//
// If the removal or the rename fails the temporary file is left on disk
// and its path is recorded in the returned error's TempPath so the data
// can be recovered by hand.
func (c *Committer) Commit() error {
	tempPath := c.tempFile.Name()

	c.closed = true
	if err := c.tempFile.Close(); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return ziptype.NewFileError("extract", tempPath, ziptype.ErrWriteFile, err)
	}

	if err := os.Remove(c.destPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fe := ziptype.NewFileError("extract", c.destPath, ziptype.ErrDeleteExisting, err)
		fe.TempPath = tempPath
		return fe
	}

	if err := os.Rename(tempPath, c.destPath); err != nil {
		fe := ziptype.NewFileError("extract", c.destPath, ziptype.ErrRename, err)
		fe.TempPath = tempPath
		return fe
	}
	return nil
}

// Discard closes and removes the temporary file. The final path is not touched.
func (c *Committer) Discard() error {
	if !c.closed {
		_ = c.tempFile.Close() //nolint:errcheck // we're cleaning up
		c.closed = true
	}
	if err := os.Remove(c.tempFile.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func createTempFile(dir, prefix string, mode fs.FileMode) (*os.File, error) {
	const attempts = 10
	for range attempts {
		name, err := randomSuffix()
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, prefix+name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode) //nolint:gosec // path is derived from the destination
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("create temp file in %s: exhausted retries", dir)
}

func randomSuffix() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
