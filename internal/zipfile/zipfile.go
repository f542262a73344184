// Package zipfile opens zip archives for reading under a shared advisory lock.
package zipfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/meigma/zipview/internal/pathutil"
	"github.com/meigma/zipview/internal/ziptype"
)

// MinEOCDLength is the size of an end-of-central-directory record with no comment,
// and therefore the smallest possible zip file.
const MinEOCDLength = 22

var (
	localHeaderSig = []byte{'P', 'K', 0x03, 0x04}
	eocdSig        = []byte{'P', 'K', 0x05, 0x06}
)

// File is an open zip archive.
//
// A File holds an open descriptor and a shared lock until Close is called.
type File struct {
	path string
	f    *os.File
	lock *flock.Flock
	zr   *zip.Reader
}

// CheckRegular verifies that path exists and is a regular file.
// Symbolic links are not followed.
func CheckRegular(op, path string) (fs.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ziptype.NewFileError(op, path, ziptype.ErrNotFound, nil)
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, ziptype.NewFileError(op, path, ziptype.ErrAccessDenied, err)
		}
		return nil, ziptype.NewFileError(op, path, ziptype.ErrOpenFailed, err)
	}
	if !info.Mode().IsRegular() {
		return nil, ziptype.NewFileError(op, path, ziptype.ErrNotAFile, nil)
	}
	return info, nil
}

// Open validates path, takes a shared advisory lock and parses the central directory.
//
// The first four bytes must be a local file header or an end-of-central-directory
// signature; this is a cheap sanity check, deeper corruption surfaces when entries
// are read.
func Open(op, path string) (*File, error) {
	info, err := CheckRegular(op, path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // path is chosen by the caller
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, ziptype.NewFileError(op, path, ziptype.ErrAccessDenied, err)
		}
		return nil, ziptype.NewFileError(op, path, ziptype.ErrOpenFailed, err)
	}

	lock := flock.New(path)
	locked, err := lock.TryRLock()
	if err != nil || !locked {
		_ = f.Close() //nolint:errcheck // best-effort cleanup
		return nil, ziptype.NewFileError(op, path, ziptype.ErrLockFailed, err)
	}

	zf := &File{path: path, f: f, lock: lock}
	if err := zf.init(op, info.Size()); err != nil {
		_ = zf.Close() //nolint:errcheck // best-effort cleanup
		return nil, err
	}
	return zf, nil
}

func (zf *File) init(op string, size int64) error {
	if size < MinEOCDLength {
		return ziptype.NewFileError(op, zf.path, ziptype.ErrNotAZipFile, nil)
	}
	var sig [4]byte
	if _, err := zf.f.ReadAt(sig[:], 0); err != nil {
		return ziptype.NewFileError(op, zf.path, ziptype.ErrOpenFailed, err)
	}
	if !bytes.Equal(sig[:], localHeaderSig) && !bytes.Equal(sig[:], eocdSig) {
		return ziptype.NewFileError(op, zf.path, ziptype.ErrNotAZipFile, nil)
	}

	// ErrInsecurePath comes with a usable reader; extraction guards paths.
	zr, err := zip.NewReader(zf.f, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return ziptype.NewFileError(op, zf.path, ziptype.ErrNotAZipFile, err)
	}
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	zf.zr = zr
	return nil
}

// Path returns the location the archive was opened from.
func (zf *File) Path() string {
	return zf.path
}

// Len returns the number of central-directory records, directories included.
func (zf *File) Len() int {
	return len(zf.zr.File)
}

// Record returns the central-directory record at index.
func (zf *File) Record(index int) (*zip.File, bool) {
	if index < 0 || index >= len(zf.zr.File) {
		return nil, false
	}
	return zf.zr.File[index], true
}

// Records returns all central-directory records in archive order.
func (zf *File) Records() []*zip.File {
	return zf.zr.File
}

// Close releases the lock and the descriptor.
func (zf *File) Close() error {
	var errs []error
	if zf.lock != nil {
		if err := zf.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("unlock: %w", err))
		}
		zf.lock = nil
	}
	if zf.f != nil {
		if err := zf.f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}
		zf.f = nil
	}
	return errors.Join(errs...)
}

// IsDir reports whether a record denotes a directory.
func IsDir(rec *zip.File) bool {
	return pathutil.IsDir(rec.Name) || rec.Mode().IsDir()
}

// ModTime returns the record's modification time, or the zero time when the
// header carries none.
func ModTime(rec *zip.File) time.Time {
	if rec.Modified.IsZero() {
		return time.Time{}
	}
	return rec.Modified
}

// Entry converts a non-directory record to an Entry at index.
func Entry(index int, rec *zip.File) ziptype.Entry {
	return ziptype.Entry{
		Index:          index,
		Path:           rec.Name,
		ModTime:        ziptype.Millis(ModTime(rec)),
		Size:           rec.UncompressedSize64,
		CompressedSize: rec.CompressedSize64,
		CRC32:          rec.CRC32,
		Method:         ziptype.Compression(rec.Method),
	}
}

// OpenEntry opens the decompressed content of a record.
//
// The content is decompressed from the raw stream so the reader never
// verifies the CRC itself; callers compare the checksum of what they wrote.
// Methods other than Store, Deflate and Zstandard fail with zip.ErrAlgorithm.
func OpenEntry(rec *zip.File) (io.ReadCloser, error) {
	raw, err := rec.OpenRaw()
	if err != nil {
		return nil, err
	}
	switch rec.Method {
	case zip.Store:
		return io.NopCloser(raw), nil
	case zip.Deflate:
		return flate.NewReader(raw), nil
	case zstd.ZipMethodWinZip:
		return zstd.ZipDecompressor()(raw), nil
	default:
		return nil, zip.ErrAlgorithm
	}
}
