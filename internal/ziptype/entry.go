package ziptype

import (
	"time"

	"github.com/meigma/zipview/internal/pathutil"
)

// NoTimestamp marks an entry whose header carries no modification time.
const NoTimestamp int64 = -1

// Entry is one non-directory record of an archive's central directory.
//
// Entries are values; they are created by a read and never modified.
type Entry struct {
	// Index is the position of the entry in central-directory order,
	// counting directories. It is stable for as long as the archive
	// file is unchanged.
	Index int

	// Path is the slash-separated pathname stored in the archive.
	Path string

	// ModTime is the modification time in milliseconds since the Unix
	// epoch, or NoTimestamp.
	ModTime int64

	// Size is the uncompressed size in bytes.
	Size uint64

	// CompressedSize is the stored size in bytes.
	CompressedSize uint64

	// CRC32 is the IEEE CRC-32 of the uncompressed content.
	CRC32 uint32

	// Method is the compression method of the entry.
	Method Compression
}

// Dir returns the directory part of the pathname, or "".
func (e Entry) Dir() string {
	return pathutil.Dir(e.Path)
}

// Base returns the filename part of the pathname.
func (e Entry) Base() string {
	return pathutil.Base(e.Path)
}

// Time returns the modification time. ok is false for NoTimestamp.
func (e Entry) Time() (t time.Time, ok bool) {
	if e.ModTime < 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(e.ModTime), true
}

// Millis converts t to the millisecond representation used by Entry.ModTime.
// The zero time maps to NoTimestamp.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return NoTimestamp
	}
	return t.UnixMilli()
}
