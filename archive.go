package zipview

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/meigma/zipview/internal/pathutil"
	"github.com/meigma/zipview/internal/ziptype"
)

// Archive is the listing of a zip file produced by Read.
//
// Entries are sorted directory-first and are never modified. The
// recorded modification time can be refreshed with SetModTime after the
// caller has decided how to react to Changed.
type Archive struct {
	location            string
	modTime             time.Time
	dirCount            int
	entries             []Entry
	totalSize           uint64
	totalCompressedSize uint64
}

// Location returns the path the archive was read from.
func (a *Archive) Location() string {
	return a.location
}

// ModTime returns the modification time of the file when it was read, or
// the zero time if it could not be determined.
func (a *Archive) ModTime() time.Time {
	return a.modTime
}

// SetModTime records t as the known modification time of the file.
func (a *Archive) SetModTime(t time.Time) {
	a.modTime = t
}

// DirCount returns the number of directory records in the archive.
func (a *Archive) DirCount() int {
	return a.dirCount
}

// Len returns the number of non-directory entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Entry returns the entry at position i of the sorted listing.
func (a *Archive) Entry(i int) (Entry, bool) {
	if i < 0 || i >= len(a.entries) {
		return Entry{}, false
	}
	return a.entries[i], true
}

// Entries returns a copy of the sorted listing.
func (a *Archive) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// TotalSize returns the sum of the uncompressed sizes of all entries.
func (a *Archive) TotalSize() uint64 {
	return a.totalSize
}

// TotalCompressedSize returns the sum of the compressed sizes of all entries.
func (a *Archive) TotalCompressedSize() uint64 {
	return a.totalCompressedSize
}

// EntryIndices maps positions in the sorted listing to central-directory
// indices. Positions out of range are skipped.
func (a *Archive) EntryIndices(rows []int) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		if r < 0 || r >= len(a.entries) {
			continue
		}
		out = append(out, a.entries[r].Index)
	}
	return out
}

// Changed reports whether the file's modification time differs from the
// one recorded in the listing. A file that can no longer be inspected is
// reported as changed together with the error.
func (a *Archive) Changed() (bool, error) {
	info, err := os.Lstat(a.location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, ziptype.NewFileError("stat", a.location, ErrNotFound, nil)
		}
		return true, ziptype.NewFileError("stat", a.location, ErrOpenFailed, err)
	}
	return !info.ModTime().Equal(a.modTime), nil
}

// Properties returns display properties of the archive.
func (a *Archive) Properties() []Property {
	return []Property{
		{Name: "Filename", Value: pathutil.Base(NormalizePathname(a.location))},
		{Name: "Number of directories", Value: humanize.Comma(int64(a.dirCount))},
		{Name: "Number of files", Value: humanize.Comma(int64(len(a.entries)))},
		{Name: "Total size", Value: ziptype.FormatSize(a.totalSize)},
		{Name: "Total compressed size", Value: ziptype.FormatSize(a.totalCompressedSize)},
	}
}
