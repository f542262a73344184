package ziptype

import (
	"errors"
	"strings"
)

// Sentinel errors for archive operations.
var (
	// ErrNotFound is returned when a file does not exist.
	ErrNotFound = errors.New("zipview: file does not exist")

	// ErrNotAFile is returned when a location does not denote a regular file.
	ErrNotAFile = errors.New("zipview: not a regular file")

	// ErrOpenFailed is returned when a file cannot be opened.
	ErrOpenFailed = errors.New("zipview: failed to open file")

	// ErrAccessDenied is returned when access to a file was not permitted.
	ErrAccessDenied = errors.New("zipview: access denied")

	// ErrLockFailed is returned when a shared advisory lock cannot be acquired.
	ErrLockFailed = errors.New("zipview: failed to lock file")

	// ErrNotAZipFile is returned when a file is not recognised as a zip archive.
	ErrNotAZipFile = errors.New("zipview: not a zip file")

	// ErrCannotOpenArchive is returned when the second archive of a comparison
	// cannot be opened.
	ErrCannotOpenArchive = errors.New("zipview: cannot open archive")

	// ErrArchiveChanged is returned when an archive no longer matches the
	// listing it was read into.
	ErrArchiveChanged = errors.New("zipview: zip file has changed since it was read")

	// ErrReadEntry is returned when an entry's content cannot be read.
	ErrReadEntry = errors.New("zipview: failed to read zip entry")

	// ErrPrematureEOF is returned when an entry stream ends before its declared size.
	ErrPrematureEOF = errors.New("zipview: premature end of file")

	// ErrCRCMismatch is returned when extracted content fails CRC-32 verification.
	ErrCRCMismatch = errors.New("zipview: incorrect CRC")

	// ErrCreateDir is returned when an output directory cannot be created.
	ErrCreateDir = errors.New("zipview: failed to create directory")

	// ErrCreateTemp is returned when a temporary output file cannot be created.
	ErrCreateTemp = errors.New("zipview: failed to create temporary file")

	// ErrWriteFile is returned when writing an output file fails.
	ErrWriteFile = errors.New("zipview: failed to write file")

	// ErrDeleteExisting is returned when an existing output file cannot be removed.
	ErrDeleteExisting = errors.New("zipview: failed to delete existing file")

	// ErrRename is returned when a temporary file cannot be renamed into place.
	ErrRename = errors.New("zipview: failed to rename temporary file")

	// ErrInvalidPath is returned when an entry path would escape the output directory.
	ErrInvalidPath = errors.New("zipview: invalid entry path")

	// ErrInvalidSelection is returned when a selection index is out of range.
	ErrInvalidSelection = errors.New("zipview: invalid selection")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("zipview: size overflow")
)

// FileError records a failed operation on a file together with the kind
// of failure and its underlying cause.
//
// errors.Is matches both Kind and Err.
type FileError struct {
	// Op is the operation that failed ("read", "extract", "compare", ...).
	Op string

	// Path is the file the operation was acting on.
	Path string

	// Entry is the archive pathname involved, if any.
	Entry string

	// TempPath is set when a temporary file was left on disk and holds
	// data the caller may want to recover.
	TempPath string

	// Kind is one of the sentinel errors in this package.
	Kind error

	// Err is the underlying cause, if any.
	Err error
}

func (e *FileError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteByte(' ')
	b.WriteString(e.Path)
	if e.Entry != "" {
		b.WriteString(" (entry ")
		b.WriteString(e.Entry)
		b.WriteByte(')')
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.TempPath != "" {
		b.WriteString("; temporary file: ")
		b.WriteString(e.TempPath)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewFileError builds a FileError for op on path.
func NewFileError(op, path string, kind, cause error) *FileError {
	return &FileError{Op: op, Path: path, Kind: kind, Err: cause}
}
