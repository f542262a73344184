package zipview

import "github.com/meigma/zipview/internal/ziptype"

// Validation errors. These are reported before anything is written.
var (
	// ErrNotFound is returned when a file does not exist.
	ErrNotFound = ziptype.ErrNotFound

	// ErrNotAFile is returned when a location is not a regular file.
	ErrNotAFile = ziptype.ErrNotAFile

	// ErrNotAZipFile is returned when a file is not recognised as a zip archive.
	ErrNotAZipFile = ziptype.ErrNotAZipFile

	// ErrInvalidPath is returned when an entry path would escape the output directory.
	ErrInvalidPath = ziptype.ErrInvalidPath

	// ErrInvalidSelection is returned when a selection index is out of range.
	ErrInvalidSelection = ziptype.ErrInvalidSelection
)

// Access errors.
var (
	ErrOpenFailed        = ziptype.ErrOpenFailed
	ErrAccessDenied      = ziptype.ErrAccessDenied
	ErrLockFailed        = ziptype.ErrLockFailed
	ErrCannotOpenArchive = ziptype.ErrCannotOpenArchive
)

// Integrity errors. ErrCRCMismatch may be returned after the output file
// has been renamed into place; the file is not rolled back.
var (
	ErrArchiveChanged = ziptype.ErrArchiveChanged
	ErrReadEntry      = ziptype.ErrReadEntry
	ErrPrematureEOF   = ziptype.ErrPrematureEOF
	ErrCRCMismatch    = ziptype.ErrCRCMismatch
	ErrSizeOverflow   = ziptype.ErrSizeOverflow
)

// Filesystem errors. Each is fatal for the entry being extracted.
var (
	ErrCreateDir      = ziptype.ErrCreateDir
	ErrCreateTemp     = ziptype.ErrCreateTemp
	ErrWriteFile      = ziptype.ErrWriteFile
	ErrDeleteExisting = ziptype.ErrDeleteExisting
	ErrRename         = ziptype.ErrRename
)
