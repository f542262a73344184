package zipview

import "github.com/meigma/zipview/internal/ziptype"

// Re-export types from internal/ziptype for public API.
type (
	// Entry is one non-directory record of an archive.
	Entry = ziptype.Entry

	// Compression identifies the zip method used to store an entry.
	Compression = ziptype.Compression

	// FileError records a failed operation together with its kind and cause.
	FileError = ziptype.FileError

	// ProgressEvent represents a progress update during an operation.
	ProgressEvent = ziptype.ProgressEvent

	// ProgressStage identifies the current phase of an operation.
	ProgressStage = ziptype.ProgressStage

	// ProgressFunc receives progress updates during operations.
	ProgressFunc = ziptype.ProgressFunc
)

// Re-export constants.
const (
	NoTimestamp   = ziptype.NoTimestamp
	Indeterminate = ziptype.Indeterminate

	CompressionStore   = ziptype.CompressionStore
	CompressionDeflate = ziptype.CompressionDeflate
	CompressionZstd    = ziptype.CompressionZstd

	StageReading    = ziptype.StageReading
	StageSorting    = ziptype.StageSorting
	StageExtracting = ziptype.StageExtracting
	StageComparing  = ziptype.StageComparing
)

// Property is a named, display-ready attribute of an archive or entry.
type Property = ziptype.Property

// TimestampLayout is the layout used to render timestamps in properties.
const TimestampLayout = ziptype.TimestampLayout

// FormatSize renders a byte count with thousands separators.
func FormatSize(n uint64) string {
	return ziptype.FormatSize(n)
}
