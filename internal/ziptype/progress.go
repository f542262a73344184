package ziptype

// Indeterminate is the Fraction reported when progress cannot be measured.
const Indeterminate = -1.0

// ProgressEvent represents a progress update during read, extract or compare operations.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Message is a human-readable status line.
	Message string

	// Path is the file currently being processed, if applicable.
	Path string

	// Fraction is the completed share of the current stage in [0, 1],
	// or Indeterminate.
	Fraction float64

	// BytesDone is the number of bytes completed in the current operation.
	BytesDone uint64

	// BytesTotal is the total bytes for the current operation.
	// Zero indicates the total is unknown.
	BytesTotal uint64

	// FilesDone is the number of files completed.
	FilesDone int

	// FilesTotal is the total number of files.
	// Zero indicates the total is unknown.
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages for read, extract and compare operations.
const (
	// StageReading indicates the central directory is being enumerated.
	StageReading ProgressStage = iota

	// StageSorting indicates the entry list is being sorted.
	StageSorting

	// StageExtracting indicates entries are being written to disk.
	StageExtracting

	// StageComparing indicates two archives are being compared.
	StageComparing
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageReading:
		return "reading"
	case StageSorting:
		return "sorting"
	case StageExtracting:
		return "extracting"
	case StageComparing:
		return "comparing"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
// Operations call it from the goroutine that runs them.
type ProgressFunc func(ProgressEvent)
