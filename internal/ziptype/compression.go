package ziptype

// Compression identifies the zip method used to store an entry.
type Compression uint16

// Methods recognised by the reader. Other values are reported as-is.
const (
	CompressionStore   Compression = 0
	CompressionDeflate Compression = 8
	CompressionZstd    Compression = 93
)

func (c Compression) String() string {
	switch c {
	case CompressionStore:
		return "store"
	case CompressionDeflate:
		return "deflate"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}
