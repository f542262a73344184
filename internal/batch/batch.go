// Package batch streams archive entries into output files.
package batch

import (
	"errors"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zip"

	"github.com/meigma/zipview/internal/ziptype"
)

// DefaultBufferSize is the block size used to copy entry content.
const DefaultBufferSize = 64 << 10 // 64KB

// Processor copies entry content in fixed-size blocks while computing CRC-32.
//
// A Processor reuses one buffer and is not safe for concurrent use.
type Processor struct {
	buf []byte
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithBufferSize sets the copy block size. Values <= 0 use DefaultBufferSize.
func WithBufferSize(n int) ProcessorOption {
	return func(p *Processor) {
		if n <= 0 {
			n = DefaultBufferSize
		}
		p.buf = make([]byte, n)
	}
}

// NewProcessor creates a Processor.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{}
	for _, opt := range opts {
		opt(p)
	}
	if p.buf == nil {
		p.buf = make([]byte, DefaultBufferSize)
	}
	return p
}

// Copy reads exactly size bytes from r into w and returns their CRC-32.
//
// A stream that ends before size bytes is reported as ErrPrematureEOF.
// The returned errors are sentinel kinds wrapped with their cause; callers
// attach path context.
func (p *Processor) Copy(w io.Writer, r io.Reader, size uint64) (uint32, error) {
	crc := crc32.NewIEEE()
	var done uint64
	for done < size {
		n := len(p.buf)
		if rem := size - done; rem < uint64(n) {
			n = int(rem) //nolint:gosec // rem < len(p.buf)
		}
		read, err := r.Read(p.buf[:n])
		if read > 0 {
			if _, werr := w.Write(p.buf[:read]); werr != nil {
				return 0, &kindError{kind: ziptype.ErrWriteFile, err: werr}
			}
			_, _ = crc.Write(p.buf[:read]) //nolint:errcheck // hash writes never fail
			done += uint64(read)          //nolint:gosec // read is non-negative
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if done < size {
					return 0, &kindError{kind: ziptype.ErrPrematureEOF}
				}
				break
			}
			return 0, classifyReadError(err)
		}
	}
	return crc.Sum32(), nil
}

func classifyReadError(err error) error {
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &kindError{kind: ziptype.ErrPrematureEOF, err: err}
	case errors.Is(err, zip.ErrChecksum):
		return &kindError{kind: ziptype.ErrCRCMismatch, err: err}
	default:
		return &kindError{kind: ziptype.ErrReadEntry, err: err}
	}
}

// kindError pairs a sentinel kind with its cause.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string {
	if e.err == nil {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.err.Error()
}

func (e *kindError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// Kind returns the sentinel kind of an error produced by Copy, or nil.
func Kind(err error) error {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return nil
}

// Cause returns the underlying cause of an error produced by Copy.
func Cause(err error) error {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.err
	}
	return err
}
