package zipview

import (
	"log/slog"

	"github.com/meigma/zipview/internal/batch"
)

// Option configures Read, ExtractOne, ExtractMany and Compare.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	progress   ProgressFunc
	bufferSize int
}

// WithLogger sets the logger for non-fatal conditions and debug output.
// By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithProgress sets a callback that receives progress updates.
func WithProgress(fn ProgressFunc) Option {
	return func(c *config) {
		c.progress = fn
	}
}

// WithBufferSize sets the block size used to copy entry content (default 64KB).
func WithBufferSize(n int) Option {
	return func(c *config) {
		c.bufferSize = n
	}
}

func newConfig(opts []Option) *config {
	c := &config{bufferSize: batch.DefaultBufferSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// log returns the logger, falling back to a discard logger if nil.
func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// reportProgress sends a progress event if a callback is configured.
func (c *config) reportProgress(ev ProgressEvent) {
	if c.progress == nil {
		return
	}
	c.progress(ev)
}
