package zipview

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/meigma/zipview/internal/pathutil"
	"github.com/meigma/zipview/internal/sizing"
	"github.com/meigma/zipview/internal/zipfile"
)

// Read opens the zip file at path and lists its entries.
//
// The file is opened under a shared advisory lock which is released before
// Read returns. Directory records are counted but not listed.
//
// ctx is checked before each entry. If it is cancelled, the entries read so
// far are returned, sorted, with a nil error.
func Read(ctx context.Context, path string, opts ...Option) (*Archive, error) {
	cfg := newConfig(opts)
	log := cfg.log()

	zf, err := zipfile.Open("read", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := zf.Close(); cerr != nil {
			log.Warn("failed to close zip file", "path", path, "error", cerr)
		}
	}()

	a := &Archive{location: path}
	records := zf.Records()
	total := len(records)
	a.entries = make([]Entry, 0, total)

	cancelled := false
	for i, rec := range records {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		cfg.reportProgress(ProgressEvent{
			Stage:      StageReading,
			Message:    "Reading",
			Path:       path,
			Fraction:   sizing.Fraction(uint64(i), uint64(total)), //nolint:gosec // non-negative
			FilesDone:  i,
			FilesTotal: total,
		})

		if zipfile.IsDir(rec) {
			a.dirCount++
			continue
		}
		if rec.Name == "" {
			log.Debug("skipping record without a name", "path", path, "index", i)
			continue
		}
		e := zipfile.Entry(i, rec)
		a.entries = append(a.entries, e)
		a.totalSize = sizing.SaturatingAdd(a.totalSize, e.Size)
		a.totalCompressedSize = sizing.SaturatingAdd(a.totalCompressedSize, e.CompressedSize)
	}

	if cancelled {
		log.Debug("read cancelled", "path", path, "entries", len(a.entries))
	} else {
		cfg.reportProgress(ProgressEvent{
			Stage:      StageSorting,
			Message:    "Sorting",
			Path:       path,
			Fraction:   Indeterminate,
			FilesDone:  total,
			FilesTotal: total,
		})
	}
	slices.SortStableFunc(a.entries, func(x, y Entry) int {
		return pathutil.CompareDirFilename(x.Path, y.Path)
	})

	a.modTime = statModTime(path, log)
	log.Debug("read archive",
		"path", path,
		"entries", len(a.entries),
		"dirs", a.dirCount,
		"size", a.totalSize)
	return a, nil
}

func statModTime(path string, log *slog.Logger) time.Time {
	info, err := os.Lstat(path)
	if err != nil {
		log.Warn("failed to get modification time", "path", path, "error", err)
		return time.Time{}
	}
	return info.ModTime()
}
