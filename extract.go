package zipview

import (
	"context"
	"errors"
	"os"
	"slices"

	"github.com/meigma/zipview/internal/batch"
	"github.com/meigma/zipview/internal/platform"
	"github.com/meigma/zipview/internal/sizing"
	"github.com/meigma/zipview/internal/zipfile"
	"github.com/meigma/zipview/internal/ziptype"
)

// ExtractOne extracts a single entry of a directly into destDir, ignoring
// the entry's directory part.
//
// An existing file at the output path is replaced. If ctx is already
// cancelled nothing is extracted and ctx.Err() is returned.
func ExtractOne(ctx context.Context, a *Archive, e Entry, destDir string, opts ...Option) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := newConfig(opts)

	target, err := checkedOutputPath(e, destDir, true)
	if err != nil {
		return err
	}

	x, err := newExtractor(a, cfg)
	if err != nil {
		return err
	}
	defer x.close()

	cfg.reportProgress(ProgressEvent{
		Stage:      StageExtracting,
		Message:    "Extracting file to",
		Path:       target,
		Fraction:   Indeterminate,
		BytesTotal: e.Size,
		FilesTotal: 1,
	})
	if err := x.extract(e, target); err != nil {
		return err
	}
	cfg.reportProgress(ProgressEvent{
		Stage:      StageExtracting,
		Message:    "Extracting file to",
		Path:       target,
		Fraction:   1,
		BytesDone:  e.Size,
		BytesTotal: e.Size,
		FilesDone:  1,
		FilesTotal: 1,
	})
	return nil
}

// ExtractMany extracts the entries at the given positions of entries into
// destDir and returns the number of files extracted.
//
// entries is usually a filtered or re-sorted view of a.Entries(); selection
// holds positions in it. Duplicate positions are ignored and entries are
// extracted in ascending position order. A position out of range fails
// with ErrInvalidSelection before anything is written.
//
// When flatten is set every file is written directly into destDir,
// otherwise the entry's directory part is recreated below destDir.
//
// ctx is checked before each entry; on cancellation the count so far is
// returned with a nil error. The first failing entry stops the batch and
// its error is returned with the count of files extracted before it.
func ExtractMany(ctx context.Context, a *Archive, entries []Entry, selection []int, destDir string, flatten bool, opts ...Option) (int, error) {
	cfg := newConfig(opts)
	log := cfg.log()

	sel, err := normalizeSelection(selection, len(entries))
	if err != nil {
		return 0, err
	}
	if len(sel) == 0 {
		return 0, nil
	}

	var total uint64
	for _, i := range sel {
		total = sizing.SaturatingAdd(total, entries[i].Size)
	}

	x, err := newExtractor(a, cfg)
	if err != nil {
		return 0, err
	}
	defer x.close()

	var done uint64
	count := 0
	for _, i := range sel {
		if ctx.Err() != nil {
			log.Debug("extraction cancelled", "archive", a.location, "extracted", count)
			return count, nil
		}

		e := entries[i]
		target, err := checkedOutputPath(e, destDir, flatten)
		if err != nil {
			return count, err
		}
		cfg.reportProgress(ProgressEvent{
			Stage:      StageExtracting,
			Message:    "Extracting files",
			Path:       target,
			Fraction:   sizing.Fraction(done, total),
			BytesDone:  done,
			BytesTotal: total,
			FilesDone:  count,
			FilesTotal: len(sel),
		})
		if err := x.extract(e, target); err != nil {
			return count, err
		}

		count++
		done = sizing.SaturatingAdd(done, e.Size)
		cfg.reportProgress(ProgressEvent{
			Stage:      StageExtracting,
			Message:    "Extracting files",
			Path:       target,
			Fraction:   sizing.Fraction(done, total),
			BytesDone:  done,
			BytesTotal: total,
			FilesDone:  count,
			FilesTotal: len(sel),
		})
	}
	return count, nil
}

// Conflicts returns the positions in selection whose output path under
// destDir already exists. Positions out of range are skipped.
func Conflicts(entries []Entry, selection []int, destDir string, flatten bool) []int {
	sel := slices.Clone(selection)
	slices.Sort(sel)
	sel = slices.Compact(sel)

	var out []int
	for _, i := range sel {
		if i < 0 || i >= len(entries) {
			continue
		}
		if _, err := os.Lstat(OutputPath(entries[i], destDir, flatten)); err == nil {
			out = append(out, i)
		}
	}
	return out
}

// normalizeSelection returns the sorted, de-duplicated selection.
func normalizeSelection(selection []int, n int) ([]int, error) {
	sel := slices.Clone(selection)
	slices.Sort(sel)
	sel = slices.Compact(sel)
	for _, i := range sel {
		if i < 0 || i >= n {
			return nil, ErrInvalidSelection
		}
	}
	return sel, nil
}

// extractor writes entries of one open archive.
type extractor struct {
	cfg  *config
	a    *Archive
	zf   *zipfile.File
	proc *batch.Processor
	sink *batch.FileSink
}

func newExtractor(a *Archive, cfg *config) (*extractor, error) {
	zf, err := zipfile.Open("extract", a.location)
	if err != nil {
		return nil, err
	}
	return &extractor{
		cfg:  cfg,
		a:    a,
		zf:   zf,
		proc: batch.NewProcessor(batch.WithBufferSize(cfg.bufferSize)),
		sink: batch.NewFileSink(),
	}, nil
}

func (x *extractor) close() {
	if err := x.zf.Close(); err != nil {
		x.cfg.log().Warn("failed to close zip file", "path", x.a.location, "error", err)
	}
}

// extract writes e to target.
//
// Content goes to a temporary sibling that replaces target only once it
// is complete. The CRC is checked after the rename; a mismatching file is
// left in place and reported.
func (x *extractor) extract(e Entry, target string) error {
	log := x.cfg.log()

	rec, ok := x.zf.Record(e.Index)
	if !ok || rec.CRC32 != e.CRC32 || zipfile.IsDir(rec) {
		return x.entryError(e, ErrArchiveChanged, nil)
	}

	perm, _, err := platform.FilePerm(target)
	if err != nil {
		log.Warn("failed to get file permissions", "path", target, "error", err)
	}

	w, err := x.sink.Writer(target, perm)
	if err != nil {
		return withEntry(err, e)
	}

	rc, err := zipfile.OpenEntry(rec)
	if err != nil {
		_ = w.Discard() //nolint:errcheck // best-effort cleanup
		return x.entryError(e, ErrReadEntry, err)
	}
	crc, err := x.proc.Copy(w, rc, e.Size)
	if cerr := rc.Close(); cerr != nil {
		log.Debug("failed to close entry reader", "entry", e.Path, "error", cerr)
	}
	if err != nil {
		_ = w.Discard() //nolint:errcheck // best-effort cleanup
		fe := ziptype.NewFileError("extract", target, batch.Kind(err), batch.Cause(err))
		fe.Entry = e.Path
		return fe
	}

	if err := w.Commit(); err != nil {
		return withEntry(err, e)
	}

	if t, ok := e.Time(); ok {
		if err := os.Chtimes(target, t, t); err != nil {
			log.Warn("failed to set file timestamp", "path", target, "error", err)
		}
	}

	if crc != e.CRC32 {
		fe := ziptype.NewFileError("extract", target, ErrCRCMismatch, nil)
		fe.Entry = e.Path
		return fe
	}
	log.Debug("extracted entry", "entry", e.Path, "path", target, "size", e.Size)
	return nil
}

func (x *extractor) entryError(e Entry, kind, cause error) error {
	fe := ziptype.NewFileError("extract", x.a.location, kind, cause)
	fe.Entry = e.Path
	return fe
}

// withEntry attaches the entry pathname to a FileError.
func withEntry(err error, e Entry) error {
	var fe *FileError
	if errors.As(err, &fe) && fe.Entry == "" {
		fe.Entry = e.Path
	}
	return err
}
