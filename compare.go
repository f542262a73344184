package zipview

import (
	"slices"
	"strings"

	"github.com/meigma/zipview/filter"
	"github.com/meigma/zipview/internal/zipfile"
	"github.com/meigma/zipview/internal/ziptype"
)

// pair holds the entries of both archives for one pathname.
type pair struct {
	path   string
	first  *Entry
	second *Entry
}

// Compare compares the entries of a with those of the zip file at path.
//
// Only pathnames accepted by filters are considered. Each pathname present
// in one archive only is reported as OnlyInFirst or OnlyInSecond; for a
// pathname present in both, each field in fields that differs adds its
// DiffKind. Pathnames with no differences are omitted. The result is
// sorted by pathname in byte order.
//
// Compare runs to completion; it does not take a context.
func Compare(a *Archive, path string, filters []filter.Filter, fields FieldSet, opts ...Option) ([]Difference, error) {
	cfg := newConfig(opts)
	log := cfg.log()

	if _, err := zipfile.CheckRegular("compare", path); err != nil {
		return nil, err
	}

	chain, err := filter.Compile(filters)
	if err != nil {
		return nil, err
	}

	cfg.reportProgress(ProgressEvent{
		Stage:    StageComparing,
		Message:  "Comparing",
		Path:     path,
		Fraction: Indeterminate,
	})

	pairs := make([]*pair, 0, len(a.entries))
	byPath := make(map[string]*pair, len(a.entries))
	for i := range a.entries {
		e := &a.entries[i]
		if _, dup := byPath[e.Path]; dup || !chain.Accept(e.Path) {
			continue
		}
		p := &pair{path: e.Path, first: e}
		pairs = append(pairs, p)
		byPath[e.Path] = p
	}

	zf, err := zipfile.Open("compare", path)
	if err != nil {
		return nil, ziptype.NewFileError("compare", path, ErrCannotOpenArchive, err)
	}
	for i, rec := range zf.Records() {
		if zipfile.IsDir(rec) || !chain.Accept(rec.Name) {
			continue
		}
		e := zipfile.Entry(i, rec)
		// Later records of the second archive replace earlier ones.
		if p, ok := byPath[e.Path]; ok {
			p.second = &e
			continue
		}
		p := &pair{path: e.Path, second: &e}
		pairs = append(pairs, p)
		byPath[e.Path] = p
	}
	if err := zf.Close(); err != nil {
		log.Warn("failed to close zip file", "path", path, "error", err)
	}

	slices.SortStableFunc(pairs, func(x, y *pair) int {
		return strings.Compare(x.path, y.path)
	})

	var diffs []Difference
	selected := fields.Fields()
	for _, p := range pairs {
		var kinds DiffKinds
		switch {
		case p.second == nil:
			kinds = kinds.With(OnlyInFirst)
		case p.first == nil:
			kinds = kinds.With(OnlyInSecond)
		default:
			for _, f := range selected {
				if f.Differs(*p.first, *p.second) {
					kinds = kinds.With(f.DiffKind())
				}
			}
		}
		if !kinds.Empty() {
			diffs = append(diffs, Difference{Kinds: kinds, Path: p.path})
		}
	}

	log.Debug("compared archives",
		"first", a.location,
		"second", path,
		"pathnames", len(pairs),
		"differences", len(diffs))
	return diffs, nil
}
