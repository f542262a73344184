package cmd

import (
	"strings"

	"github.com/meigma/zipview/filter"
)

// filterFlag appends filters of one kind to a list shared with other
// filterFlags, so the command-line order is kept.
type filterFlag struct {
	kind filter.Kind
	list *[]filter.Filter
}

func (f filterFlag) String() string {
	var parts []string
	for _, flt := range *f.list {
		if flt.Kind == f.kind {
			parts = append(parts, flt.String())
		}
	}
	return strings.Join(parts, ",")
}

func (f filterFlag) Set(s string) error {
	*f.list = append(*f.list, filter.Parse(f.kind, s))
	return nil
}

func (f filterFlag) Type() string {
	return "pattern"
}

const filterUsage = `; pathname glob, or prefixed with g: (filename glob), G: (pathname glob),
r: (filename regexp) or R: (pathname regexp); the last matching filter wins`
