package zipview

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"
)

// ReportFormat selects the line layout of a comparison report.
type ReportFormat uint8

// Report formats.
const (
	// ReportTabSeparated writes "<code>\t<path>" lines.
	ReportTabSeparated ReportFormat = iota

	// ReportColumns writes "<code> : <path>" lines.
	ReportColumns
)

var reportFormatKeys = [...]string{
	ReportTabSeparated: "tsv",
	ReportColumns:      "columns",
}

func (f ReportFormat) String() string {
	if int(f) < len(reportFormatKeys) {
		return reportFormatKeys[f]
	}
	return fmt.Sprintf("ReportFormat(%d)", uint8(f))
}

// ParseReportFormat returns the format with the given key.
func ParseReportFormat(key string) (ReportFormat, error) {
	for i, k := range reportFormatKeys {
		if k == key {
			return ReportFormat(i), nil //nolint:gosec // i < len(reportFormatKeys)
		}
	}
	return 0, fmt.Errorf("zipview: unknown report format %q", key)
}

// MarshalText implements encoding.TextMarshaler.
func (f ReportFormat) MarshalText() ([]byte, error) {
	if int(f) >= len(reportFormatKeys) {
		return nil, fmt.Errorf("zipview: invalid report format %d", uint8(f))
	}
	return []byte(reportFormatKeys[f]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *ReportFormat) UnmarshalText(text []byte) error {
	v, err := ParseReportFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f ReportFormat) separator() string {
	if f == ReportColumns {
		return " : "
	}
	return "\t"
}

// WriteReport writes one line per difference to w.
//
// Each line starts with the five-character code of the difference kinds
// (see DiffKinds.Code) followed by the format's separator and the pathname.
func WriteReport(w io.Writer, diffs []Difference, format ReportFormat) error {
	bw := bufio.NewWriter(w)
	sep := format.separator()
	for _, d := range diffs {
		if _, err := fmt.Fprintf(bw, "%s%s%s\n", d.Kinds.Code(), sep, d.Path); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteReportHeader writes comment lines identifying the two compared
// archives by path and SHA-256 digest.
func WriteReportHeader(w io.Writer, first, second string) error {
	for _, h := range []struct{ label, path string }{
		{"first", first},
		{"second", second},
	} {
		d, err := fileDigest(h.path)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "# %s: %s %s\n", h.label, h.path, d); err != nil {
			return err
		}
	}
	return nil
}

func fileDigest(path string) (digest.Digest, error) {
	f, err := os.Open(path) //nolint:gosec // path is chosen by the caller
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := digest.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return d, nil
}
