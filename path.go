package zipview

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/meigma/zipview/internal/pathutil"
	"github.com/meigma/zipview/internal/ziptype"
)

// OutputPath returns the file that e is extracted to under dir.
//
// When flatten is set, or the pathname has no directory part, the result
// is dir joined with the filename; otherwise the whole pathname is
// resolved against dir.
func OutputPath(e Entry, dir string, flatten bool) string {
	if flatten || !pathutil.HasDir(e.Path) {
		return filepath.Join(dir, e.Base())
	}
	return filepath.Join(dir, filepath.FromSlash(e.Path))
}

// checkedOutputPath is OutputPath restricted to files strictly inside dir.
// Names that resolve to dir itself, such as "." or "x/..", are rejected.
func checkedOutputPath(e Entry, dir string, flatten bool) (string, error) {
	rel := e.Base()
	if !flatten && pathutil.HasDir(e.Path) {
		rel = filepath.FromSlash(e.Path)
	}
	if !filepath.IsLocal(rel) || filepath.Clean(rel) == "." || !validBase(e.Base()) {
		fe := ziptype.NewFileError("extract", dir, ErrInvalidPath, nil)
		fe.Entry = e.Path
		return "", fe
	}
	return filepath.Join(dir, rel), nil
}

func validBase(name string) bool {
	return name != "" && name != "." && name != ".."
}

// NormalizePathname replaces host separators in p with '/'.
func NormalizePathname(p string) string {
	if os.PathSeparator == '/' {
		return p
	}
	return strings.ReplaceAll(p, string(os.PathSeparator), "/")
}

// DenormalizePathname replaces '/' in p with the host separator.
func DenormalizePathname(p string) string {
	if os.PathSeparator == '/' {
		return p
	}
	return strings.ReplaceAll(p, "/", string(os.PathSeparator))
}
