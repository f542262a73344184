// Package pathutil provides path manipulation for slash-separated archive paths.
package pathutil

import "strings"

// Separator is the archive-native path separator.
const Separator = '/'

// Base returns the last element of a slash-separated path.
// If path is empty or ".", it returns ".".
func Base(path string) string {
	if path == "" || path == "." {
		return "."
	}
	// Remove trailing slash if present
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndexByte(path, Separator); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Dir returns everything before the last separator of path, or "" when
// the path has no directory component.
func Dir(path string) string {
	if i := strings.LastIndexByte(path, Separator); i >= 0 {
		return path[:i]
	}
	return ""
}

// HasDir reports whether path contains a directory component.
func HasDir(path string) bool {
	return strings.IndexByte(path, Separator) >= 0
}

// IsDir reports whether an archive name denotes a directory.
func IsDir(name string) bool {
	return strings.HasSuffix(name, "/")
}

// Split returns the directory elements and the filename of path.
// Empty elements produced by consecutive separators are kept so that
// the ordering stays total over arbitrary names.
func Split(path string) (dirs []string, filename string) {
	parts := strings.Split(path, "/")
	return parts[:len(parts)-1], parts[len(parts)-1]
}

// CompareDirFilename orders two pathnames directory-first.
//
// Directory elements are compared pairwise, byte-wise and case-sensitively;
// the first difference decides. When one directory list is a prefix of the
// other, the shallower path sorts first. Filenames break remaining ties.
// The result is negative, zero or positive in the manner of strings.Compare.
func CompareDirFilename(a, b string) int {
	dirsA, fileA := Split(a)
	dirsB, fileB := Split(b)

	n := min(len(dirsA), len(dirsB))
	for i := range n {
		if c := strings.Compare(dirsA[i], dirsB[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(dirsA) < len(dirsB):
		return -1
	case len(dirsA) > len(dirsB):
		return 1
	}
	return strings.Compare(fileA, fileB)
}
