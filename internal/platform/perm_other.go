//go:build !unix

package platform

import "io/fs"

// FilePerm always reports no permissions on platforms without POSIX modes.
func FilePerm(path string) (perm fs.FileMode, ok bool, err error) {
	return 0, false, nil
}
