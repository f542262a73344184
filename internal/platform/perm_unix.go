//go:build unix

package platform

import (
	"io/fs"
	"os"
)

// FilePerm returns the permission bits of the file at path, following
// symlinks. ok is false when the file does not exist or is not a regular
// file, including a dangling link.
func FilePerm(path string) (perm fs.FileMode, ok bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if !info.Mode().IsRegular() {
		return 0, false, nil
	}
	return info.Mode().Perm(), true, nil
}
