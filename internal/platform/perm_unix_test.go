//go:build unix

package platform

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePerm(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	require.NoError(t, os.Chmod(file, 0o640))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(file, link))
	dangling := filepath.Join(dir, "dangling")
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), dangling))

	tests := []struct {
		name string
		path string
		perm fs.FileMode
		ok   bool
	}{
		{name: "regular file", path: file, perm: 0o640, ok: true},
		{name: "symlink follows target", path: link, perm: 0o640, ok: true},
		{name: "dangling symlink", path: dangling},
		{name: "missing", path: filepath.Join(dir, "missing")},
		{name: "directory", path: dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			perm, ok, err := FilePerm(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.perm, perm)
		})
	}
}
