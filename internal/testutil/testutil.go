// Package testutil builds zip archives for tests.
package testutil

import (
	"bytes"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// ModTime is the default modification time of fixture entries.
var ModTime = time.Date(2024, time.March, 14, 15, 9, 26, 0, time.UTC)

// ZipEntry describes one record of a test archive.
type ZipEntry struct {
	// Name is the archive pathname. A trailing slash makes a directory.
	Name string

	Content []byte

	// Method is the compression method; zero means Store.
	Method uint16

	// Modified defaults to ModTime.
	Modified time.Time

	// CRC32, when non-nil, is written to the headers instead of the real
	// checksum. The entry is written raw, deflated when Method is Deflate
	// and stored otherwise.
	CRC32 *uint32
}

// File returns a stored file entry with the given content.
func File(name, content string) ZipEntry {
	return ZipEntry{Name: name, Content: []byte(content)}
}

// Dir returns a directory entry.
func Dir(name string) ZipEntry {
	return ZipEntry{Name: name}
}

// BuildZip encodes entries as a zip archive in the given order.
func BuildZip(tb testing.TB, entries []ZipEntry) []byte {
	tb.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())

	for _, e := range entries {
		modified := e.Modified
		if modified.IsZero() {
			modified = ModTime
		}

		if e.CRC32 != nil {
			method, raw := zip.Store, e.Content
			if e.Method == zip.Deflate {
				method, raw = zip.Deflate, deflate(tb, e.Content)
			}
			w, err := zw.CreateRaw(&zip.FileHeader{
				Name:               e.Name,
				Method:             method,
				Modified:           modified,
				CRC32:              *e.CRC32,
				CompressedSize64:   uint64(len(raw)),
				UncompressedSize64: uint64(len(e.Content)),
			})
			if err != nil {
				tb.Fatalf("create raw %s: %v", e.Name, err)
			}
			if _, err := w.Write(raw); err != nil {
				tb.Fatalf("write raw %s: %v", e.Name, err)
			}
			continue
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   e.Method,
			Modified: modified,
		})
		if err != nil {
			tb.Fatalf("create %s: %v", e.Name, err)
		}
		if len(e.Content) > 0 {
			if _, err := w.Write(e.Content); err != nil {
				tb.Fatalf("write %s: %v", e.Name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

func deflate(tb testing.TB, content []byte) []byte {
	tb.Helper()

	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		tb.Fatalf("flate writer: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		tb.Fatalf("deflate: %v", err)
	}
	if err := fw.Close(); err != nil {
		tb.Fatalf("close flate writer: %v", err)
	}
	return buf.Bytes()
}

// WriteZip writes a zip archive of entries to name inside dir and returns its path.
func WriteZip(tb testing.TB, dir, name string, entries []ZipEntry) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildZip(tb, entries), 0o644); err != nil { //nolint:gosec // test fixture
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

// CRC returns the IEEE CRC-32 of s.
func CRC(s string) uint32 {
	return crc32.ChecksumIEEE([]byte(s))
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
