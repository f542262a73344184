package cmd

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zipview"
	"github.com/meigma/zipview/config"
	"github.com/meigma/zipview/internal/testutil"
)

// execute runs the root command with args. Commands share flag state, so
// these tests do not run in parallel and every call starts from defaults.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--quiet", "--config", filepath.Join(t.TempDir(), config.FileName)}, args...))
	err := rootCmd.Execute()
	return stdout.String(), err
}

func resetFlags() {
	listFilters, extractFilters, compareFilters = nil, nil, nil
	compareFields = nil
	listLong, extractFlatten, compareDigest = false, false, false
	extractDest, extractOnConflict = "", ""
	compareParams, compareSaveParams, compareFormat, compareOutput = "", "", "", ""
	verbose, quiet, configPath = false, false, ""

	unchange := func(f *pflag.Flag) { f.Changed = false }
	rootCmd.PersistentFlags().VisitAll(unchange)
	for _, c := range append(rootCmd.Commands(), rootCmd) {
		c.Flags().VisitAll(unchange)
	}
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	path := fixture(t)

	_, err := execute(t, "list", path, "--long", "--exclude", "**")
	require.NoError(t, err)

	out, err := execute(t, "list", path)
	require.NoError(t, err)
	assert.Equal(t, "README\ndocs/guide.md\nsrc/main.go\n", out)
}

func fixture(t *testing.T) string {
	t.Helper()
	return testutil.WriteZip(t, t.TempDir(), "cli.zip", []testutil.ZipEntry{
		testutil.File("docs/guide.md", "guide"),
		testutil.File("README", "readme"),
		testutil.File("src/main.go", "package main"),
	})
}

func TestListCommand(t *testing.T) {
	path := fixture(t)

	out, err := execute(t, "list", path)
	require.NoError(t, err)
	assert.Equal(t, "README\ndocs/guide.md\nsrc/main.go\n", out)

	out, err = execute(t, "list", path, "--include", "g:*.md", "--exclude", "**")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = execute(t, "list", path, "--exclude", "**", "--include", "g:*.md")
	require.NoError(t, err)
	assert.Equal(t, "docs/guide.md\n", out)
}

func TestInfoCommand(t *testing.T) {
	out, err := execute(t, "info", fixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Number of files:")
	assert.Contains(t, out, "cli.zip")
}

func TestExtractCommand(t *testing.T) {
	path := fixture(t)
	dest := t.TempDir()

	out, err := execute(t, "extract", path, "src/*", "--dest", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Extracted 1 of 1 files")
	assert.FileExists(t, filepath.Join(dest, "src", "main.go"))
	assert.NoFileExists(t, filepath.Join(dest, "README"))

	_, err = execute(t, "extract", path, "--dest", dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exist")
	assert.NoFileExists(t, filepath.Join(dest, "README"))

	out, err = execute(t, "extract", path, "--dest", dest, "--on-conflict", "skip")
	require.NoError(t, err)
	assert.Contains(t, out, "Extracted 2 of 2 files")
	assert.FileExists(t, filepath.Join(dest, "README"))
}

func TestCompareCommand(t *testing.T) {
	first := fixture(t)
	second := testutil.WriteZip(t, t.TempDir(), "other.zip", []testutil.ZipEntry{
		testutil.File("README", "readme, revised"),
		testutil.File("src/main.go", "package main"),
	})

	out, err := execute(t, "compare", first, second, "--format", "tsv")
	require.NoError(t, err)
	assert.Equal(t, "   SC\tREADME\n1    \tdocs/guide.md\n", out)

	report := filepath.Join(t.TempDir(), "report.txt")
	_, err = execute(t, "compare", first, second, "--field", "size", "--output", report)
	require.NoError(t, err)
	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Equal(t, "   S  : README\n1     : docs/guide.md\n", string(data))
}

func TestResolveConflicts(t *testing.T) {
	logger = slog.New(slog.DiscardHandler)
	dest := t.TempDir()
	entries := []zipview.Entry{{Path: "a"}, {Path: "b"}, {Path: "c"}}
	require.NoError(t, os.WriteFile(filepath.Join(dest, "b"), nil, 0o644))

	got, err := resolveConflicts(entries, []int{0, 1, 2}, dest, false, config.ConflictSkip)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, got)

	got, err = resolveConflicts(entries, []int{0, 1, 2}, dest, false, config.ConflictReplace)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)

	_, err = resolveConflicts(entries, []int{0, 1, 2}, dest, false, config.ConflictFail)
	require.Error(t, err)
}

func TestProgressLine(t *testing.T) {
	assert.Empty(t, progressLine(zipview.ProgressEvent{}))
	assert.Equal(t, "Sorting ...", progressLine(zipview.ProgressEvent{Message: "Sorting", Fraction: zipview.Indeterminate}))
	assert.Equal(t, "Extracting files  50% (1.0 kB of 2.0 kB)", progressLine(zipview.ProgressEvent{
		Message:    "Extracting files",
		Fraction:   0.5,
		BytesDone:  1000,
		BytesTotal: 2000,
	}))
}
