package zipview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zipview/internal/testutil"
)

func TestWriteReport(t *testing.T) {
	t.Parallel()

	diffs := []Difference{
		{Kinds: DiffKinds(OnlyInFirst), Path: "a.txt"},
		{Kinds: DiffKinds(SizeDiffers).With(CRCDiffers), Path: "dir/b.txt"},
	}

	tests := []struct {
		format ReportFormat
		want   string
	}{
		{ReportTabSeparated, "1    \ta.txt\n   SC\tdir/b.txt\n"},
		{ReportColumns, "1     : a.txt\n   SC : dir/b.txt\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, WriteReport(&buf, diffs, tt.format))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestReportFormatKeys(t *testing.T) {
	t.Parallel()

	for _, f := range []ReportFormat{ReportTabSeparated, ReportColumns} {
		text, err := f.MarshalText()
		require.NoError(t, err)

		var got ReportFormat
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, f, got)
	}
	_, err := ParseReportFormat("xml")
	require.Error(t, err)
}

func TestWriteReportHeader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := testutil.BuildZip(t, sampleEntries())
	first := testutil.WriteZip(t, dir, "first.zip", sampleEntries())
	second := testutil.WriteZip(t, dir, "second.zip", nil)

	var buf bytes.Buffer
	require.NoError(t, WriteReportHeader(&buf, first, second))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "# first: "+first+" "+digest.FromBytes(data).String(), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "# second: "+second+" sha256:"))

	err := WriteReportHeader(&buf, first, dir+"/missing.zip")
	require.Error(t, err)
}
