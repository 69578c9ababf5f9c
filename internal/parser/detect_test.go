package parser

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		path string
		want FileType
	}{
		{"report.json", FileTypeJSON},
		{"report.JSON", FileTypeJSON},
		{"report.json.gz", FileTypeGzip},
		{"report.gz", FileTypeGzip},
		{"message.eml", FileTypeEML},
		{"report.xml", FileTypeUnknown},
		{"report", FileTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFileType(tt.path))
		})
	}
}

func TestReadReportFile(t *testing.T) {
	report := []byte(`{"organization-name":"Example Org","policies":[]}`)

	var compressed bytes.Buffer
	gw := gzip.NewWriter(&compressed)
	_, err := gw.Write(report)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	dir := t.TempDir()

	t.Run("plain JSON", func(t *testing.T) {
		path := filepath.Join(dir, "report.json")
		require.NoError(t, os.WriteFile(path, report, 0o644))

		data, err := ReadReportFile(path, FileTypeJSON)
		require.NoError(t, err)
		assert.Equal(t, report, data)
	})

	t.Run("gzip-compressed JSON", func(t *testing.T) {
		path := filepath.Join(dir, "report.json.gz")
		require.NoError(t, os.WriteFile(path, compressed.Bytes(), 0o644))

		data, err := ReadReportFile(path, FileTypeGzip)
		require.NoError(t, err)
		assert.Equal(t, report, data)
	})

	t.Run("unknown type sniffs gzip magic", func(t *testing.T) {
		path := filepath.Join(dir, "report-noext")
		require.NoError(t, os.WriteFile(path, compressed.Bytes(), 0o644))

		data, err := ReadReportFile(path, FileTypeUnknown)
		require.NoError(t, err)
		assert.Equal(t, report, data)
	})

	t.Run("unknown type passes plain text through", func(t *testing.T) {
		path := filepath.Join(dir, "plain-noext")
		require.NoError(t, os.WriteFile(path, report, 0o644))

		data, err := ReadReportFile(path, FileTypeUnknown)
		require.NoError(t, err)
		assert.Equal(t, report, data)
	})

	t.Run("eml is not readable as a single report", func(t *testing.T) {
		_, err := ReadReportFile(filepath.Join(dir, "message.eml"), FileTypeEML)
		assert.Error(t, err)
	})
}

func TestWalkDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.json.gz"), []byte{0x1f, 0x8b}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skipped.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "noext"), []byte("{}"), 0o644))

	files, err := WalkDirectory(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.ElementsMatch(t, []string{"a.json", "b.json.gz", "noext"}, names)
}
