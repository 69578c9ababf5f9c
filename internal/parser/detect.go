package parser

// Local-file detection and reading for TLS-RPT reports pulled out of a
// mailbox by other means.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/awooooool/tlsrpt-extractor/internal/decode"
)

// FileType represents the type of a local report file.
type FileType int

// Supported file types for local extraction.
const (
	FileTypeUnknown FileType = iota // sniffed by content
	FileTypeJSON                    // plain JSON report
	FileTypeGzip                    // gzip-compressed JSON report
	FileTypeEML                     // raw email message carrying report attachments
)

// DetectFileType determines the file type based on extension.
func DetectFileType(path string) FileType {
	lower := strings.ToLower(path)

	switch {
	case strings.HasSuffix(lower, ".json.gz"), strings.HasSuffix(lower, ".gz"):
		return FileTypeGzip
	case strings.HasSuffix(lower, ".json"):
		return FileTypeJSON
	case strings.HasSuffix(lower, ".eml"):
		return FileTypeEML
	default:
		return FileTypeUnknown
	}
}

// ReadReportFile reads a local report file and returns the raw report JSON,
// decompressing when the type calls for it. EML files carry multiple
// attachments and are handled by ExtractEML instead.
func ReadReportFile(path string, fileType FileType) ([]byte, error) {
	switch fileType {
	case FileTypeJSON:
		return os.ReadFile(path)
	case FileTypeGzip:
		return readGzipFile(path)
	case FileTypeUnknown:
		return readAndDetect(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

func readGzipFile(path string) (data []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return decode.ReadAll(f, decode.PartMeta{Subtype: "gzip"})
}

func readAndDetect(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Check for gzip magic number
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		return decode.ReadAll(bytes.NewReader(data), decode.PartMeta{Subtype: "gzip"})
	}

	return data, nil
}

// WalkDirectory walks a directory and returns all candidate report files.
func WalkDirectory(root string) ([]string, error) {
	var files []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		if DetectFileType(path) != FileTypeUnknown {
			files = append(files, path)
			return nil
		}

		// Extensionless files may still be reports; content sniffing decides.
		if filepath.Ext(path) == "" {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}
