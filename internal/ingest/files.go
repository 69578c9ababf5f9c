package ingest

import (
	"os"
	"path/filepath"
	"strings"
)

func readEML(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// recordBaseName derives the attachment-style name for a local report file:
// its base name with any compression extension stripped, so records from
// report.json.gz are named report-0.json, report-1.json, and so on.
func recordBaseName(path string) string {
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-len(".gz")]
	}
	return name
}
