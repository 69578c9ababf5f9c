// Package writer persists flattened records as JSON files.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/awooooool/tlsrpt-extractor/pkg/types"
)

// Writer owns the output directory shared by all attachments and messages.
// Filenames are collision-free per attachment, so concurrent writes to
// distinct files need no coordination.
type Writer struct {
	dir string
	uid int // -1 leaves owner unchanged
	gid int // -1 leaves group unchanged
	log *zap.Logger
}

// New returns a Writer for the given output directory. uid and gid of -1
// disable the post-write ownership change.
func New(dir string, uid, gid int, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{dir: dir, uid: uid, gid: gid, log: log}
}

// Dir returns the configured output directory.
func (w *Writer) Dir() string { return w.dir }

// RecordName returns the collision-free filename for record index i of the
// named attachment: the base name with "-<i>" inserted before the original
// extension. A base name without an extension gets none appended.
func RecordName(attachment string, i int) string {
	ext := filepath.Ext(attachment)
	base := strings.TrimSuffix(attachment, ext)
	return fmt.Sprintf("%s-%d%s", base, i, ext)
}

// Write serializes one record and persists it under the name derived from
// the source attachment and the record's index. The output directory is
// created if absent. An ownership-change failure is logged, not fatal, and
// never rolls back the write.
func (w *Writer) Write(record types.Record, attachment string, i int) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing record: %w", err)
	}

	name := RecordName(filepath.Base(attachment), i)
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing record: %w", err)
	}

	if w.uid >= 0 || w.gid >= 0 {
		if err := os.Chown(path, w.uid, w.gid); err != nil {
			w.log.Warn("changing record ownership",
				zap.String("file", path),
				zap.Int("uid", w.uid),
				zap.Int("gid", w.gid),
				zap.Error(err))
		}
	}

	return name, nil
}
