// Package ingest drives the decode-and-flatten pipeline over a mailbox
// session: locate attachments, decode, flatten, persist.
package ingest

import (
	"fmt"
	"io"

	"github.com/emersion/go-imap"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/awooooool/tlsrpt-extractor/internal/attach"
	"github.com/awooooool/tlsrpt-extractor/internal/decode"
	"github.com/awooooool/tlsrpt-extractor/internal/parser"
	"github.com/awooooool/tlsrpt-extractor/internal/writer"
	"github.com/awooooool/tlsrpt-extractor/pkg/types"
)

// Session is the mailbox collaborator the pipeline reads from.
type Session interface {
	Search(unseenOnly bool) ([]uint32, error)
	FetchStructure(uid uint32) (*imap.BodyStructure, error)
	FetchPart(uid uint32, path []int) (io.Reader, error)
}

// Options tunes one pipeline run.
type Options struct {
	Mailbox    string // selected mailbox name, for the summary only
	UnseenOnly bool
}

// Pipeline processes every candidate message of a session. Failures are
// per-unit: a bad attachment or record never aborts its siblings.
type Pipeline struct {
	writer *writer.Writer
	log    *zap.Logger
}

// New returns a Pipeline persisting records through w.
func New(w *writer.Writer, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{writer: w, log: log}
}

// Run fetches and processes every candidate message, returning the run
// summary. Only a search failure is terminal; everything past it degrades
// to per-unit errors in the summary.
func (p *Pipeline) Run(sess Session, opts Options) (*types.RunSummary, error) {
	summary := &types.RunSummary{
		RunID:   uuid.NewString(),
		Mailbox: opts.Mailbox,
	}
	log := p.log.With(zap.String("run_id", summary.RunID))

	uids, err := sess.Search(opts.UnseenOnly)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	log.Info("processing messages", zap.Int("count", len(uids)))

	for _, uid := range uids {
		summary.Messages++
		p.processMessage(sess, uid, summary, log)
	}

	return summary, nil
}

func (p *Pipeline) processMessage(sess Session, uid uint32, summary *types.RunSummary, log *zap.Logger) {
	unit := fmt.Sprintf("message %d", uid)

	structure, err := sess.FetchStructure(uid)
	if err != nil {
		p.fail(summary, log, unit, types.StageStructure, err)
		return
	}

	attachments := attach.Locate(structure)
	summary.Attachments += len(attachments)
	if len(attachments) == 0 {
		log.Debug("no report attachments", zap.Uint32("uid", uid))
		return
	}

	for _, a := range attachments {
		p.processAttachment(sess, uid, a, summary, log)
	}
}

func (p *Pipeline) processAttachment(sess Session, uid uint32, a attach.Attachment, summary *types.RunSummary, log *zap.Logger) {
	unit := fmt.Sprintf("message %d part %v", uid, a.Path)
	if a.Filename == "" {
		p.fail(summary, log, unit, types.StageStructure, fmt.Errorf("attachment has no filename"))
		return
	}
	unit = fmt.Sprintf("message %d attachment %s", uid, a.Filename)

	body, err := sess.FetchPart(uid, a.Path)
	if err != nil {
		p.fail(summary, log, unit, types.StageDecode, err)
		return
	}

	data, err := decode.ReadAll(body, decode.PartMeta{Encoding: a.Encoding, Subtype: a.Subtype})
	if err != nil {
		p.fail(summary, log, unit, types.StageDecode, err)
		return
	}

	records, err := parser.FlattenBytes(data)
	if err != nil {
		p.fail(summary, log, unit, types.StageParse, err)
		return
	}
	summary.Reports++

	p.writeRecords(records, a.Filename, summary, log)
}

// writeRecords persists a fully flattened record set. Flattening completes
// before the first write, so an attachment that fails earlier contributes
// no partial record set.
func (p *Pipeline) writeRecords(records []types.Record, attachment string, summary *types.RunSummary, log *zap.Logger) {
	for i, record := range records {
		name, err := p.writer.Write(record, attachment, i)
		if err != nil {
			unit := fmt.Sprintf("attachment %s record %d", attachment, i)
			p.fail(summary, log, unit, types.StageWrite, err)
			continue
		}
		summary.RecordsWritten++
		log.Debug("record written", zap.String("file", name))
	}
}

func (p *Pipeline) fail(summary *types.RunSummary, log *zap.Logger, unit, stage string, err error) {
	summary.Errors = append(summary.Errors, types.IngestError{
		Unit:  unit,
		Stage: stage,
		Error: err.Error(),
	})
	log.Warn("unit failed",
		zap.String("unit", unit),
		zap.String("stage", stage),
		zap.Error(err))
}

// ExtractFiles runs the flatten-and-persist stages over local report files,
// the offline counterpart of Run. EML files contribute one unit per
// attachment; JSON and gzip files are one unit each.
func (p *Pipeline) ExtractFiles(files []string) *types.RunSummary {
	summary := &types.RunSummary{RunID: uuid.NewString()}
	log := p.log.With(zap.String("run_id", summary.RunID))

	for _, file := range files {
		summary.Messages++
		p.extractFile(file, summary, log)
	}

	return summary
}

func (p *Pipeline) extractFile(path string, summary *types.RunSummary, log *zap.Logger) {
	fileType := parser.DetectFileType(path)

	if fileType == parser.FileTypeEML {
		raw, err := readEML(path)
		if err != nil {
			p.fail(summary, log, path, types.StageStructure, err)
			return
		}
		attachments, err := parser.ExtractEML(raw)
		if err != nil {
			p.fail(summary, log, path, types.StageStructure, err)
			return
		}
		summary.Attachments += len(attachments)
		for _, a := range attachments {
			p.flattenAndWrite(a, path, summary, log)
		}
		return
	}

	data, err := parser.ReadReportFile(path, fileType)
	if err != nil {
		p.fail(summary, log, path, types.StageDecode, err)
		return
	}
	summary.Attachments++
	p.flattenAndWrite(parser.EMLAttachment{Filename: recordBaseName(path), Data: data}, path, summary, log)
}

func (p *Pipeline) flattenAndWrite(a parser.EMLAttachment, source string, summary *types.RunSummary, log *zap.Logger) {
	unit := fmt.Sprintf("%s attachment %s", source, a.Filename)
	if a.Err != nil {
		p.fail(summary, log, unit, types.StageDecode, a.Err)
		return
	}
	if a.Filename == "" {
		p.fail(summary, log, fmt.Sprintf("%s unnamed attachment", source), types.StageStructure,
			fmt.Errorf("attachment has no filename"))
		return
	}

	records, err := parser.FlattenBytes(a.Data)
	if err != nil {
		p.fail(summary, log, unit, types.StageParse, err)
		return
	}
	summary.Reports++

	p.writeRecords(records, a.Filename, summary, log)
}
