// Package decode builds streaming decode chains for report attachments.
//
// Report attachments arrive with a variable mix of transport encoding and
// compression. The chain is a fixed ordered table of predicate/stage pairs
// so the composition stays explicit: transfer decoding always runs before
// inflation, because reports are gzipped first and base64-encoded second.
package decode

import (
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// PartMeta holds the declared encoding metadata of one attachment part.
type PartMeta struct {
	Encoding string // Content-Transfer-Encoding name, e.g. "BASE64"
	Subtype  string // MIME subtype, e.g. "tlsrpt+gzip"
}

type stage struct {
	name    string
	applies func(PartMeta) bool
	wrap    func(io.Reader) (io.Reader, error)
}

var stages = []stage{
	{
		name: "base64",
		applies: func(m PartMeta) bool {
			return strings.EqualFold(m.Encoding, "base64")
		},
		wrap: func(r io.Reader) (io.Reader, error) {
			return base64.NewDecoder(base64.StdEncoding, r), nil
		},
	},
	{
		name: "gzip",
		applies: func(m PartMeta) bool {
			return strings.Contains(strings.ToLower(m.Subtype), "gzip")
		},
		wrap: func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		},
	},
}

// Chain wraps r with every decode stage declared by meta, in table order.
// Zero matching stages returns r unchanged: the part is already plain text.
func Chain(r io.Reader, meta PartMeta) (io.Reader, error) {
	for _, s := range stages {
		if !s.applies(meta) {
			continue
		}
		wrapped, err := s.wrap(r)
		if err != nil {
			return nil, fmt.Errorf("%s stage: %w", s.name, err)
		}
		r = wrapped
	}
	return r, nil
}

// ReadAll runs the decode chain over r and accumulates the fully decoded
// bytes. Bytes flow through the stages incrementally; only the final output
// is buffered.
func ReadAll(r io.Reader, meta PartMeta) ([]byte, error) {
	out, err := Chain(r, meta)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(out)
	if err != nil {
		return nil, fmt.Errorf("decoding attachment: %w", err)
	}
	return data, nil
}
