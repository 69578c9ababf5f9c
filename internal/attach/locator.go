// Package attach locates report attachments in a message's MIME structure.
package attach

import (
	"strings"

	"github.com/emersion/go-imap"
)

// Attachment describes one report-bearing part of a fetched message.
type Attachment struct {
	Path     []int  // IMAP section path, e.g. [2] or [1, 3]
	Encoding string // declared Content-Transfer-Encoding
	Subtype  string // MIME subtype, e.g. "tlsrpt+gzip"
	Filename string // disposition filename parameter; may be empty
}

// Locate walks a message's BODYSTRUCTURE tree and returns every part whose
// disposition marks it as inline or attached content, in tree order. Parts
// without a filename are still returned; downstream stages fail those
// attachments individually.
func Locate(bs *imap.BodyStructure) []Attachment {
	var found []Attachment
	walk(bs, nil, &found)
	return found
}

func walk(bs *imap.BodyStructure, path []int, found *[]Attachment) {
	if bs == nil {
		return
	}

	if len(bs.Parts) > 0 {
		for i, part := range bs.Parts {
			walk(part, append(path[:len(path):len(path)], i+1), found)
		}
		return
	}

	if !isAttachment(bs.Disposition) {
		return
	}

	// A leaf at the root is a non-multipart message; its body is section 1.
	if len(path) == 0 {
		path = []int{1}
	}

	a := Attachment{
		Path:     append([]int(nil), path...),
		Encoding: bs.Encoding,
		Subtype:  bs.MIMESubType,
	}
	if bs.DispositionParams != nil {
		a.Filename = bs.DispositionParams["filename"]
	}
	*found = append(*found, a)
}

// isAttachment reports whether a disposition type names attached or inline
// content.
func isAttachment(disposition string) bool {
	switch strings.ToLower(disposition) {
	case "inline", "attachment":
		return true
	default:
		return false
	}
}
