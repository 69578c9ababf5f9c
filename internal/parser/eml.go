package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/awooooool/tlsrpt-extractor/internal/decode"
)

// EMLAttachment is one decoded report attachment pulled from a raw email.
type EMLAttachment struct {
	Filename string
	Data     []byte // fully decoded report JSON
	Err      error  // decode failure for this attachment only
}

// ExtractEML walks the MIME parts of a raw email message and returns its
// inline and attached parts, each run through the decode chain. A part that
// fails to decode is returned with Err set so siblings still succeed.
func ExtractEML(data []byte) ([]EMLAttachment, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing email: %w", err)
	}

	contentType := msg.Header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("parsing content-type: %w", err)
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		return nil, fmt.Errorf("expected multipart message, got %s", mediaType)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("no boundary in multipart message")
	}

	var attachments []EMLAttachment
	mr := multipart.NewReader(msg.Body, boundary)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading multipart: %w", err)
		}

		extractPart(part, &attachments)
	}

	return attachments, nil
}

func extractPart(part *multipart.Part, attachments *[]EMLAttachment) {
	contentType := part.Header.Get("Content-Type")
	mediaType, params, _ := mime.ParseMediaType(contentType)

	// Nested multipart (e.g. alternative inside mixed)
	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return
		}
		nested := multipart.NewReader(part, boundary)
		for {
			inner, err := nested.NextPart()
			if err != nil {
				return
			}
			extractPart(inner, attachments)
		}
	}

	disposition, dispParams, _ := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	switch strings.ToLower(disposition) {
	case "inline", "attachment":
	default:
		return
	}

	meta := decode.PartMeta{
		Encoding: part.Header.Get("Content-Transfer-Encoding"),
		Subtype:  subtypeOf(mediaType),
	}

	a := EMLAttachment{Filename: dispParams["filename"]}
	a.Data, a.Err = decode.ReadAll(part, meta)
	*attachments = append(*attachments, a)
}

func subtypeOf(mediaType string) string {
	if i := strings.IndexByte(mediaType, '/'); i >= 0 {
		return mediaType[i+1:]
	}
	return ""
}
