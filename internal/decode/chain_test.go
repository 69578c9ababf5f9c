package decode

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write(data)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func TestReadAll(t *testing.T) {
	report := []byte(`{"organization-name":"Example Org","policies":[]}`)

	tests := []struct {
		name  string
		meta  PartMeta
		input []byte
	}{
		{
			name:  "plain text with no declared encodings",
			meta:  PartMeta{Encoding: "7bit", Subtype: "tlsrpt"},
			input: report,
		},
		{
			name:  "base64 only",
			meta:  PartMeta{Encoding: "base64", Subtype: "tlsrpt"},
			input: []byte(base64.StdEncoding.EncodeToString(report)),
		},
		{
			name:  "gzip only",
			meta:  PartMeta{Encoding: "8bit", Subtype: "tlsrpt+gzip"},
			input: gzipBytes(t, report),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadAll(bytes.NewReader(tt.input), tt.meta)
			require.NoError(t, err)
			assert.Equal(t, report, data)
		})
	}
}

func TestReadAllBase64ThenGzip(t *testing.T) {
	// Attachments are gzipped first and base64-encoded second, so the chain
	// must decode base64 before inflating.
	report := []byte(`{"organization-name":"Example Org","report-id":"r1","policies":[]}`)
	encoded := base64.StdEncoding.EncodeToString(gzipBytes(t, report))

	meta := PartMeta{Encoding: "BASE64", Subtype: "TLSRPT+GZIP"}
	data, err := ReadAll(strings.NewReader(encoded), meta)
	require.NoError(t, err)
	assert.Equal(t, report, data, "decoded bytes should match the original JSON exactly")
}

func TestReadAllErrors(t *testing.T) {
	tests := []struct {
		name  string
		meta  PartMeta
		input string
	}{
		{
			name:  "malformed base64",
			meta:  PartMeta{Encoding: "base64", Subtype: "tlsrpt"},
			input: "!!!not base64!!!",
		},
		{
			name:  "corrupt gzip stream",
			meta:  PartMeta{Encoding: "8bit", Subtype: "tlsrpt+gzip"},
			input: "not a gzip stream",
		},
		{
			name:  "valid base64 wrapping corrupt gzip",
			meta:  PartMeta{Encoding: "base64", Subtype: "tlsrpt+gzip"},
			input: base64.StdEncoding.EncodeToString([]byte("still not gzip")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAll(strings.NewReader(tt.input), tt.meta)
			assert.Error(t, err)
		})
	}
}

func TestChainZeroStages(t *testing.T) {
	r := strings.NewReader("plain")
	out, err := Chain(r, PartMeta{Encoding: "quoted-printable", Subtype: "json"})
	require.NoError(t, err)
	assert.Same(t, r, out, "no matching stage should leave the reader untouched")
}
