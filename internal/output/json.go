package output

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/awooooool/tlsrpt-extractor/pkg/types"
)

// ToJSON renders a run summary as indented JSON.
func ToJSON(summary *types.RunSummary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling summary: %w", err)
	}
	return string(data), nil
}
