package parser

import (
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/awooooool/tlsrpt-extractor/pkg/types"
)

// aggregateReport mirrors the JSON structure of a TLS-RPT aggregate report.
type aggregateReport struct {
	OrganizationName string          `json:"organization-name"`
	DateRange        types.DateRange `json:"date-range"`
	ContactInfo      string          `json:"contact-info"`
	ReportID         string          `json:"report-id"`
	Policies         []reportPolicy  `json:"policies"`
}

type reportPolicy struct {
	Policy         types.PolicyDetails   `json:"policy"`
	Summary        reportSummary         `json:"summary"`
	FailureDetails []types.FailureDetail `json:"failure-details"`
}

type reportSummary struct {
	TotalSuccessfulSessionCount int `json:"total-successful-session-count"`
	TotalFailureSessionCount    int `json:"total-failure-session-count"`
}

// Flatten parses a TLS-RPT aggregate report from an io.Reader and expands it
// into flattened records.
func Flatten(r io.Reader) ([]types.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}

	return FlattenBytes(data)
}

// FlattenBytes parses a TLS-RPT aggregate report and expands it into one
// record per (policy, failure-detail) pair. A policy with no failure details
// yields exactly one detail-less record, so a policy always contributes
// max(1, len(failure-details)) records, in source order.
func FlattenBytes(data []byte) ([]types.Record, error) {
	var raw aggregateReport
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if raw.OrganizationName == "" && raw.ReportID == "" && len(raw.Policies) == 0 {
		return nil, errors.New("not a TLS-RPT aggregate report")
	}

	records := make([]types.Record, 0, len(raw.Policies))
	for _, policy := range raw.Policies {
		base := types.Record{
			OrganizationName: raw.OrganizationName,
			DateRange:        raw.DateRange,
			ContactInfo:      raw.ContactInfo,
			ReportID:         raw.ReportID,
			Policy:           policy.Policy,
			// The summary is rebuilt without the failure count rather than
			// edited in place; the count is implied by the records themselves.
			Summary: types.Summary{
				TotalSuccessfulSessionCount: policy.Summary.TotalSuccessfulSessionCount,
			},
		}

		if len(policy.FailureDetails) == 0 {
			records = append(records, base)
			continue
		}

		for _, fd := range policy.FailureDetails {
			record := base
			detail := fd
			record.FailureDetail = &detail
			records = append(records, record)
		}
	}

	return records, nil
}
