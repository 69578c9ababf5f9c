// Package types contains shared data types for tlsrpt-extractor.
package types

// DateRange is the reporting period of an aggregate report.
type DateRange struct {
	StartDatetime string `json:"start-datetime"`
	EndDatetime   string `json:"end-datetime"`
}

// PolicyDetails describes one transport-security policy from a report.
type PolicyDetails struct {
	PolicyType   string   `json:"policy-type"`
	PolicyString []string `json:"policy-string,omitempty"`
	PolicyDomain string   `json:"policy-domain"`
	MXHost       []string `json:"mx-host,omitempty"`
}

// Summary carries the successful session count for one policy. The failure
// count is omitted on purpose: it is redundant with the number of records
// sharing the policy.
type Summary struct {
	TotalSuccessfulSessionCount int `json:"total-successful-session-count"`
}

// FailureDetail is one category of failed sessions under a policy.
type FailureDetail struct {
	ResultType          string `json:"result-type"`
	SendingMTAIP        string `json:"sending-mta-ip,omitempty"`
	ReceivingMXHostname string `json:"receiving-mx-hostname,omitempty"`
	ReceivingIP         string `json:"receiving-ip,omitempty"`
	FailedSessionCount  int    `json:"failed-session-count"`
	AdditionalInfo      string `json:"additional-information,omitempty"`
	FailureReasonCode   string `json:"failure-reason-code,omitempty"`
}

// Record is a flattened, self-contained view of an aggregate report: the
// report metadata merged with exactly one policy and at most one of that
// policy's failure details.
type Record struct {
	OrganizationName string         `json:"organization-name"`
	DateRange        DateRange      `json:"date-range"`
	ContactInfo      string         `json:"contact-info"`
	ReportID         string         `json:"report-id"`
	Policy           PolicyDetails  `json:"policy"`
	Summary          Summary        `json:"summary"`
	FailureDetail    *FailureDetail `json:"failure-details,omitempty"`
}

// Pipeline stages at which a unit of work can fail.
const (
	StageStructure = "structure" // unusable disposition/filename metadata
	StageDecode    = "decode"    // malformed base64 or compression stream
	StageParse     = "parse"     // decoded text is not a valid report
	StageWrite     = "write"     // filesystem failure persisting a record
)

// IngestError records one per-unit failure. A failed unit never aborts its
// siblings, so a run collects errors instead of stopping at the first one.
type IngestError struct {
	Unit  string `json:"unit"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// RunSummary describes the outcome of one ingest run.
type RunSummary struct {
	RunID          string        `json:"run_id"`
	Mailbox        string        `json:"mailbox,omitempty"`
	Messages       int           `json:"messages"`
	Attachments    int           `json:"attachments"`
	Reports        int           `json:"reports"`
	RecordsWritten int           `json:"records_written"`
	Errors         []IngestError `json:"errors,omitempty"`
}
