package parser

import (
	"os"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoPolicyReport = `{
	"organization-name": "Example Org",
	"date-range": {
		"start-datetime": "2026-01-01T00:00:00Z",
		"end-datetime": "2026-01-01T23:59:59Z"
	},
	"contact-info": "tlsrpt@example.org",
	"report-id": "2026-01-01_example.com",
	"policies": [{
		"policy": {
			"policy-type": "sts",
			"policy-domain": "example.com"
		},
		"summary": {
			"total-successful-session-count": 100,
			"total-failure-session-count": 5
		},
		"failure-details": [{
			"result-type": "certificate-expired",
			"sending-mta-ip": "12.34.56.78",
			"receiving-mx-hostname": "mail.example.com",
			"receiving-ip": "98.76.54.32",
			"failed-session-count": 3
		}, {
			"result-type": "starttls-not-supported",
			"sending-mta-ip": "12.34.56.79",
			"receiving-mx-hostname": "mail2.example.com",
			"failed-session-count": 2
		}]
	}, {
		"policy": {
			"policy-type": "tlsa",
			"policy-domain": "other.example.com"
		},
		"summary": {
			"total-successful-session-count": 42,
			"total-failure-session-count": 0
		}
	}]
}`

func TestFlattenBytes(t *testing.T) {
	records, err := FlattenBytes([]byte(twoPolicyReport))
	require.NoError(t, err)

	// Two failure details under the first policy plus one detail-less record
	// for the second.
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "Example Org", first.OrganizationName)
	assert.Equal(t, "2026-01-01T00:00:00Z", first.DateRange.StartDatetime)
	assert.Equal(t, "tlsrpt@example.org", first.ContactInfo)
	assert.Equal(t, "2026-01-01_example.com", first.ReportID)
	assert.Equal(t, "sts", first.Policy.PolicyType)
	assert.Equal(t, 100, first.Summary.TotalSuccessfulSessionCount)
	require.NotNil(t, first.FailureDetail)
	assert.Equal(t, "certificate-expired", first.FailureDetail.ResultType)
	assert.Equal(t, 3, first.FailureDetail.FailedSessionCount)
	assert.Equal(t, "98.76.54.32", first.FailureDetail.ReceivingIP)

	second := records[1]
	require.NotNil(t, second.FailureDetail)
	assert.Equal(t, "starttls-not-supported", second.FailureDetail.ResultType)
	assert.Equal(t, 2, second.FailureDetail.FailedSessionCount)
	assert.Equal(t, "sts", second.Policy.PolicyType)

	third := records[2]
	assert.Nil(t, third.FailureDetail, "a policy without failure details yields one detail-less record")
	assert.Equal(t, "tlsa", third.Policy.PolicyType)
	assert.Equal(t, 42, third.Summary.TotalSuccessfulSessionCount)
}

func TestFlattenBytesDropsFailureCount(t *testing.T) {
	records, err := FlattenBytes([]byte(twoPolicyReport))
	require.NoError(t, err)

	for _, record := range records {
		data, err := json.Marshal(record)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "total-failure-session-count")
		assert.NotContains(t, string(data), "failure-count")
	}
}

func TestFlattenBytesDeterministic(t *testing.T) {
	first, err := FlattenBytes([]byte(twoPolicyReport))
	require.NoError(t, err)
	second, err := FlattenBytes([]byte(twoPolicyReport))
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON, "identical input must flatten identically")
}

func TestFlattenBytesFixture(t *testing.T) {
	data, err := os.ReadFile("testdata/tlsrpt_google.json")
	require.NoError(t, err, "failed to read test file")

	records, err := FlattenBytes(data)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "Google Inc.", records[0].OrganizationName)
	assert.Equal(t, "example.com", records[0].Policy.PolicyDomain)
	assert.Len(t, records[0].Policy.PolicyString, 4)
	assert.Equal(t, 1, records[0].Summary.TotalSuccessfulSessionCount)
	assert.Nil(t, records[0].FailureDetail)
}

func TestFlattenReader(t *testing.T) {
	records, err := Flatten(strings.NewReader(twoPolicyReport))
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestFlattenBytesInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "invalid JSON", input: "not json"},
		{name: "empty string", input: ""},
		{name: "XML instead of JSON", input: "<xml/>"},
		{name: "JSON without report shape", input: "{}"},
		{name: "JSON array", input: "[1, 2, 3]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FlattenBytes([]byte(tt.input))
			assert.Error(t, err, "should fail to flatten invalid input")
		})
	}
}

func TestFlattenBytesEmptyPolicies(t *testing.T) {
	input := `{
		"organization-name": "test.com",
		"date-range": {
			"start-datetime": "2026-01-01T00:00:00Z",
			"end-datetime": "2026-01-01T23:59:59Z"
		},
		"report-id": "r1",
		"policies": []
	}`

	records, err := FlattenBytes([]byte(input))
	require.NoError(t, err)
	assert.Empty(t, records, "no policies means no records")
}
