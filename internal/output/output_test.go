package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/constrain/internal/report"
)

// createTestReport creates a sample check report for testing.
func createTestReport() *report.Report {
	r := &report.Report{
		Profile:     "user-record",
		ExecutionID: "test-execution-id",
		StartTime:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Duration:    120 * time.Millisecond,
		Documents: []report.DocumentResult{
			{
				Path:  "valid.yaml",
				Valid: true,
			},
			{
				Path:  "invalid.yaml",
				Valid: false,
				Diagnostics: []report.Diagnostic{
					{Code: "not_blank", Message: `field "user.name": value must not be blank`},
					{Code: "semver_range", Message: `field "user.version": version "3.0.0" does not satisfy ">= 1.0.0, < 2.0.0"`},
				},
			},
		},
	}
	r.Finalize()
	return r
}

func TestTableFormatterFormat(t *testing.T) {
	r := createTestReport()
	var buf bytes.Buffer

	// Disable color for deterministic string comparison.
	formatter := NewTableFormatter(&buf, false)
	require.NoError(t, formatter.Format(r))

	output := buf.String()
	assert.Contains(t, output, "Profile: user-record")
	assert.Contains(t, output, "✓ valid.yaml")
	assert.Contains(t, output, "✗ invalid.yaml")
	assert.Contains(t, output, "- [not_blank]")
	assert.Contains(t, output, "- [semver_range]")
	assert.Contains(t, output, "Summary:")
	assert.Contains(t, output, "Documents:   2 total")
	assert.Contains(t, output, "Valid:    1")
	assert.Contains(t, output, "Invalid:  1")
	assert.NotContains(t, output, "\033[", "colors are disabled")
}

func TestTableFormatterEmptyReport(t *testing.T) {
	r := &report.Report{Profile: "empty-profile"}
	r.Finalize()

	var buf bytes.Buffer
	formatter := NewTableFormatter(&buf, false)
	require.NoError(t, formatter.Format(r))

	output := buf.String()
	assert.Contains(t, output, "Profile: empty-profile")
	assert.Contains(t, output, "No documents checked.")
}

func TestJSONFormatterIndented(t *testing.T) {
	r := createTestReport()
	var buf bytes.Buffer

	formatter := NewJSONFormatter(&buf, "  ")
	require.NoError(t, formatter.Format(r))

	var decoded report.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "user-record", decoded.Profile)
	assert.Len(t, decoded.Documents, 2)
	assert.Equal(t, 2, decoded.Summary.TotalDocuments)
	assert.Equal(t, 2, decoded.Summary.TotalDiagnostics)
	assert.Contains(t, buf.String(), "\n  ")
}

func TestJSONFormatterCompact(t *testing.T) {
	r := createTestReport()
	var buf bytes.Buffer

	formatter := NewJSONFormatter(&buf, "")
	require.NoError(t, formatter.Format(r))

	var decoded report.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "user-record", decoded.Profile)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 1)
}

func TestYAMLFormatterFormat(t *testing.T) {
	r := createTestReport()
	var buf bytes.Buffer

	formatter := NewYAMLFormatter(&buf)
	require.NoError(t, formatter.Format(r))

	output := buf.String()

	var decoded report.Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "user-record", decoded.Profile)
	assert.Len(t, decoded.Documents, 2)
	assert.Contains(t, output, "profile: user-record")
	assert.Contains(t, output, "documents:")
	assert.Contains(t, output, "summary:")
}

func TestSARIFFormatterFormat(t *testing.T) {
	r := createTestReport()
	var buf bytes.Buffer

	formatter := NewSARIFFormatter(&buf)
	require.NoError(t, formatter.Format(r))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "2.1.0", doc["version"])

	runs, ok := doc["runs"].([]any)
	require.True(t, ok)
	require.Len(t, runs, 1)

	run := runs[0].(map[string]any)
	results := run["results"].([]any)
	// One pass result for the valid document, one fail result per invalid
	// diagnostic.
	assert.Len(t, results, 3)

	output := buf.String()
	assert.Contains(t, output, `"not_blank"`)
	assert.Contains(t, output, `"semver_range"`)
	assert.Contains(t, output, "invalid.yaml")
}

func TestFactory(t *testing.T) {
	tests := []struct {
		format string
		want   any
	}{
		{format: "table", want: &TableFormatter{}},
		{format: "json", want: &JSONFormatter{}},
		{format: "yaml", want: &YAMLFormatter{}},
		{format: "sarif", want: &SARIFFormatter{}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := New(tt.format, &bytes.Buffer{}, Options{})
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}

	_, err := New("junit", &bytes.Buffer{}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
