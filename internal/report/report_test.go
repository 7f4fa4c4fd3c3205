package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinalize(t *testing.T) {
	r := &Report{
		Profile: "user-record",
		Documents: []DocumentResult{
			{Path: "a.yaml", Valid: true},
			{Path: "b.yaml", Valid: false, Diagnostics: []Diagnostic{
				{Code: "not_blank", Message: "field must not be blank"},
				{Code: "semver", Message: "not a version"},
			}},
			{Path: "c.yaml", Valid: false, Diagnostics: []Diagnostic{
				{Code: "missing_field", Message: "field is missing"},
			}},
		},
	}

	r.Finalize()

	assert.Equal(t, Summary{
		TotalDocuments:   3,
		ValidDocuments:   1,
		InvalidDocuments: 2,
		TotalDiagnostics: 3,
	}, r.Summary)
}

func TestFinalizeEmptyReport(t *testing.T) {
	r := &Report{}
	r.Finalize()
	assert.Equal(t, Summary{}, r.Summary)
}
