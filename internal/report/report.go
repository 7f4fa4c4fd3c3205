// Package report defines the outcome model for checking documents against
// a validation profile.
package report

import "time"

// Report is the aggregate outcome of one check run.
type Report struct {
	Profile     string           `json:"profile" yaml:"profile"`
	ExecutionID string           `json:"execution_id" yaml:"execution_id"`
	StartTime   time.Time        `json:"start_time" yaml:"start_time"`
	Duration    time.Duration    `json:"duration" yaml:"duration"`
	Documents   []DocumentResult `json:"documents" yaml:"documents"`
	Summary     Summary          `json:"summary" yaml:"summary"`
}

// DocumentResult is the verdict for one checked document.
type DocumentResult struct {
	Path        string       `json:"path" yaml:"path"`
	Valid       bool         `json:"valid" yaml:"valid"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Diagnostic is one constraint verdict attached to a document.
type Diagnostic struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
	Valid   bool   `json:"valid" yaml:"valid"`
}

// Summary aggregates the per-document verdicts.
type Summary struct {
	TotalDocuments   int `json:"total_documents" yaml:"total_documents"`
	ValidDocuments   int `json:"valid_documents" yaml:"valid_documents"`
	InvalidDocuments int `json:"invalid_documents" yaml:"invalid_documents"`
	TotalDiagnostics int `json:"total_diagnostics" yaml:"total_diagnostics"`
}

// Finalize recomputes the summary from the document results.
func (r *Report) Finalize() {
	s := Summary{TotalDocuments: len(r.Documents)}
	for _, doc := range r.Documents {
		if doc.Valid {
			s.ValidDocuments++
		} else {
			s.InvalidDocuments++
		}
		s.TotalDiagnostics += len(doc.Diagnostics)
	}
	r.Summary = s
}
