package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/reglet-dev/constrain/internal/report"
)

// SARIFFormatter formats check reports as SARIF 2.1.0 JSON. Diagnostic
// codes map to SARIF rules and document verdicts to results located at the
// document path.
type SARIFFormatter struct {
	writer io.Writer
}

// NewSARIFFormatter creates a new SARIF formatter.
func NewSARIFFormatter(w io.Writer) *SARIFFormatter {
	return &SARIFFormatter{writer: w}
}

// Format writes the check report as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(r *report.Report) error {
	doc := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("constrain", "https://github.com/reglet-dev/constrain")
	run.Tool.Driver.Organization = ptrString("constrain")

	m := newSARIFMapper(r)
	m.mapToRun(run)

	doc.AddRun(run)

	if err := doc.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

type sarifMapper struct {
	report *report.Report
	cwd    string
	rules  map[string]struct{}
}

func newSARIFMapper(r *report.Report) *sarifMapper {
	cwd, _ := os.Getwd() // Best effort, ignore error
	return &sarifMapper{report: r, cwd: cwd, rules: make(map[string]struct{})}
}

// mapToRun populates the SARIF run with rules, results and invocation
// metadata.
func (m *sarifMapper) mapToRun(run *sarif.Run) {
	m.addResults(run)
	m.addInvocation(run)

	props := sarif.NewPropertyBag()
	props.Add("summary", m.report.Summary)
	run.WithProperties(props)
}

// addResults converts every invalid diagnostic of every document into a
// SARIF result, registering one rule per diagnostic code.
func (m *sarifMapper) addResults(run *sarif.Run) {
	for _, doc := range m.report.Documents {
		for _, diag := range doc.Diagnostics {
			if diag.Valid {
				continue
			}
			m.addRule(run, diag.Code)

			result := sarif.NewRuleResult(diag.Code)
			result.Level = "error"
			result.Kind = "fail"
			result.Message = sarif.NewTextMessage(diag.Message)
			if loc := m.location(doc.Path); loc != nil {
				result.Locations = []*sarif.Location{loc}
			}
			run.AddResult(result)
		}

		if doc.Valid {
			m.addRule(run, "valid")
			result := sarif.NewRuleResult("valid")
			result.Level = "note"
			result.Kind = "pass"
			result.Message = sarif.NewTextMessage(fmt.Sprintf("Document %s satisfies every constraint", doc.Path))
			if loc := m.location(doc.Path); loc != nil {
				result.Locations = []*sarif.Location{loc}
			}
			run.AddResult(result)
		}
	}
}

// addRule registers a reporting descriptor for a diagnostic code once.
func (m *sarifMapper) addRule(run *sarif.Run, code string) {
	if _, ok := m.rules[code]; ok {
		return
	}
	m.rules[code] = struct{}{}

	rule := sarif.NewReportingDescriptor().WithID(code)
	rule.WithName(code)
	desc := fmt.Sprintf("Constraint diagnostic %q", code)
	rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &desc})
	run.Tool.Driver.AddRule(rule)
}

func (m *sarifMapper) location(path string) *sarif.Location {
	if path == "" {
		return nil
	}
	pLoc := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithURI(m.normalizeURI(path)))
	return sarif.NewLocation().WithPhysicalLocation(pLoc)
}

// normalizeURI converts a file path to a SARIF-compliant URI.
func (m *sarifMapper) normalizeURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}

	if m.cwd != "" {
		if rel, err := filepath.Rel(m.cwd, abs); err == nil && !filepath.IsAbs(rel) && rel != ".." && !isParentPath(rel) {
			return filepath.ToSlash(rel)
		}
	}

	return "file://" + filepath.ToSlash(abs)
}

func isParentPath(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

// addInvocation adds execution metadata to the run.
func (m *sarifMapper) addInvocation(run *sarif.Run) {
	invocation := sarif.NewInvocation()

	invocation.ExecutionSuccessful = ptrBool(true)

	startTime := m.report.StartTime.UTC().Format("2006-01-02T15:04:05.000Z")
	endTime := m.report.StartTime.Add(m.report.Duration).UTC().Format("2006-01-02T15:04:05.000Z")
	invocation.StartTimeUtc = &startTime
	invocation.EndTimeUtc = &endTime

	if hostname, err := os.Hostname(); err == nil {
		invocation.Machine = &hostname
	}

	if m.cwd != "" {
		cwd := "file://" + filepath.ToSlash(m.cwd)
		invocation.WorkingDirectory = sarif.NewArtifactLocation().WithURI(cwd)
	}

	props := sarif.NewPropertyBag()
	props.Add("profileName", m.report.Profile)
	props.Add("executionId", m.report.ExecutionID)
	invocation.WithProperties(props)

	run.AddInvocation(invocation)
}

func ptrString(s string) *string {
	return &s
}

func ptrBool(b bool) *bool {
	return &b
}
