package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/reglet-dev/constrain/internal/report"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// TableFormatter formats check reports as a human-readable table.
type TableFormatter struct {
	writer      io.Writer
	enableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer, enableColor bool) *TableFormatter {
	return &TableFormatter{writer: w, enableColor: enableColor}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.enableColor {
		return text
	}
	return code + text + colorReset
}

// Format writes the check report as a table.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) Format(r *report.Report) error {
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
	fmt.Fprintf(f.writer, "Profile: %s\n", f.colorize(r.Profile, colorBold))
	fmt.Fprintf(f.writer, "Executed: %s\n", r.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintln(f.writer)

	if len(r.Documents) == 0 {
		fmt.Fprintln(f.writer, "No documents checked.")
		return nil
	}

	fmt.Fprintln(f.writer, f.colorize("Documents:", colorBold))
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))

	for _, doc := range r.Documents {
		f.formatDocument(doc)
	}

	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
	fmt.Fprintln(f.writer)

	f.formatSummary(r.Summary)
	return nil
}

// formatDocument formats a single document verdict.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatDocument(doc report.DocumentResult) {
	symbol, color := "✓", colorGreen
	if !doc.Valid {
		symbol, color = "✗", colorRed
	}

	fmt.Fprintf(f.writer, "%s %s\n", f.colorize(symbol, color), f.colorize(doc.Path, color))

	for _, diag := range doc.Diagnostics {
		if diag.Valid {
			continue
		}
		fmt.Fprintf(f.writer, "  - [%s] %s\n", diag.Code, diag.Message)
	}

	fmt.Fprintln(f.writer)
}

// formatSummary formats the summary statistics.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatSummary(s report.Summary) {
	fmt.Fprintln(f.writer, f.colorize("Summary:", colorBold))
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
	fmt.Fprintf(f.writer, "Documents:   %d total\n", s.TotalDocuments)
	fmt.Fprintf(f.writer, "  %s Valid:    %d\n", f.colorize("✓", colorGreen), s.ValidDocuments)
	fmt.Fprintf(f.writer, "  %s Invalid:  %d\n", f.colorize("✗", colorRed), s.InvalidDocuments)
	fmt.Fprintf(f.writer, "Diagnostics: %d total\n", s.TotalDiagnostics)
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
}
