// Package output provides formatters for check reports.
package output

import (
	"fmt"
	"io"

	"github.com/reglet-dev/constrain/internal/report"
)

// Formatter writes a check report in one output format.
type Formatter interface {
	Format(r *report.Report) error
}

// Options carries formatter-specific settings.
type Options struct {
	// Indent is the indentation for JSON output.
	Indent string

	// NoColor disables ANSI colors in terminal output.
	NoColor bool
}

// New returns a formatter for the given format name.
func New(format string, w io.Writer, opts Options) (Formatter, error) {
	switch format {
	case "table":
		return NewTableFormatter(w, !opts.NoColor), nil
	case "json":
		return NewJSONFormatter(w, opts.Indent), nil
	case "yaml":
		return NewYAMLFormatter(w), nil
	case "sarif":
		return NewSARIFFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: %v)", format, SupportedFormats())
	}
}

// SupportedFormats returns the available format names.
func SupportedFormats() []string {
	return []string{"table", "json", "yaml", "sarif"}
}
