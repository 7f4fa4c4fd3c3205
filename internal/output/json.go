package output

import (
	"encoding/json"
	"io"

	"github.com/reglet-dev/constrain/internal/report"
)

// JSONFormatter formats check reports as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent string
}

// NewJSONFormatter creates a new JSON formatter. An empty indent produces
// compact output.
func NewJSONFormatter(w io.Writer, indent string) *JSONFormatter {
	return &JSONFormatter{writer: w, indent: indent}
}

// Format writes the check report as JSON.
func (f *JSONFormatter) Format(r *report.Report) error {
	encoder := json.NewEncoder(f.writer)
	if f.indent != "" {
		encoder.SetIndent("", f.indent)
	}
	return encoder.Encode(r)
}
