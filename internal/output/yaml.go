package output

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/constrain/internal/report"
)

// YAMLFormatter formats check reports as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the check report as YAML.
func (f *YAMLFormatter) Format(r *report.Report) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(r); err != nil {
		return err
	}

	return encoder.Close()
}
