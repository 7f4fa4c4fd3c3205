package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/constrain"
	"github.com/reglet-dev/constrain/constraints"
	"github.com/reglet-dev/constrain/internal/output"
	"github.com/reglet-dev/constrain/internal/report"
	"github.com/reglet-dev/constrain/profile"
)

var (
	format  string
	outFile string
	noColor bool
	timeout time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <profile.yaml> <document.yaml>...",
	Short: "Validate documents against a constraint profile",
	Long: `Load a constraint profile and validate one or more YAML documents
against it. Each document receives a verdict with the diagnostics of every
violated constraint; the command fails when any document is invalid.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheckAction(cmd.Context(), args[0], args[1:])
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&format, "format", "table", "Output format: table, json, yaml, sarif")
	checkCmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file path (default: stdout)")
	checkCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	checkCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Per-document validation timeout")
}

// runCheckAction implements the core logic for the check command
func runCheckAction(ctx context.Context, profilePath string, docPaths []string) error {
	slog.Info("loading profile", "path", profilePath)

	p, err := profile.Load(profilePath)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	slog.Info("profile loaded", "name", p.Profile.Name, "rules", len(p.Rules))

	rep := &report.Report{
		Profile:     p.Profile.Name,
		ExecutionID: uuid.NewString(),
		StartTime:   time.Now(),
	}

	for _, path := range docPaths {
		docResult, err := checkDocument(ctx, p, path)
		if err != nil {
			return err
		}
		rep.Documents = append(rep.Documents, docResult)
	}

	rep.Duration = time.Since(rep.StartTime)
	rep.Finalize()

	if err := writeReport(rep); err != nil {
		return err
	}

	if rep.Summary.InvalidDocuments > 0 {
		return fmt.Errorf("%d of %d documents failed validation",
			rep.Summary.InvalidDocuments, rep.Summary.TotalDocuments)
	}
	return nil
}

// checkDocument validates a single YAML document against the profile.
func checkDocument(ctx context.Context, p *profile.Profile, path string) (report.DocumentResult, error) {
	slog.Debug("checking document", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return report.DocumentResult{}, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	var doc profile.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return report.DocumentResult{}, fmt.Errorf("failed to parse document %s: %w", path, err)
	}

	guarded, err := profile.Guard(p, doc, constrain.ValueOptions[profile.Document, constraints.Diagnostic]{
		Logger: slog.Default(),
	})
	if err != nil {
		return report.DocumentResult{}, fmt.Errorf("failed to compile profile: %w", err)
	}
	defer guarded.Dispose()

	settleCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := guarded.Settled(settleCtx); err != nil {
		return report.DocumentResult{}, fmt.Errorf("validation of %s did not settle: %w", path, err)
	}

	result := report.DocumentResult{Path: path, Valid: guarded.Valid()}
	for _, diag := range guarded.Diagnostics().Valid() {
		result.Diagnostics = append(result.Diagnostics, report.Diagnostic{
			Code: diag.Code, Message: diag.Message, Valid: true,
		})
	}
	for _, diag := range guarded.Diagnostics().Invalid() {
		result.Diagnostics = append(result.Diagnostics, report.Diagnostic{
			Code: diag.Code, Message: diag.Message,
		})
	}
	return result, nil
}

// writeReport renders the report with the selected formatter.
func writeReport(rep *report.Report) error {
	w := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			_ = f.Close() // Best-effort cleanup
		}()
		w = f
	}

	formatter, err := output.New(format, w, output.Options{Indent: "  ", NoColor: noColor})
	if err != nil {
		return err
	}
	return formatter.Format(rep)
}
