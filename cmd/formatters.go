package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"mdclip/pkg/clipboard"
	"mdclip/pkg/convert"
	"mdclip/pkg/history"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	// FormatTable is the default human-readable format
	FormatTable OutputFormat = "table"
	// FormatJSON outputs as JSON
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs as YAML
	FormatYAML OutputFormat = "yaml"
)

// OutputWriter handles structured output formatting
type OutputWriter struct {
	format OutputFormat
	writer io.Writer
}

// NewOutputWriter creates a new output writer with the specified format
func NewOutputWriter(format string) *OutputWriter {
	f := OutputFormat(format)
	if f != FormatJSON && f != FormatYAML {
		f = FormatTable // default
	}
	return &OutputWriter{
		format: f,
		writer: os.Stdout,
	}
}

// SetWriter sets a custom writer (used in tests)
func (w *OutputWriter) SetWriter(writer io.Writer) {
	w.writer = writer
}

// GetFormat returns the current format
func (w *OutputWriter) GetFormat() OutputFormat {
	return w.format
}

// IsStructured returns true if the format is JSON or YAML
func (w *OutputWriter) IsStructured() bool {
	return w.format == FormatJSON || w.format == FormatYAML
}

// Write outputs the data in the configured format
func (w *OutputWriter) Write(data interface{}) error {
	switch w.format {
	case FormatJSON:
		encoder := json.NewEncoder(w.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case FormatYAML:
		encoder := yaml.NewEncoder(w.writer)
		defer encoder.Close()
		return encoder.Encode(data)
	default:
		// Table format is handled by individual commands
		return nil
	}
}

// ValidFormats returns a list of valid output formats
func ValidFormats() []string {
	return []string{"table", "json", "yaml"}
}

func FormatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

// ConversionOutput is the structured form of a conversion result.
type ConversionOutput struct {
	Direction string   `json:"direction" yaml:"direction"`
	Source    string   `json:"source" yaml:"source"`
	Formats   []string `json:"formats" yaml:"formats"`
	DryRun    bool     `json:"dry_run" yaml:"dry_run"`
	Output    string   `json:"output" yaml:"output"`
}

func mapToConversionOutput(res convert.Result, dryRun bool) ConversionOutput {
	return ConversionOutput{
		Direction: res.Direction,
		Source:    res.Source.String(),
		Formats:   res.Formats(),
		DryRun:    dryRun,
		Output:    res.Output,
	}
}

// writeConversion reports a finished conversion. In dry-run mode the
// representations that would have been written are printed.
func writeConversion(w io.Writer, format string, res convert.Result, dryRun bool) error {
	output := NewOutputWriter(format)
	output.SetWriter(w)
	if output.IsStructured() {
		return output.Write(mapToConversionOutput(res, dryRun))
	}

	if !dryRun {
		fmt.Fprintf(w, "✓ Converted %s to %s: %s\n", res.Source, target(res.Direction), strings.Join(res.Formats(), ", "))
		return nil
	}

	fmt.Fprintf(w, "Dry run: %s from %s would write %d representation(s)\n", target(res.Direction), res.Source, len(res.Written))
	for _, rep := range res.Written {
		fmt.Fprintf(w, "\n--- %s (%s) ---\n", rep.Format, rep.MIMEType())
		fmt.Fprintln(w, printable(rep))
	}
	return nil
}

func target(direction string) string {
	if direction == history.DirectionToRich {
		return "rich text"
	}
	return "Markdown"
}

// printable returns text payloads as-is and summarises binary or RTF data.
func printable(rep clipboard.Representation) string {
	if rep.Format == clipboard.FormatRTF || !utf8.Valid(rep.Data) {
		return fmt.Sprintf("<%d bytes>", len(rep.Data))
	}
	return rep.Text()
}
