// Package report renders scan results for CI consumption: a line-oriented
// text listing as the primary contract, plus table, JSON and YAML forms.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/layerfang/pkg/scan"
)

// Format selects the output rendering.
type Format string

// Supported output formats.
const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ErrUnknownFormat indicates an unsupported output format name.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat converts a format name into a Format.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatText, FormatTable, FormatJSON, FormatYAML:
		return Format(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Renderer writes scan results in a chosen format.
type Renderer struct {
	format  Format
	noColor bool
}

// NewRenderer creates a Renderer.
func NewRenderer(format Format, noColor bool) *Renderer {
	return &Renderer{format: format, noColor: noColor}
}

// Render writes the result to w.
func (r *Renderer) Render(result *scan.Result, w io.Writer) error {
	switch r.format {
	case FormatText:
		return r.renderText(result, w)
	case FormatTable:
		return r.renderTable(result, w)
	case FormatJSON:
		return r.renderJSON(result, w)
	case FormatYAML:
		return r.renderYAML(result, w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, r.format)
	}
}

// renderText emits the primary CI listing: a single success line for a clean
// run, or a header followed by one line per violation in
// "<path>:<line>:<col> [<from> -> <to>] <module> :: <reason>" form.
func (r *Renderer) renderText(result *scan.Result, w io.Writer) error {
	if result.Clean() {
		err := r.statusLine(w, color.FgGreen, "OK: no layered-import violations found.")
		if err != nil {
			return err
		}

		return r.summaryLine(result, w)
	}

	err := r.statusLine(w, color.FgRed, "Layered-import violations:")
	if err != nil {
		return err
	}

	for _, violation := range result.Violations {
		_, err = fmt.Fprintf(w, "- %s\n", FormatViolation(violation))
		if err != nil {
			return fmt.Errorf("render text: %w", err)
		}
	}

	return r.summaryLine(result, w)
}

func (r *Renderer) renderTable(result *scan.Result, w io.Writer) error {
	if result.Clean() {
		return r.renderText(result, w)
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Location", "From", "To", "Module", "Reason"})

	for _, violation := range result.Violations {
		tbl.AppendRow(table.Row{
			violation.Location(),
			violation.FileLayer,
			violation.ModuleLayer,
			violation.Module,
			violation.Reason,
		})
	}

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	return r.summaryLine(result, w)
}

// document is the serialized report shape shared by JSON and YAML output.
type document struct {
	Violations   []scan.Violation `json:"violations" yaml:"violations"`
	Count        int              `json:"count" yaml:"count"`
	FilesScanned int              `json:"files_scanned" yaml:"files_scanned"`
}

func newDocument(result *scan.Result) document {
	violations := result.Violations
	if violations == nil {
		violations = []scan.Violation{}
	}

	return document{
		Violations:   violations,
		Count:        len(result.Violations),
		FilesScanned: result.FilesScanned,
	}
}

func (r *Renderer) renderJSON(result *scan.Result, w io.Writer) error {
	data, err := json.MarshalIndent(newDocument(result), "", "  ")
	if err != nil {
		return fmt.Errorf("render json: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))
	if err != nil {
		return fmt.Errorf("render json: %w", err)
	}

	return nil
}

func (r *Renderer) renderYAML(result *scan.Result, w io.Writer) error {
	data, err := yaml.Marshal(newDocument(result))
	if err != nil {
		return fmt.Errorf("render yaml: %w", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("render yaml: %w", err)
	}

	return nil
}

// FormatViolation renders one violation as
// "<path>:<line>:<col> [<fileLayer> -> <importLayer>] <module> :: <reason>"
// with the column 1-based for editors and humans.
func FormatViolation(v scan.Violation) string {
	return fmt.Sprintf("%s [%s -> %s] %s :: %s",
		v.Location(), v.FileLayer, v.ModuleLayer, v.Module, v.Reason)
}

func (r *Renderer) statusLine(w io.Writer, attr color.Attribute, msg string) error {
	if r.noColor {
		_, err := fmt.Fprintln(w, msg)
		if err != nil {
			return fmt.Errorf("render status: %w", err)
		}

		return nil
	}

	_, err := color.New(attr).Fprintln(w, msg)
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	return nil
}

func (r *Renderer) summaryLine(result *scan.Result, w io.Writer) error {
	_, err := fmt.Fprintf(w, "Checked %s files in %s.\n",
		humanize.Comma(int64(result.FilesScanned)), result.Elapsed.Round(summaryPrecision))
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}

	return nil
}

// summaryPrecision keeps the elapsed time in the summary line stable enough
// to read.
const summaryPrecision = 10 * time.Millisecond
