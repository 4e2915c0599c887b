// Package report renders workspace analysis results as terminal text,
// JSON, YAML, or an HTML chart.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/anchorscope/anchorscope/internal/analyzers/structural"
	"github.com/anchorscope/anchorscope/internal/config"
)

// maxTableRows caps the per-function detail table.
const maxTableRows = 25

const jsonIndent = "  "

// Renderer formats a structural analysis result.
type Renderer struct {
	cyclomatic config.Thresholds
	cognitive  config.Thresholds
	noColor    bool
}

// NewRenderer creates a Renderer using the configured thresholds.
func NewRenderer(cfg *config.Config, noColor bool) *Renderer {
	return &Renderer{
		cyclomatic: cfg.Cyclomatic,
		cognitive:  cfg.Cognitive,
		noColor:    noColor,
	}
}

// JSON writes the result as indented JSON.
func (r *Renderer) JSON(result *structural.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", jsonIndent)

	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

// YAML writes the result as YAML.
func (r *Renderer) YAML(result *structural.Result, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()

	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	return nil
}

// Text writes the human-readable report: a workspace summary followed by
// the most complex functions.
func (r *Renderer) Text(result *structural.Result, w io.Writer) error {
	if r.noColor {
		color.NoColor = true
	}

	ws := result.Workspace

	fmt.Fprintf(w, "Files analyzed: %s (skipped: %s)\n",
		humanize.Comma(int64(ws.FilesAnalyzed)), humanize.Comma(int64(ws.FilesSkipped)))
	fmt.Fprintf(w, "Functions: %s  Handlers: %s  Statements: %s\n",
		humanize.Comma(int64(ws.TotalFunctions)),
		humanize.Comma(int64(ws.HandlerCount)),
		humanize.Comma(int64(ws.TotalStatements)))
	fmt.Fprintf(w, "Avg complexity: %.2f  Avg cognitive: %.2f  Max complexity: %d  Max cognitive: %d\n",
		ws.AvgComplexity, ws.AvgCognitive, ws.MaxComplexity, ws.MaxCognitive)
	fmt.Fprintf(w, "Code volume factor: %.2f / 100\n\n", ws.CodeVolumeFactor)

	rows := collectRows(result)
	if len(rows) == 0 {
		fmt.Fprintln(w, "No functions found.")

		return nil
	}

	r.renderFunctionTable(rows, w)

	return nil
}

// functionRow is one line of the detail table.
type functionRow struct {
	file string
	rec  structural.FunctionRecord
}

// collectRows flattens per-file records and orders them most complex
// first, with name as the final tie-break for stable output.
func collectRows(result *structural.Result) []functionRow {
	var rows []functionRow

	for _, file := range result.Files {
		for _, rec := range file.Metrics.Functions {
			rows = append(rows, functionRow{file: file.Path, rec: rec})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		left, right := rows[i].rec, rows[j].rec

		if left.CyclomaticComplexity != right.CyclomaticComplexity {
			return left.CyclomaticComplexity > right.CyclomaticComplexity
		}

		if left.CognitiveComplexity != right.CognitiveComplexity {
			return left.CognitiveComplexity > right.CognitiveComplexity
		}

		return left.Name < right.Name
	})

	return rows
}

func (r *Renderer) renderFunctionTable(rows []functionRow, w io.Writer) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"Function", "File", "Handler", "Cyclomatic", "Cognitive", "Statements"})

	limit := min(len(rows), maxTableRows)
	for _, row := range rows[:limit] {
		handler := ""
		if row.rec.IsHandler {
			handler = fmt.Sprintf("yes (%d)", row.rec.ConstraintComplexity)
		}

		tbl.AppendRow(table.Row{
			row.rec.Name,
			row.file,
			handler,
			r.assess(row.rec.CyclomaticComplexity, r.cyclomatic),
			r.assess(row.rec.CognitiveComplexity, r.cognitive),
			row.rec.StatementCount,
		})
	}

	tbl.Render()

	if len(rows) > limit {
		fmt.Fprintf(w, "... and %d more functions\n", len(rows)-limit)
	}
}

// assess colours a metric value by its thresholds.
func (r *Renderer) assess(value int, thresholds config.Thresholds) string {
	text := fmt.Sprintf("%d", value)

	switch {
	case value > thresholds.Red:
		return color.New(color.FgRed).Sprint(text)
	case value > thresholds.Yellow:
		return color.New(color.FgYellow).Sprint(text)
	default:
		return color.New(color.FgGreen).Sprint(text)
	}
}
