package report //nolint:testpackage // testing internal implementation.

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorscope/anchorscope/internal/analyzers/structural"
	"github.com/anchorscope/anchorscope/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Format:     "text",
		Cyclomatic: config.Thresholds{Yellow: 5, Red: 10},
		Cognitive:  config.Thresholds{Yellow: 3, Red: 5},
	}
}

func testResult() *structural.Result {
	fm := &structural.FileMetrics{}
	fm.Add(structural.FunctionRecord{
		Name:                 "initialize_vault",
		IsHandler:            true,
		CyclomaticComplexity: 12,
		CognitiveComplexity:  4,
		StatementCount:       30,
		ConstraintComplexity: 2,
	})
	fm.Add(structural.FunctionRecord{
		Name:                 "compute_fee",
		CyclomaticComplexity: 2,
		CognitiveComplexity:  1,
		StatementCount:       8,
	})
	fm.Finalize()

	result := &structural.Result{
		Files: []structural.FileResult{{Path: "programs/vault/src/lib.rs", Metrics: fm}},
	}
	result.Workspace.Fold(fm)
	result.Workspace.Finalize()

	return result
}

func TestRenderer_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := NewRenderer(testConfig(), true).Text(testResult(), &buf)
	require.NoError(t, err)

	out := buf.String()

	assert.Contains(t, out, "Files analyzed: 1")
	assert.Contains(t, out, "Handlers: 1")
	assert.Contains(t, out, "Code volume factor: 0.00 / 100")
	assert.Contains(t, out, "initialize_vault")
	assert.Contains(t, out, "compute_fee")
	assert.Contains(t, out, "yes (2)")

	// The most complex function leads the table.
	assert.Less(t, strings.Index(out, "initialize_vault"), strings.Index(out, "compute_fee"))
}

func TestRenderer_TextEmptyResult(t *testing.T) {
	t.Parallel()

	result := &structural.Result{}
	result.Workspace.Finalize()

	var buf bytes.Buffer

	err := NewRenderer(testConfig(), true).Text(result, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "No functions found.")
}

func TestRenderer_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := NewRenderer(testConfig(), true).JSON(testResult(), &buf)
	require.NoError(t, err)

	var decoded structural.Result

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Workspace.TotalFunctions)
	assert.Equal(t, 14, decoded.Workspace.TotalComplexity)
	require.Len(t, decoded.Files, 1)
	assert.Equal(t, "programs/vault/src/lib.rs", decoded.Files[0].Path)
}

func TestRenderer_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := NewRenderer(testConfig(), true).YAML(testResult(), &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "initialize_vault")
}

func TestWritePlot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := WritePlot(testResult(), &buf)
	require.NoError(t, err)

	out := buf.String()

	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "lib.rs")
}

func TestCollectRows_Ordering(t *testing.T) {
	t.Parallel()

	fm := &structural.FileMetrics{}
	fm.Add(structural.FunctionRecord{Name: "b", CyclomaticComplexity: 3, CognitiveComplexity: 1})
	fm.Add(structural.FunctionRecord{Name: "a", CyclomaticComplexity: 3, CognitiveComplexity: 1})
	fm.Add(structural.FunctionRecord{Name: "c", CyclomaticComplexity: 3, CognitiveComplexity: 2})
	fm.Finalize()

	result := &structural.Result{Files: []structural.FileResult{{Path: "x.rs", Metrics: fm}}}

	rows := collectRows(result)

	require.Len(t, rows, 3)
	assert.Equal(t, "c", rows[0].rec.Name)
	assert.Equal(t, "a", rows[1].rec.Name)
	assert.Equal(t, "b", rows[2].rec.Name)
}
