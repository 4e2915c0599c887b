package structural

import "math"

// Code-volume normalization bounds: total statement counts at or below the
// floor score 0, at or above the ceiling score 100, linear in between.
const (
	volumeFloor   = 500
	volumeCeiling = 10000
)

const percentScale = 100.0

// FunctionRecord holds the measurements for a single function or method.
// It is immutable once folded into FileMetrics.
type FunctionRecord struct {
	Name                 string `json:"name"`
	IsHandler            bool   `json:"is_handler"`
	CyclomaticComplexity int    `json:"cyclomatic_complexity"`
	CognitiveComplexity  int    `json:"cognitive_complexity"`
	StatementCount       int    `json:"statement_count"`

	// ConstraintComplexity is only meaningful when IsHandler is true.
	ConstraintComplexity int `json:"constraint_complexity,omitempty"`
}

// FileMetrics aggregates the FunctionRecords of one file. Raw integer sums
// are carried alongside the derived means so higher-level aggregation never
// reconstructs sums from floats.
type FileMetrics struct {
	Functions []FunctionRecord `json:"functions"`

	TotalFunctions  int `json:"total_functions"`
	TotalStatements int `json:"total_statements"`
	TotalComplexity int `json:"total_complexity"`
	TotalCognitive  int `json:"total_cognitive_complexity"`

	MaxComplexity int `json:"max_complexity"`
	MaxCognitive  int `json:"max_cognitive_complexity"`
	MaxConstraint int `json:"max_constraint_complexity"`

	AvgComplexity float64 `json:"avg_complexity"`
	AvgCognitive  float64 `json:"avg_cognitive_complexity"`

	HandlerCount int `json:"handler_count"`
}

// Add folds one FunctionRecord into the file rollup.
func (fm *FileMetrics) Add(rec FunctionRecord) {
	fm.Functions = append(fm.Functions, rec)
	fm.TotalFunctions++
	fm.TotalStatements += rec.StatementCount
	fm.TotalComplexity += rec.CyclomaticComplexity
	fm.TotalCognitive += rec.CognitiveComplexity

	fm.MaxComplexity = max(fm.MaxComplexity, rec.CyclomaticComplexity)
	fm.MaxCognitive = max(fm.MaxCognitive, rec.CognitiveComplexity)

	if rec.IsHandler {
		fm.HandlerCount++
		fm.MaxConstraint = max(fm.MaxConstraint, rec.ConstraintComplexity)
	}
}

// Finalize computes the derived means. Call once, after the last Add.
func (fm *FileMetrics) Finalize() {
	if fm.TotalFunctions == 0 {
		return
	}

	fm.AvgComplexity = float64(fm.TotalComplexity) / float64(fm.TotalFunctions)
	fm.AvgCognitive = float64(fm.TotalCognitive) / float64(fm.TotalFunctions)
}

// WorkspaceMetrics is the cross-file rollup exposed to downstream
// consumers. Averages are weighted by function count: they derive from the
// raw sums, never from per-file means.
type WorkspaceMetrics struct {
	TotalFunctions  int `json:"total_functions"`
	TotalStatements int `json:"total_statements"`
	TotalComplexity int `json:"total_complexity"`
	TotalCognitive  int `json:"total_cognitive_complexity"`

	MaxComplexity int `json:"max_complexity"`
	MaxCognitive  int `json:"max_cognitive_complexity"`
	MaxConstraint int `json:"max_constraint_complexity"`

	AvgComplexity float64 `json:"avg_complexity"`
	AvgCognitive  float64 `json:"avg_cognitive_complexity"`

	HandlerCount int `json:"handler_count"`

	FilesAnalyzed int `json:"files_analyzed"`
	FilesSkipped  int `json:"files_skipped"`

	CodeVolumeFactor float64 `json:"code_volume_factor"`
}

// Fold merges one file's metrics into the workspace rollup. Folding is
// associative and commutative, so file processing order never changes the
// result.
func (wm *WorkspaceMetrics) Fold(fm *FileMetrics) {
	wm.TotalFunctions += fm.TotalFunctions
	wm.TotalStatements += fm.TotalStatements
	wm.TotalComplexity += fm.TotalComplexity
	wm.TotalCognitive += fm.TotalCognitive

	wm.MaxComplexity = max(wm.MaxComplexity, fm.MaxComplexity)
	wm.MaxCognitive = max(wm.MaxCognitive, fm.MaxCognitive)
	wm.MaxConstraint = max(wm.MaxConstraint, fm.MaxConstraint)

	wm.HandlerCount += fm.HandlerCount
	wm.FilesAnalyzed++
}

// Finalize computes weighted means and the code-volume factor. Call once,
// after the last Fold.
func (wm *WorkspaceMetrics) Finalize() {
	if wm.TotalFunctions > 0 {
		wm.AvgComplexity = float64(wm.TotalComplexity) / float64(wm.TotalFunctions)
		wm.AvgCognitive = float64(wm.TotalCognitive) / float64(wm.TotalFunctions)
	}

	wm.CodeVolumeFactor = CodeVolumeFactor(wm.TotalStatements)
}

// CodeVolumeFactor maps a total statement count onto a 0-100 score via
// clamped linear interpolation, rounded to two decimal places.
func CodeVolumeFactor(totalStatements int) float64 {
	if totalStatements <= volumeFloor {
		return 0.0
	}

	if totalStatements >= volumeCeiling {
		return percentScale
	}

	span := float64(volumeCeiling - volumeFloor)
	factor := float64(totalStatements-volumeFloor) / span * percentScale

	return math.Round(factor*percentScale) / percentScale
}
