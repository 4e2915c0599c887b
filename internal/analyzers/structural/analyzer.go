// Package structural measures the structural quality of contract sources:
// per-function cyclomatic and cognitive complexity, statement counts,
// handler classification, and the file/workspace rollups built from them.
package structural

import (
	"github.com/anchorscope/anchorscope/pkg/uast/node"
)

const anonymousFunctionName = "<anonymous>"

// Analyzer runs the structural measurement over one file's UAST.
type Analyzer struct{}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Name returns the analyzer name.
func (a *Analyzer) Name() string {
	return "structural"
}

// Description returns the analyzer description.
func (a *Analyzer) Description() string {
	return "Measures handler classification, cyclomatic/cognitive complexity, and statement volume."
}

// Analyze walks every function and method declared in the file (top level
// and inside impl blocks, including nested definitions) and folds one
// FunctionRecord per declaration into a FileMetrics. A nil root yields an
// empty, finalized FileMetrics.
func (a *Analyzer) Analyze(root *node.Node) *FileMetrics {
	metrics := &FileMetrics{}
	if root == nil {
		return metrics
	}

	statementCounts := CountStatements(root)

	for _, fn := range root.FindAllByType(node.UASTFunction, node.UASTMethod) {
		metrics.Add(a.measureFunction(fn, statementCounts[fn]))
	}

	metrics.Finalize()

	return metrics
}

// measureFunction produces the immutable record for one declaration.
func (a *Analyzer) measureFunction(fn *node.Node, statements int) FunctionRecord {
	name := fn.Name()
	if name == "" {
		name = anonymousFunctionName
	}

	complexity := Measure(fn)

	rec := FunctionRecord{
		Name:                 name,
		IsHandler:            IsHandler(fn),
		CyclomaticComplexity: complexity.Cyclomatic,
		CognitiveComplexity:  complexity.Cognitive,
		StatementCount:       statements,
	}

	if rec.IsHandler {
		rec.ConstraintComplexity = ConstraintComplexity(fn)
	}

	return rec
}
