package structural

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/anchorscope/anchorscope/internal/observability"
	"github.com/anchorscope/anchorscope/pkg/uast"
	"github.com/anchorscope/anchorscope/pkg/uast/node"
)

// ErrNothingAnalyzable is returned when every file in the requested
// selection was skipped: an all-zero result would be indistinguishable from
// "the code has no complexity", so the condition surfaces explicitly.
var ErrNothingAnalyzable = errors.New("no analyzable files in selection")

// SourceParser is the external parser collaborator: it turns file content
// into the generic syntax tree the engine consumes.
type SourceParser interface {
	// Language returns the source language the parser accepts.
	Language() string

	// Parse returns the UAST root for the given file, or a parse error.
	Parse(ctx context.Context, filename string, content []byte) (*node.Node, error)
}

// WorkspaceOptions configures a Workspace. The zero value is valid:
// NumCPU workers, default logger, no metrics.
type WorkspaceOptions struct {
	// Workers caps the parallel file workers. Zero means NumCPU.
	Workers int

	// Logger receives skip diagnostics. Nil means slog.Default().
	Logger *slog.Logger

	// Metrics records run statistics. Nil disables recording.
	Metrics *observability.RunMetrics
}

// Workspace aggregates per-file structural metrics across a selection of
// files. Per-file failures are recovered locally (logged, skipped); only
// the nothing-analyzable condition propagates.
type Workspace struct {
	parser   SourceParser
	analyzer *Analyzer
	workers  int
	logger   *slog.Logger
	metrics  *observability.RunMetrics
}

// NewWorkspace creates a Workspace around the given parser.
func NewWorkspace(parser SourceParser, opts WorkspaceOptions) *Workspace {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Workspace{
		parser:   parser,
		analyzer: NewAnalyzer(),
		workers:  workers,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// indexedFile pairs a relative path with its position in the selection.
type indexedFile struct {
	index int
	path  string
}

// FileResult pairs a successfully analyzed file with its metrics.
type FileResult struct {
	Path    string       `json:"path"`
	Metrics *FileMetrics `json:"metrics"`
}

// Result is the full outcome of a workspace run: the workspace rollup
// plus the per-file breakdown renderers consume.
type Result struct {
	Workspace WorkspaceMetrics `json:"workspace"`
	Files     []FileResult     `json:"files"`
	Skipped   []string         `json:"skipped,omitempty"`
}

// Run analyzes the listed files (relative to root) and returns the merged
// workspace metrics. Files fan out across workers; the fold is associative
// and commutative, so scheduling never changes the result. Cancelling ctx
// abandons unprocessed files, which count as skipped.
func (w *Workspace) Run(ctx context.Context, root string, files []string) (*Result, error) {
	perFile := make([]*FileMetrics, len(files))

	work := make(chan indexedFile, len(files))
	for idx, path := range files {
		work <- indexedFile{index: idx, path: path}
	}

	close(work)

	var wg sync.WaitGroup
	for range min(w.workers, max(len(files), 1)) {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for item := range work {
				if ctx.Err() != nil {
					return
				}

				perFile[item.index] = w.analyzeFile(ctx, root, item.path)
			}
		}()
	}

	wg.Wait()

	result := &Result{}

	for idx, fm := range perFile {
		if fm == nil {
			result.Skipped = append(result.Skipped, files[idx])

			continue
		}

		result.Workspace.Fold(fm)
		result.Files = append(result.Files, FileResult{Path: files[idx], Metrics: fm})
	}

	result.Workspace.FilesSkipped = len(files) - result.Workspace.FilesAnalyzed

	if result.Workspace.FilesAnalyzed == 0 {
		return nil, ErrNothingAnalyzable
	}

	result.Workspace.Finalize()

	return result, nil
}

// analyzeFile reads, parses, and measures one file. Returns nil when the
// file is skipped for any reason.
func (w *Workspace) analyzeFile(ctx context.Context, root, relPath string) *FileMetrics {
	started := time.Now()

	fm, err := w.tryAnalyzeFile(ctx, root, relPath)
	if err != nil {
		w.logger.Warn("skipping file", "path", relPath, "error", err)
		w.metrics.RecordFile(ctx, time.Since(started), true)

		return nil
	}

	w.metrics.RecordFile(ctx, time.Since(started), false)
	w.metrics.RecordFunctions(ctx, fm.TotalFunctions, fm.HandlerCount)

	return fm
}

func (w *Workspace) tryAnalyzeFile(ctx context.Context, root, relPath string) (*FileMetrics, error) {
	path := relPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Extension lies sometimes; enry's content-based detection catches
	// vendored or generated files of another language.
	if lang := uast.DetectLanguage(relPath, content); lang != "" && lang != w.parser.Language() {
		return nil, &unsupportedLanguageError{path: relPath, language: lang}
	}

	tree, err := w.parser.Parse(ctx, relPath, content)
	if err != nil {
		return nil, err
	}

	return w.analyzer.Analyze(tree), nil
}

type unsupportedLanguageError struct {
	path     string
	language string
}

func (e *unsupportedLanguageError) Error() string {
	return "detected language " + e.language + " for " + e.path
}
