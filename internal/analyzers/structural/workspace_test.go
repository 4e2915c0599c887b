package structural //nolint:testpackage // testing internal implementation.

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorscope/anchorscope/pkg/uast"
	"github.com/anchorscope/anchorscope/pkg/uast/node"
)

var errStubParse = errors.New("stub parse failure")

// stubParser serves pre-built trees by relative path, bypassing tree-sitter.
type stubParser struct {
	trees map[string]*node.Node
	errs  map[string]error
}

func (s *stubParser) Language() string { return uast.LanguageName }

func (s *stubParser) Parse(_ context.Context, filename string, _ []byte) (*node.Node, error) {
	if err, ok := s.errs[filename]; ok {
		return nil, err
	}

	if tree, ok := s.trees[filename]; ok {
		return tree, nil
	}

	return nil, errStubParse
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeRustFile drops a plausible Rust source under root so content-based
// language detection agrees with the stub parser.
func writeRustFile(t *testing.T, root, relPath string) {
	t.Helper()

	source := "pub fn initialize(amount: u64) -> u64 {\n    let doubled = amount * 2;\n    doubled\n}\n"

	path := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
}

// fileTree builds a file root holding one function with the given measures.
func fileTree(fnName string, statements int) *node.Node {
	body := make([]*node.Node, 0, statements)
	for range statements {
		body = append(body, statement(node.UASTCall))
	}

	root := node.New(node.UASTFile)
	root.AddChild(newFunction(fnName, body...))

	return root
}

func TestWorkspace_Run(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeRustFile(t, root, "a.rs")
	writeRustFile(t, root, "sub/b.rs")

	parser := &stubParser{trees: map[string]*node.Node{
		"a.rs":     fileTree("initialize_a", 3),
		"sub/b.rs": fileTree("helper_b", 5),
	}}

	workspace := NewWorkspace(parser, WorkspaceOptions{Workers: 2, Logger: quietLogger()})

	result, err := workspace.Run(context.Background(), root, []string{"a.rs", "sub/b.rs"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Workspace.FilesAnalyzed)
	assert.Equal(t, 0, result.Workspace.FilesSkipped)
	assert.Equal(t, 2, result.Workspace.TotalFunctions)
	assert.Equal(t, 8, result.Workspace.TotalStatements)
	require.Len(t, result.Files, 2)
	assert.Empty(t, result.Skipped)
}

func TestWorkspace_RunSkipsFailedFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeRustFile(t, root, "good.rs")
	writeRustFile(t, root, "bad.rs")

	parser := &stubParser{
		trees: map[string]*node.Node{"good.rs": fileTree("initialize", 2)},
		errs:  map[string]error{"bad.rs": errStubParse},
	}

	workspace := NewWorkspace(parser, WorkspaceOptions{Logger: quietLogger()})

	result, err := workspace.Run(context.Background(), root, []string{"good.rs", "bad.rs", "missing.rs"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Workspace.FilesAnalyzed)
	assert.Equal(t, 2, result.Workspace.FilesSkipped)
	assert.ElementsMatch(t, []string{"bad.rs", "missing.rs"}, result.Skipped)
}

func TestWorkspace_RunNothingAnalyzable(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeRustFile(t, root, "bad.rs")

	parser := &stubParser{errs: map[string]error{"bad.rs": errStubParse}}
	workspace := NewWorkspace(parser, WorkspaceOptions{Logger: quietLogger()})

	_, err := workspace.Run(context.Background(), root, []string{"bad.rs", "missing.rs"})

	assert.ErrorIs(t, err, ErrNothingAnalyzable)
}

func TestWorkspace_RunEmptySelection(t *testing.T) {
	t.Parallel()

	parser := &stubParser{}
	workspace := NewWorkspace(parser, WorkspaceOptions{Logger: quietLogger()})

	_, err := workspace.Run(context.Background(), t.TempDir(), nil)

	assert.ErrorIs(t, err, ErrNothingAnalyzable)
}

func TestWorkspace_WeightedAverageAcrossFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeRustFile(t, root, "small.rs")
	writeRustFile(t, root, "large.rs")

	// small.rs: one function with an if (complexity 2).
	smallRoot := node.New(node.UASTFile)
	smallRoot.AddChild(newFunction("small_fn", newIf()))

	// large.rs: three plain functions (complexity 1 each).
	largeRoot := node.New(node.UASTFile)
	for _, name := range []string{"one", "two", "three"} {
		largeRoot.AddChild(newFunction(name))
	}

	parser := &stubParser{trees: map[string]*node.Node{
		"small.rs": smallRoot,
		"large.rs": largeRoot,
	}}

	workspace := NewWorkspace(parser, WorkspaceOptions{Logger: quietLogger()})

	result, err := workspace.Run(context.Background(), root, []string{"small.rs", "large.rs"})
	require.NoError(t, err)

	// (2 + 1 + 1 + 1) / 4 functions, not the mean of per-file means.
	assert.InDelta(t, 1.25, result.Workspace.AvgComplexity, 1e-9)
}
