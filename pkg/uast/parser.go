// Package uast parses Rust contract sources into the generic UAST consumed
// by the analyzers. Parsing is backed by tree-sitter; the rest of the
// repository only ever sees pkg/uast/node trees.
package uast

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alexaandru/go-sitter-forest/rust"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/src-d/enry/v2"

	"github.com/anchorscope/anchorscope/pkg/uast/node"
)

// Sentinel errors for parser operations.
var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrNoRootNode      = errors.New("parse produced no root node")
	errPoolType        = errors.New("parser pool returned unexpected type")
)

// LanguageName is the enry language name this parser accepts.
const LanguageName = "Rust"

var (
	rustLang     *sitter.Language
	rustLangOnce sync.Once
)

// rustLanguage returns the shared tree-sitter Rust language handle.
func rustLanguage() *sitter.Language {
	rustLangOnce.Do(func() {
		rustLang = sitter.NewLanguage(rust.GetLanguage())
	})

	return rustLang
}

// Parser converts Rust source files into UAST trees. Safe for concurrent
// use; tree-sitter parser instances are pooled per call.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a Parser wired to the Rust grammar.
func NewParser() *Parser {
	lang := rustLanguage()

	return &Parser{
		pool: sync.Pool{
			New: func() any {
				tsParser := sitter.NewParser()
				tsParser.SetLanguage(lang)

				return tsParser
			},
		},
	}
}

// Language returns the source language this parser accepts.
func (p *Parser) Language() string {
	return LanguageName
}

// IsSupported reports whether the filename looks like a source file this
// parser can handle.
func (p *Parser) IsSupported(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".rs")
}

// DetectLanguage resolves the language of a file from its name and content
// using enry. Used to guard against misnamed files before parsing.
func DetectLanguage(filename string, content []byte) string {
	return enry.GetLanguage(filepath.Base(filename), content)
}

// Parse parses the given file content and returns the root UAST node.
func (p *Parser) Parse(ctx context.Context, filename string, content []byte) (*node.Node, error) {
	if !p.IsSupported(filename) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}

	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, fmt.Errorf("parse %s: %w", filename, ErrNoRootNode)
	}

	conv := &converter{source: content}

	return conv.convertFile(root), nil
}
