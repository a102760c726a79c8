// # internal/engine/parser/parser.go
package parser

import (
	"bytes"
	"depscan/internal/core/errors"
	"depscan/internal/shared/observability"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Extractor turns a parsed syntax tree into a File.
type Extractor interface {
	Extract(node *sitter.Node, source []byte, filePath string) (*File, error)
}

type Parser struct {
	pool       *ParserPool
	extractor  Extractor
	extensions map[string]bool
}

// NewParser returns a Python parser. dynamicCallees selects which call sites are recorded.
func NewParser(dynamicCallees []string) *Parser {
	lang := sitter.NewLanguage(tree_sitter_python.Language())
	return &Parser{
		pool:       NewParserPool(lang),
		extractor:  NewPythonExtractor(dynamicCallees),
		extensions: map[string]bool{".py": true},
	}
}

// ParseFile parses content. A *ParseError is returned for files the grammar rejects;
// any other error is a programming or resource failure.
func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues("python").Observe(time.Since(start).Seconds())
	}()

	if !utf8.Valid(content) {
		return nil, &ParseError{Path: path, Line: invalidUTF8Line(content), Reason: "invalid UTF-8"}
	}

	tree := p.pool.Parse(content)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxPath, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line := firstErrorLine(root)
		return nil, &ParseError{
			Path:    path,
			Line:    line,
			Snippet: sourceLine(content, line),
			Reason:  fmt.Sprintf("syntax error at line %d", line),
		}
	}

	res, err := p.extractor.Extract(root, content, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "extraction failed")
	}
	return res, nil
}

func (p *Parser) IsSupportedPath(filePath string) bool {
	return p.extensions[strings.ToLower(filepath.Ext(filePath))]
}

func firstErrorLine(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	if node.IsError() || node.IsMissing() {
		return int(node.StartPosition().Row) + 1
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !child.HasError() {
			continue
		}
		if line := firstErrorLine(child); line > 0 {
			return line
		}
	}
	return int(node.StartPosition().Row) + 1
}

func sourceLine(content []byte, line int) string {
	if line < 1 {
		return ""
	}
	lines := bytes.Split(content, []byte("\n"))
	if line > len(lines) {
		return ""
	}
	return strings.TrimSpace(string(lines[line-1]))
}

func invalidUTF8Line(content []byte) int {
	line := 1
	for len(content) > 0 {
		r, size := utf8.DecodeRune(content)
		if r == utf8.RuneError && size <= 1 {
			return line
		}
		if r == '\n' {
			line++
		}
		content = content[size:]
	}
	return line
}
