// Package pyimports extracts import references from Python sources using a
// tree-sitter grammar.
package pyimports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Tree-sitter node types carrying import statements.
const (
	nodeImport        = "import_statement"
	nodeImportFrom    = "import_from_statement"
	nodeDottedName    = "dotted_name"
	nodeAliasedImport = "aliased_import"
	nodeError         = "ERROR"
)

var errPoolType = errors.New("unexpected type in parser pool")

// ImportRef is one imported dotted module path with its source position.
// Line is 1-based, Col is 0-based, both anchored at the import statement.
type ImportRef struct {
	Module string
	Line   uint32
	Col    uint32
}

// ParseError reports a syntax failure with its best-known position.
// Line defaults to 1 and Col to 0 when the tree gives no better anchor.
type ParseError struct {
	Msg  string
	Line uint32
	Col  uint32
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Msg, e.Line, e.Col)
}

// Parser turns Python file content into import references. It is safe for
// concurrent use; tree-sitter parser instances are pooled.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a Parser backed by the tree-sitter Python grammar.
func NewParser() *Parser {
	lang := sitter.NewLanguage(python.GetLanguage())

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

// Imports parses content and returns every import reference in the file,
// covering both "import a.b, c" (one ref per dotted name) and
// "from a.b import x, y" (one ref keyed on a.b). A relative import with no
// resolvable module is dropped. A file whose tree contains syntax errors
// fails with a *ParseError.
func (p *Parser) Imports(ctx context.Context, content []byte) ([]ImportRef, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, &ParseError{Msg: err.Error(), Line: 1, Col: 0}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, &ParseError{Msg: "no syntax tree produced", Line: 1, Col: 0}
	}

	if root.HasError() {
		return nil, syntaxError(root)
	}

	var refs []ImportRef

	collect(root, content, &refs)

	return refs, nil
}

// collect walks the tree in document order and appends one ImportRef per
// imported dotted name. Import statements never nest, so recursion stops at
// them.
func collect(n sitter.Node, src []byte, refs *[]ImportRef) {
	switch n.Type() {
	case nodeImport:
		collectImport(n, src, refs)

		return
	case nodeImportFrom:
		collectImportFrom(n, src, refs)

		return
	}

	for i := range n.NamedChildCount() {
		collect(n.NamedChild(i), src, refs)
	}
}

// collectImport handles "import a.b, c as d": one ref per named child, all
// anchored at the statement start.
func collectImport(n sitter.Node, src []byte, refs *[]ImportRef) {
	start := n.StartPoint()

	for i := range n.NamedChildCount() {
		child := n.NamedChild(i)

		switch child.Type() {
		case nodeDottedName:
			appendRef(refs, nodeText(child, src), start)
		case nodeAliasedImport:
			name := child.ChildByFieldName("name")
			if !name.IsNull() {
				appendRef(refs, nodeText(name, src), start)
			}
		}
	}
}

// collectImportFrom handles "from a.b import x, y": a single ref keyed on
// the module. Leading dots of a relative import are stripped; a bare
// "from . import x" resolves to no module and is dropped.
func collectImportFrom(n sitter.Node, src []byte, refs *[]ImportRef) {
	moduleNode := n.ChildByFieldName("module_name")
	if moduleNode.IsNull() {
		return
	}

	module := strings.TrimLeft(nodeText(moduleNode, src), ".")
	if module == "" {
		return
	}

	appendRef(refs, module, n.StartPoint())
}

func appendRef(refs *[]ImportRef, module string, start sitter.Point) {
	if module == "" {
		return
	}

	*refs = append(*refs, ImportRef{
		Module: module,
		Line:   uint32(start.Row) + 1,
		Col:    uint32(start.Column),
	})
}

// syntaxError locates the first ERROR or missing node in the tree and wraps
// its position. The root carries the error flag even when the offending node
// sits deep in the tree.
func syntaxError(root sitter.Node) *ParseError {
	if errNode, found := findErrorNode(root); found {
		start := errNode.StartPoint()

		return &ParseError{Msg: "invalid syntax", Line: uint32(start.Row) + 1, Col: uint32(start.Column)}
	}

	return &ParseError{Msg: "invalid syntax", Line: 1, Col: 0}
}

func findErrorNode(n sitter.Node) (sitter.Node, bool) {
	if n.Type() == nodeError || n.IsMissing() {
		return n, true
	}

	if !n.HasError() {
		return sitter.Node{}, false
	}

	for i := range n.NamedChildCount() {
		if errNode, found := findErrorNode(n.NamedChild(i)); found {
			return errNode, true
		}
	}

	// The error flag is set but no named child carries it; anchor on this
	// node.
	return n, true
}

func nodeText(n sitter.Node, src []byte) string {
	start := n.StartByte()
	end := n.EndByte()

	if start >= end || int(end) > len(src) {
		return ""
	}

	return string(src[start:end])
}
