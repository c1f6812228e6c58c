package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// Parser wraps tree-sitter parser for JavaScript/TypeScript
type Parser struct {
	parser   *sitter.Parser
	language *sitter.Language
	isTS     bool
}

// NewParser creates a new JavaScript parser
func NewParser() *Parser {
	parser := sitter.NewParser()
	lang := javascript.GetLanguage()
	parser.SetLanguage(lang)

	return &Parser{
		parser:   parser,
		language: lang,
		isTS:     false,
	}
}

// NewTypeScriptParser creates a new TypeScript parser
func NewTypeScriptParser() *Parser {
	parser := sitter.NewParser()
	lang := tsx.GetLanguage()
	parser.SetLanguage(lang)

	return &Parser{
		parser:   parser,
		language: lang,
		isTS:     true,
	}
}

// ParseFile parses a JavaScript/TypeScript file
func (p *Parser) ParseFile(filename string, source []byte) (*Node, error) {
	ast, _, _, err := p.ParseFileDetailed(filename, source)
	return ast, err
}

// ParseFileDetailed parses a file and additionally reports whether the
// raw tree-sitter CST contains any JSX node and whether the parser
// could not reach a clean end-of-file (HasError/IsMissing anywhere in
// the tree). The AST builder never constructs NodeJSXElement nodes of
// its own, so JSX presence is read directly off the tree-sitter node
// type strings (the tsx grammar names every JSX production with a
// "jsx_" prefix) rather than from the internal AST.
func (p *Parser) ParseFileDetailed(filename string, source []byte) (ast *Node, hasJSX bool, invalidSyntax bool, err error) {
	tree, perr := p.parser.ParseCtx(context.Background(), nil, source)
	if tree == nil {
		return nil, false, true, fmt.Errorf("failed to parse file %s: %v", filename, perr)
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode == nil {
		return nil, false, true, fmt.Errorf("no root node in parse tree for %s", filename)
	}

	invalidSyntax = rootNode.HasError()
	hasJSX = containsJSX(rootNode)

	builder := NewASTBuilder(filename, source)
	ast = builder.Build(rootNode)

	return ast, hasJSX, invalidSyntax, nil
}

// containsJSX walks the raw tree-sitter CST looking for any node type
// beginning with "jsx_" (jsx_element, jsx_fragment, jsx_self_closing_element,
// jsx_attribute, jsx_expression, ...).
func containsJSX(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	t := n.Type()
	if len(t) >= 4 && t[:4] == "jsx_" {
		return true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if containsJSX(n.Child(i)) {
			return true
		}
	}
	return false
}

// Parse parses JavaScript/TypeScript source code
func (p *Parser) Parse(source []byte) (*Node, error) {
	return p.ParseFile("<input>", source)
}

// ParseString parses JavaScript/TypeScript source code from a string
func (p *Parser) ParseString(source string) (*Node, error) {
	return p.Parse([]byte(source))
}

// IsTypeScript returns true if this parser is configured for TypeScript
func (p *Parser) IsTypeScript() bool {
	return p.isTS
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ParseForLanguage automatically selects JavaScript or TypeScript parser based on file extension
func ParseForLanguage(filename string, source []byte) (*Node, error) {
	// Determine language from file extension
	isTS := false
	if len(filename) > 3 {
		ext := filename[len(filename)-3:]
		if ext == ".ts" || ext == "tsx" {
			isTS = true
		}
	}
	if len(filename) > 4 {
		ext := filename[len(filename)-4:]
		if ext == ".tsx" || ext == ".mts" || ext == ".cts" {
			isTS = true
		}
	}

	var parser *Parser
	if isTS {
		parser = NewTypeScriptParser()
	} else {
		parser = NewParser()
	}
	defer parser.Close()

	return parser.ParseFile(filename, source)
}

// ParseForLanguageDetailed is ParseForLanguage plus the JSX/invalid-syntax
// flags the Syntax Analyzer (internal/analyzer) needs.
func ParseForLanguageDetailed(filename string, source []byte) (ast *Node, hasJSX bool, invalidSyntax bool, err error) {
	isTS := false
	if len(filename) > 3 {
		ext := filename[len(filename)-3:]
		if ext == ".ts" || ext == "tsx" {
			isTS = true
		}
	}
	if len(filename) > 4 {
		ext := filename[len(filename)-4:]
		if ext == ".tsx" || ext == ".mts" || ext == ".cts" {
			isTS = true
		}
	}

	var p *Parser
	if isTS {
		p = NewTypeScriptParser()
	} else {
		p = NewParser()
	}
	defer p.Close()

	return p.ParseFileDetailed(filename, source)
}
