package analyzer

import (
	"strings"

	"github.com/ludo-technologies/refit/domain"
	"github.com/ludo-technologies/refit/internal/parser"
)

// AnalyzeSyntax parses a staged file's content and derives the
// SourceFile attributes the rest of the pipeline consumes: import
// specifiers, named exports (name, kind, default-ness), JSX presence,
// and whether the parser reached a clean end-of-file (spec.md §4.1).
// A file the parser cannot finish is returned with InvalidAST set and
// no exports; the File Classifier treats that as Unknown.
func AnalyzeSyntax(path string, content []byte) *domain.SourceFile {
	sf := &domain.SourceFile{
		Path:      path,
		Extension: extensionOf(path),
		Content:   content,
	}

	ast, hasJSX, invalidSyntax, err := parser.ParseForLanguageDetailed(path, content)
	sf.HasJSX = hasJSX
	sf.InvalidAST = invalidSyntax || err != nil
	if sf.InvalidAST || ast == nil {
		return sf
	}

	collectImportsAndExports(ast, sf)
	return sf
}

func extensionOf(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '.' {
			return p[i:]
		}
		if p[i] == '/' {
			break
		}
	}
	return ""
}

// collectImportsAndExports walks the program's top-level statements
// once, recording import specifiers and export declarations in source
// order. seenTop remembers the kind of every top-level declaration so
// a later bare `export { name }` (no "from") can be resolved against a
// declaration that appeared earlier in the same file.
func collectImportsAndExports(ast *parser.Node, sf *domain.SourceFile) {
	seenTop := map[string]domain.ExportKind{}
	for _, stmt := range ast.Body {
		switch stmt.Type {
		case parser.NodeImportDeclaration:
			if src := literalValue(stmt.Source); src != "" {
				sf.Imports = append(sf.Imports, src)
			}
		case parser.NodeExportNamedDeclaration, parser.NodeExportDefaultDeclaration, parser.NodeExportAllDeclaration:
			handleExportStatement(stmt, sf, seenTop)
		default:
			recordTopLevelName(stmt, seenTop)
		}
	}
}

// handleExportStatement dispatches one export-ish statement to the
// three shapes spec.md §4.1 names: a re-export (has a Source, whatever
// its specifier shape), a default-marked declaration or expression, or
// an annotated local declaration / bare specifier list.
func handleExportStatement(stmt *parser.Node, sf *domain.SourceFile, seenTop map[string]domain.ExportKind) {
	if stmt.Source != nil {
		if src := literalValue(stmt.Source); src != "" {
			sf.Imports = append(sf.Imports, src)
		}
		return
	}

	switch stmt.Type {
	case parser.NodeExportDefaultDeclaration:
		sf.Exports = append(sf.Exports, defaultExport(stmt.Declaration))
	case parser.NodeExportAllDeclaration:
		// export * without a source cannot occur; nothing to record.
	default:
		if stmt.Declaration != nil {
			sf.Exports = append(sf.Exports, exportsFromDeclaration(stmt.Declaration)...)
		}
		for _, spec := range stmt.Specifiers {
			if spec.Name == "" {
				continue
			}
			kind, ok := seenTop[spec.Name]
			if !ok {
				kind = domain.ExportKindConst
			}
			sf.Exports = append(sf.Exports, domain.NamedExport{Name: spec.Name, Kind: kind})
		}
	}
}

// defaultExport builds the single `default`-named export for a
// standalone default-expression or default-marked declaration, with
// kind inferred from the expression shape per spec.md §4.1.
func defaultExport(decl *parser.Node) domain.NamedExport {
	return domain.NamedExport{Name: "default", Kind: kindFromInit(decl), IsDefault: true}
}

// exportsFromDeclaration handles shape (a): a declaration directly
// annotated with `export`.
func exportsFromDeclaration(decl *parser.Node) []domain.NamedExport {
	switch decl.Type {
	case parser.NodeFunction, parser.NodeAsyncFunction, parser.NodeGeneratorFunction:
		if decl.Name == "" {
			return nil
		}
		return []domain.NamedExport{{Name: decl.Name, Kind: domain.ExportKindFunction}}
	case parser.NodeClass:
		if decl.Name == "" {
			return nil
		}
		return []domain.NamedExport{{Name: decl.Name, Kind: domain.ExportKindClass}}
	case parser.NodeVariableDeclaration:
		var exports []domain.NamedExport
		for _, d := range decl.Declarations {
			exports = append(exports, namedExportsFromDeclarator(d)...)
		}
		return exports
	}

	switch string(decl.Type) {
	case "interface_declaration":
		if name := identifierChildName(decl); name != "" {
			return []domain.NamedExport{{Name: name, Kind: domain.ExportKindInterface}}
		}
	case "type_alias_declaration":
		if name := identifierChildName(decl); name != "" {
			return []domain.NamedExport{{Name: name, Kind: domain.ExportKindType}}
		}
	case "enum_declaration":
		if name := identifierChildName(decl); name != "" {
			return []domain.NamedExport{{Name: name, Kind: domain.ExportKindConst}}
		}
	}
	return nil
}

// namedExportsFromDeclarator expands one variable_declarator into one
// export per top-level bound identifier — a single name for a plain
// binding, or one entry per destructured name for `export const {a,b}=x`
// (spec.md §4.1, "named binding patterns... yield one export per
// top-level identifier").
func namedExportsFromDeclarator(d *parser.Node) []domain.NamedExport {
	kind := kindFromInit(d.Init)
	if len(d.Declarations) > 0 {
		exports := make([]domain.NamedExport, 0, len(d.Declarations))
		for _, id := range d.Declarations {
			if id.Name != "" {
				exports = append(exports, domain.NamedExport{Name: id.Name, Kind: kind})
			}
		}
		return exports
	}
	if d.Name == "" {
		return nil
	}
	return []domain.NamedExport{{Name: d.Name, Kind: kind}}
}

// kindFromInit infers an ExportKind from the expression assigned to a
// default export or a variable declarator's initializer: function-like
// expressions are Function, class expressions are Class, anything else
// is Const.
func kindFromInit(init *parser.Node) domain.ExportKind {
	if init == nil {
		return domain.ExportKindConst
	}
	switch init.Type {
	case parser.NodeFunction, parser.NodeFunctionExpression, parser.NodeArrowFunction,
		parser.NodeAsyncFunction, parser.NodeGeneratorFunction:
		return domain.ExportKindFunction
	case parser.NodeClass, parser.NodeClassExpression:
		return domain.ExportKindClass
	default:
		return domain.ExportKindConst
	}
}

// recordTopLevelName remembers the kind of a non-exported top-level
// declaration so a later bare `export { name }` can resolve it.
func recordTopLevelName(stmt *parser.Node, seenTop map[string]domain.ExportKind) {
	switch stmt.Type {
	case parser.NodeFunction, parser.NodeAsyncFunction, parser.NodeGeneratorFunction:
		if stmt.Name != "" {
			seenTop[stmt.Name] = domain.ExportKindFunction
		}
	case parser.NodeClass:
		if stmt.Name != "" {
			seenTop[stmt.Name] = domain.ExportKindClass
		}
	case parser.NodeVariableDeclaration:
		for _, d := range stmt.Declarations {
			kind := kindFromInit(d.Init)
			if d.Name != "" {
				seenTop[d.Name] = kind
			}
			for _, id := range d.Declarations {
				if id.Name != "" {
					seenTop[id.Name] = kind
				}
			}
		}
	}
}

// identifierChildName returns the name of the first Identifier among a
// generic node's direct children — used for the TypeScript
// declarations (interface/type alias/enum) the AST builder leaves as
// generic nodes.
func identifierChildName(n *parser.Node) string {
	for _, c := range n.Children {
		if c.Type == parser.NodeIdentifier {
			return c.Name
		}
	}
	return ""
}

// literalValue strips the surrounding quotes from a string-literal AST
// node's raw text.
func literalValue(n *parser.Node) string {
	if n == nil {
		return ""
	}
	raw := strings.TrimSpace(n.Raw)
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return raw[1 : len(raw)-1]
		}
	}
	return raw
}
